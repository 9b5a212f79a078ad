package digo

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"

	"github.com/centraunit/digo/config"
)

// Container is a dependency injection container. It owns the registry, the
// singleton cache and the per-goroutine scope stacks.
//
// A Container is safe for concurrent use.
type Container struct {
	registry *Registry
	resolver *Resolver
	scopes   *ScopeStack
	logger   *slog.Logger
	config   *config.Config
}

// New creates a container. It panics if an instance passed with
// WithInstances does not implement its interface.
func New(opts ...Option) *Container {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		if o.config != nil {
			logger = o.config.NewLogger(os.Stderr)
		} else {
			logger = slog.Default()
		}
	}

	scopes := NewScopeStack(logger.With("component", "scope_stack"))
	registry := NewRegistry()
	c := &Container{
		registry: registry,
		resolver: NewResolver(registry, nil, scopes, logger.With("component", "resolver")),
		scopes:   scopes,
		logger:   logger,
		config:   o.config,
	}

	if len(o.instances) > 0 {
		if err := c.registerInstances(o.instances); err != nil {
			panic(err)
		}
	}
	return c
}

// Register binds iface to ctor. ctor must be a function returning a value
// assignable to iface, optionally followed by an error.
func (c *Container) Register(iface reflect.Type, ctor any, opts ...RegisterOption) error {
	if iface == nil {
		return &RegistrationTypeError{Type: "<nil>", Constructor: "", Reason: "interface type is nil"}
	}

	reg := newRegistration(opts)
	if !reg.lifetime.Valid() {
		return &RegistrationTypeError{Type: iface.String(), Reason: "unknown lifetime " + reg.lifetime.String()}
	}

	con, err := newConstructor(iface.String(), ctor, reg)
	if err != nil {
		return err
	}
	if err := con.checkResult(iface); err != nil {
		return err
	}

	if err := c.registry.Register(iface, Entry{Constructor: con, Lifetime: reg.lifetime}); err != nil {
		return err
	}

	c.logger.Debug("registered service", "type", iface.String(), "lifetime", reg.lifetime.String(), "constructor", con.Name())
	return nil
}

// RegisterInstance registers instance as the singleton of iface.
func (c *Container) RegisterInstance(iface reflect.Type, instance any) error {
	if iface == nil {
		return &RegistrationTypeError{Type: "<nil>", Reason: "interface type is nil"}
	}
	return c.registerInstances(map[reflect.Type]any{iface: instance})
}

func (c *Container) registerInstances(instances map[reflect.Type]any) error {
	seeded := make(map[reflect.Type]any, len(instances))
	var errs []error
	for t, instance := range instances {
		con, err := instanceConstructor(t, instance)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := c.registry.Register(t, Entry{Constructor: con, Lifetime: Singleton}); err != nil {
			errs = append(errs, err)
			continue
		}
		seeded[t] = instance
		c.logger.Debug("registered instance", "type", t.String())
	}

	c.resolver.seed(NewInstanceCache(seeded))
	return errors.Join(errs...)
}

// Unregister removes the registration of t and any cached singleton for it.
func (c *Container) Unregister(t reflect.Type) {
	c.registry.Unregister(t)
	c.resolver.forget(t)
}

// IsRegistered reports whether t has a registration.
func (c *Container) IsRegistered(t reflect.Type) bool {
	return c.registry.Contains(t)
}

// Resolve returns an instance of t. See Resolver.Resolve.
func (c *Container) Resolve(t reflect.Type, overrides Overrides) (any, error) {
	return c.resolver.Resolve(t, overrides)
}

// CreateScope returns a new scope. It becomes current once entered.
func (c *Container) CreateScope() *Scope {
	return NewScope(c.scopes, c.resolver, c.logger.With("component", "scope"))
}

// CurrentScope returns the innermost scope entered by the calling goroutine.
func (c *Container) CurrentScope() *Scope {
	return c.scopes.Current()
}

// WithScope runs fn inside a new scope. The scope is exited when fn returns
// or panics; exit errors are joined with fn's error.
func (c *Container) WithScope(fn func(*Scope) error) (err error) {
	scope, err := c.CreateScope().Enter()
	if err != nil {
		return err
	}
	defer func() {
		if exitErr := scope.Exit(); exitErr != nil {
			err = errors.Join(err, exitErr)
		}
	}()

	return fn(scope)
}

// Invoke calls fn with its parameters injected the way constructor
// parameters are. If the last result of fn is a non-nil error it is
// returned.
func (c *Container) Invoke(fn any, overrides Overrides, opts ...RegisterOption) error {
	_, err := c.invoke(fn, overrides, opts)
	return err
}

func (c *Container) invoke(fn any, overrides Overrides, opts []RegisterOption) ([]reflect.Value, error) {
	con, err := newConstructor("invoke", fn, newRegistration(opts))
	if err != nil {
		return nil, err
	}

	args, err := c.resolver.arguments(con, overrides, nil, nil)
	if err != nil {
		return nil, err
	}
	return con.invoke(args)
}

// Shutdown disposes every singleton the container built, newest first, and
// clears the singleton cache. Registrations are kept, so singletons are built
// again on the next resolution.
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("shutting down container", "services", c.registry.Len())

	err := c.resolver.disposeSingletons(ctx)
	if err != nil {
		c.logger.Warn("shutdown finished with errors", "error", err)
	}
	return err
}

// Registry returns the container's registry.
func (c *Container) Registry() *Registry {
	return c.registry
}

// Logger returns the container's logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Config returns the configuration given with WithConfig, or nil.
func (c *Container) Config() *config.Config {
	return c.config
}

// Register binds I to ctor in c.
func Register[I any](c *Container, ctor any, opts ...RegisterOption) error {
	return c.Register(typeOf[I](), ctor, opts...)
}

// AddTransient binds I to ctor with a Transient lifetime.
func AddTransient[I any](c *Container, ctor any, opts ...RegisterOption) error {
	return c.Register(typeOf[I](), ctor, append(opts[:len(opts):len(opts)], WithLifetime(Transient))...)
}

// AddScoped binds I to ctor with a Scoped lifetime.
func AddScoped[I any](c *Container, ctor any, opts ...RegisterOption) error {
	return c.Register(typeOf[I](), ctor, append(opts[:len(opts):len(opts)], WithLifetime(Scoped))...)
}

// AddSingleton binds I to ctor with a Singleton lifetime.
func AddSingleton[I any](c *Container, ctor any, opts ...RegisterOption) error {
	return c.Register(typeOf[I](), ctor, append(opts[:len(opts):len(opts)], WithLifetime(Singleton))...)
}

// RegisterInstance registers instance as the singleton of I.
func RegisterInstance[I any](c *Container, instance I) error {
	return c.RegisterInstance(typeOf[I](), instance)
}

// IsRegistered reports whether I has a registration in c.
func IsRegistered[I any](c *Container) bool {
	return c.IsRegistered(typeOf[I]())
}

// Get resolves I through p, which may be a Container, a Scope or a Resolver.
func Get[I any](p Provider, overrides ...Overrides) (I, error) {
	instance, err := p.Resolve(typeOf[I](), mergeOverrides(overrides))
	if err != nil {
		var zero I
		return zero, err
	}
	return cast[I](instance)
}

// MustGet is like Get but panics on error.
func MustGet[I any](p Provider, overrides ...Overrides) I {
	v, err := Get[I](p, overrides...)
	if err != nil {
		panic(err)
	}
	return v
}

// InvokeResult calls fn like Container.Invoke and returns its first result
// as R.
func InvokeResult[R any](c *Container, fn any, overrides Overrides, opts ...RegisterOption) (R, error) {
	var zero R
	results, err := c.invoke(fn, overrides, opts)
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, &TypeMismatchError{Expected: typeOf[R]().String(), Got: "no result"}
	}
	return cast[R](results[0].Interface())
}
