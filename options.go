package digo

import (
	"log/slog"
	"reflect"

	"github.com/centraunit/digo/config"
)

// Option configures a Container.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	config    *config.Config
	instances map[reflect.Type]any
}

// WithLogger sets the logger used by the container and its scopes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConfig applies cfg. Unless WithLogger is also given, the container logs
// through cfg.NewLogger.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithInstances registers pre-built singletons keyed by interface type.
func WithInstances(instances map[reflect.Type]any) Option {
	return func(o *options) {
		if o.instances == nil {
			o.instances = make(map[reflect.Type]any, len(instances))
		}
		for t, v := range instances {
			o.instances[t] = v
		}
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*registration)

type registration struct {
	lifetime Lifetime
	names    []string
	defaults map[string]any
}

func newRegistration(opts []RegisterOption) *registration {
	reg := &registration{lifetime: Transient}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// WithLifetime sets the lifetime of the registration. The default is
// Transient.
func WithLifetime(l Lifetime) RegisterOption {
	return func(r *registration) {
		r.lifetime = l
	}
}

// WithParams names the constructor parameters in declaration order. Names
// are what overrides and defaults refer to; unnamed parameters are called
// arg0, arg1 and so on.
func WithParams(names ...string) RegisterOption {
	return func(r *registration) {
		r.names = append(r.names[:0], names...)
	}
}

// WithDefault declares the value used for the named parameter when it is
// neither overridden nor registered.
func WithDefault(name string, value any) RegisterOption {
	return func(r *registration) {
		if r.defaults == nil {
			r.defaults = make(map[string]any)
		}
		r.defaults[name] = value
	}
}
