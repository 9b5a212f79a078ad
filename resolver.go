package digo

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
)

// resolutionState is the set of interfaces a goroutine is currently building,
// plus the order they were entered in for error messages.
type resolutionState struct {
	chain map[reflect.Type]bool
	path  []reflect.Type
}

// Resolver builds instances from registry entries and enforces lifetimes.
type Resolver struct {
	registry   *Registry
	singletons atomic.Pointer[InstanceCache]
	scopes     *ScopeStack
	logger     *slog.Logger

	resolutionMu    sync.Mutex
	resolutionState map[int64]*resolutionState
	statePool       sync.Pool

	buildMu buildLock
	builtMu sync.Mutex
	built   []tracked
}

// NewResolver creates a resolver over registry. Singletons are cached in
// singletons and scoped services in the current scope of scopes.
func NewResolver(registry *Registry, singletons *InstanceCache, scopes *ScopeStack, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if singletons == nil {
		singletons = NewInstanceCache(nil)
	}
	r := &Resolver{
		registry:        registry,
		scopes:          scopes,
		logger:          logger,
		resolutionState: make(map[int64]*resolutionState),
		statePool: sync.Pool{
			New: func() any {
				return &resolutionState{
					chain: make(map[reflect.Type]bool, 8),
					path:  make([]reflect.Type, 0, 8),
				}
			},
		},
	}
	r.buildMu.cond = sync.NewCond(&r.buildMu.mu)
	r.singletons.Store(singletons)
	return r
}

// Resolve returns an instance of t, built or reused according to its
// lifetime. Scoped services use the innermost scope of the calling goroutine.
//
// Overrides apply to the parameters of t's own constructor only. They are
// ignored when a cached singleton or scoped instance is returned.
func (r *Resolver) Resolve(t reflect.Type, overrides Overrides) (any, error) {
	return r.resolve(t, overrides, nil)
}

// Singletons returns the singleton cache.
func (r *Resolver) Singletons() *InstanceCache {
	return r.singletons.Load()
}

// resolve is Resolve with an explicit scope. A nil scope means the current
// scope of the calling goroutine at the time a scoped service is needed.
func (r *Resolver) resolve(t reflect.Type, overrides Overrides, scope *Scope) (any, error) {
	if err := r.startResolving(t); err != nil {
		return nil, err
	}
	defer r.finishResolving(t)

	entry, err := r.registry.Get(t)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("resolving service", "type", t.String(), "lifetime", entry.Lifetime.String())

	switch entry.Lifetime {
	case Singleton:
		return r.resolveSingleton(t, entry, overrides, scope)
	case Scoped:
		return r.resolveScoped(t, entry, overrides, scope)
	default:
		return r.build(t, entry.Constructor, overrides, scope, scope)
	}
}

func (r *Resolver) resolveSingleton(t reflect.Type, entry Entry, overrides Overrides, scope *Scope) (any, error) {
	if instance, ok := r.Singletons().Get(t); ok {
		return instance, nil
	}

	id := goid()
	r.buildMu.lock(id)
	defer r.buildMu.unlock()

	cache := r.Singletons()
	if instance, ok := cache.Get(t); ok {
		return instance, nil
	}

	// factories held by a singleton resolve in the caller's current scope
	instance, err := r.build(t, entry.Constructor, overrides, scope, nil)
	if err != nil {
		return nil, err
	}
	cache.Add(t, instance)

	// registered instances belong to the caller
	if dispose := disposerFor(instance); dispose != nil && !entry.Constructor.external {
		r.builtMu.Lock()
		r.built = append(r.built, tracked{typ: t, dispose: dispose})
		r.builtMu.Unlock()
	}
	return instance, nil
}

func (r *Resolver) resolveScoped(t reflect.Type, entry Entry, overrides Overrides, scope *Scope) (any, error) {
	if scope == nil {
		scope = r.scopes.Current()
	}
	if scope == nil {
		return nil, &ScopeError{Type: t.String(), Reason: "no active scope"}
	}
	if !scope.Active() {
		return nil, &ScopeError{Type: t.String(), Reason: "scope is not active"}
	}

	if instance, ok := scope.GetInstance(t); ok {
		return instance, nil
	}

	instance, err := r.build(t, entry.Constructor, overrides, scope, scope)
	if err != nil {
		return nil, err
	}
	scope.AddInstance(t, instance)
	return instance, nil
}

// seed merges pre-built singleton instances into the singleton cache.
func (r *Resolver) seed(instances *InstanceCache) {
	r.buildMu.lock(goid())
	defer r.buildMu.unlock()

	r.singletons.Store(r.Singletons().Merge(instances))
}

// forget drops the cached singleton for t, if any.
func (r *Resolver) forget(t reflect.Type) {
	r.buildMu.lock(goid())
	defer r.buildMu.unlock()

	r.Singletons().Remove(t)
}

// disposeSingletons disposes every singleton built by the resolver, newest
// first, and clears the singleton cache. It stops early if ctx is done.
func (r *Resolver) disposeSingletons(ctx context.Context) error {
	r.buildMu.lock(goid())
	defer r.buildMu.unlock()

	r.builtMu.Lock()
	built := r.built
	r.built = nil
	r.builtMu.Unlock()

	var errs []error
	for i := len(built) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		d := built[i]
		if err := d.dispose(); err != nil {
			r.logger.Warn("dispose failed", "type", d.typ.String(), "error", err)
			errs = append(errs, &DisposeError{Type: d.typ.String(), Err: err})
		}
	}

	r.Singletons().Clear()
	return errors.Join(errs...)
}

func (r *Resolver) getResolutionState(id int64) *resolutionState {
	r.resolutionMu.Lock()
	defer r.resolutionMu.Unlock()

	if state, ok := r.resolutionState[id]; ok {
		return state
	}
	state := r.statePool.Get().(*resolutionState)
	r.resolutionState[id] = state
	return state
}

func (r *Resolver) startResolving(t reflect.Type) error {
	state := r.getResolutionState(goid())

	if state.chain[t] {
		chain := make([]string, 0, len(state.path)+1)
		for _, p := range state.path {
			chain = append(chain, p.String())
		}
		chain = append(chain, t.String())
		return &CircularDependencyError{Type: t.String(), Chain: chain}
	}
	state.chain[t] = true
	state.path = append(state.path, t)
	return nil
}

func (r *Resolver) finishResolving(t reflect.Type) {
	id := goid()

	r.resolutionMu.Lock()
	defer r.resolutionMu.Unlock()

	state, ok := r.resolutionState[id]
	if !ok {
		return
	}
	delete(state.chain, t)
	if n := len(state.path); n > 0 && state.path[n-1] == t {
		state.path = state.path[:n-1]
	}

	if len(state.chain) == 0 {
		delete(r.resolutionState, id)
		state.path = state.path[:0]
		r.statePool.Put(state)
	}
}

// inProgress reports how many interfaces the calling goroutine is building.
func (r *Resolver) inProgress() int {
	id := goid()

	r.resolutionMu.Lock()
	defer r.resolutionMu.Unlock()

	if state, ok := r.resolutionState[id]; ok {
		return len(state.chain)
	}
	return 0
}

// buildLock serializes singleton construction across goroutines. The owning
// goroutine may re-acquire it, which happens when a singleton depends on
// another singleton.
type buildLock struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner int64
	depth int
}

func (l *buildLock) lock(id int64) {
	l.mu.Lock()
	for l.depth > 0 && l.owner != id {
		l.cond.Wait()
	}
	l.owner = id
	l.depth++
	l.mu.Unlock()
}

func (l *buildLock) unlock() {
	l.mu.Lock()
	l.depth--
	if l.depth == 0 {
		l.owner = 0
		l.cond.Broadcast()
	}
	l.mu.Unlock()
}
