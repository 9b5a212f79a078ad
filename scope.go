package digo

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
)

type scopeState int

const (
	scopeCreated scopeState = iota
	scopeActive
	scopeDisposed
)

var scopeSeq atomic.Uint64

// tracked is a disposable instance recorded in construction order.
type tracked struct {
	typ     reflect.Type
	dispose func() error
}

// Scope is a bounded unit of work with its own instance cache. Scoped
// services resolved while the scope is current are cached in it, and those
// that are Disposable (or io.Closer) are disposed when the scope exits.
//
// Enter and Exit must be called on the same goroutine.
type Scope struct {
	id          uint64
	cache       *InstanceCache
	disposables []tracked
	stack       *ScopeStack
	resolver    *Resolver
	state       scopeState
	mu          sync.Mutex
	logger      *slog.Logger
}

// NewScope creates a scope bound to stack and resolver. Most callers use
// Container.CreateScope instead.
func NewScope(stack *ScopeStack, resolver *Resolver, logger *slog.Logger) *Scope {
	if logger == nil {
		logger = slog.Default()
	}
	id := scopeSeq.Add(1)
	return &Scope{
		id:       id,
		cache:    NewInstanceCache(nil),
		stack:    stack,
		resolver: resolver,
		logger:   logger.With("scope", id),
	}
}

// ID returns a process-unique identifier, used in logs.
func (s *Scope) ID() uint64 {
	return s.id
}

// Enter pushes the scope onto the calling goroutine's scope stack, making it
// the current scope. A scope can be entered once.
func (s *Scope) Enter() (*Scope, error) {
	s.mu.Lock()
	switch s.state {
	case scopeActive:
		s.mu.Unlock()
		return nil, &ScopeError{Reason: "scope already entered"}
	case scopeDisposed:
		s.mu.Unlock()
		return nil, &ScopeError{Reason: "scope already disposed"}
	}
	s.state = scopeActive
	s.mu.Unlock()

	s.stack.Push(s)
	return s, nil
}

// Exit disposes every tracked instance in the order it was created, then pops
// the scope from the stack. Disposal is best-effort: all instances are
// attempted and the failures are returned joined.
func (s *Scope) Exit() error {
	s.mu.Lock()
	if s.state != scopeActive {
		s.mu.Unlock()
		return &ScopeError{Reason: "scope is not active"}
	}
	s.state = scopeDisposed
	disposables := s.disposables
	s.disposables = nil
	s.mu.Unlock()

	var errs []error
	for _, d := range disposables {
		if err := d.dispose(); err != nil {
			s.logger.Warn("dispose failed", "type", d.typ.String(), "error", err)
			errs = append(errs, &DisposeError{Type: d.typ.String(), Err: err})
		}
	}

	if err := s.stack.Pop(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Resolve resolves t through the container's resolver. Scoped services are
// taken from this scope, which does not have to be the current one, so an
// active scope can be used from other goroutines too.
func (s *Scope) Resolve(t reflect.Type, overrides Overrides) (any, error) {
	return s.resolver.resolve(t, overrides, s)
}

// GetInstance returns the instance cached in this scope for t.
func (s *Scope) GetInstance(t reflect.Type) (any, bool) {
	return s.cache.Get(t)
}

// AddInstance caches instance for t and, if it can be disposed, tracks it for
// disposal on Exit.
func (s *Scope) AddInstance(t reflect.Type, instance any) {
	s.cache.Add(t, instance)

	if dispose := disposerFor(instance); dispose != nil {
		s.mu.Lock()
		s.disposables = append(s.disposables, tracked{typ: t, dispose: dispose})
		s.mu.Unlock()
	}
}

// Active reports whether the scope has been entered and not yet exited.
func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == scopeActive
}
