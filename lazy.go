package digo

import (
	"fmt"
	"sync"
)

// Lazy defers resolving T until first use and memoizes the result.
// A failed resolution is not cached; the next Get tries again.
type Lazy[T any] struct {
	provider  Provider
	overrides Overrides

	mu       sync.Mutex
	instance T
	resolved bool
}

// NewLazy returns a lazy reference to T resolved through p.
func NewLazy[T any](p Provider, overrides ...Overrides) *Lazy[T] {
	return &Lazy[T]{
		provider:  p,
		overrides: mergeOverrides(overrides),
	}
}

// Get resolves T on the first successful call and returns the same instance
// afterwards.
func (l *Lazy[T]) Get() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.resolved {
		return l.instance, nil
	}

	instance, err := Get[T](l.provider, l.overrides)
	if err != nil {
		var zero T
		return zero, err
	}
	l.instance = instance
	l.resolved = true
	return instance, nil
}

// MustGet is like Get but panics on error.
func (l *Lazy[T]) MustGet() T {
	v, err := l.Get()
	if err != nil {
		panic(err)
	}
	return v
}

// Resolved reports whether the instance has been built.
func (l *Lazy[T]) Resolved() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.resolved
}

func (l *Lazy[T]) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.resolved {
		return fmt.Sprintf("Lazy[%s](unresolved)", typeOf[T]())
	}
	return fmt.Sprintf("Lazy[%s](%v)", typeOf[T](), l.instance)
}
