package digo

import (
	"reflect"
	"sort"
	"sync"
)

// Entry is the registration record of one interface: how to build it and how
// long the built instance lives.
type Entry struct {
	Constructor *Constructor
	Lifetime    Lifetime
}

// Registry maps interface types to their entries. Interfaces are unique keys;
// a second registration for the same interface is rejected.
type Registry struct {
	mu      sync.RWMutex
	entries map[reflect.Type]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[reflect.Type]Entry, 32),
	}
}

// Register inserts entry for t. Returns DuplicateRegistrationError if t is
// already registered; the existing entry is left untouched.
func (r *Registry) Register(t reflect.Type, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[t]; exists {
		return &DuplicateRegistrationError{Type: t.String()}
	}
	r.entries[t] = entry
	return nil
}

// Unregister removes the entry for t. Removing an absent entry is a no-op.
func (r *Registry) Unregister(t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, t)
}

// Get returns the entry for t or BindingNotFoundError.
func (r *Registry) Get(t reflect.Type) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[t]
	if !ok {
		return Entry{}, &BindingNotFoundError{Type: t.String()}
	}
	return entry, nil
}

// Contains reports whether t is registered.
func (r *Registry) Contains(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[t]
	return ok
}

// Len returns the number of registered interfaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Keys returns the registered interfaces ordered by name.
func (r *Registry) Keys() []reflect.Type {
	r.mu.RLock()
	keys := make([]reflect.Type, 0, len(r.entries))
	for t := range r.entries {
		keys = append(keys, t)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
