package digo

import (
	"io"
	"reflect"
)

// Package digo provides a dependency injection container with transient,
// scoped and singleton lifetimes.

// Lifetime defines how instances of a registered service are shared.
type Lifetime string

// Available service lifetimes
const (
	// Transient creates a new instance for each resolution
	Transient Lifetime = "transient"
	// Scoped shares an instance within the innermost active Scope
	Scoped Lifetime = "scoped"
	// Singleton shares a single instance across the container
	Singleton Lifetime = "singleton"
)

// String returns the lifetime name.
func (l Lifetime) String() string {
	if l == "" {
		return "unknown"
	}
	return string(l)
}

// Valid reports whether l is one of the declared lifetimes.
func (l Lifetime) Valid() bool {
	switch l {
	case Transient, Scoped, Singleton:
		return true
	}
	return false
}

// Disposable is implemented by services that hold resources which must be
// released when the scope that created them exits.
type Disposable interface {
	Dispose() error
}

// Provider resolves services by interface type. It is implemented by
// *Container, *Scope and *Resolver.
type Provider interface {
	Resolve(t reflect.Type, overrides Overrides) (any, error)
}

// Overrides maps constructor parameter names to literal values that take
// precedence over registered dependencies for a single resolution.
type Overrides map[string]any

// mergeOverrides folds several override maps into one; later maps win.
func mergeOverrides(list []Overrides) Overrides {
	switch len(list) {
	case 0:
		return nil
	case 1:
		return list[0]
	}
	merged := make(Overrides)
	for _, o := range list {
		for k, v := range o {
			merged[k] = v
		}
	}
	return merged
}

// disposerFor returns the cleanup function of instance, or nil if it has
// none. Disposable takes precedence over io.Closer.
func disposerFor(instance any) func() error {
	switch v := instance.(type) {
	case Disposable:
		return v.Dispose
	case io.Closer:
		return v.Close
	}
	return nil
}

// typeOf returns the reflect.Type for T, including interface types.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
