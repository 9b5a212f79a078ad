package digo

import (
	"fmt"
	"reflect"
)

var factoryBinderType = reflect.TypeOf((*factoryBinder)(nil)).Elem()

// factoryBinder is implemented by every Factory[T]. The resolver detects
// Factory parameters through it and injects a bound factory instead of
// resolving T up front.
type factoryBinder interface {
	factoryTarget() reflect.Type
	bindFactory(resolve func(Overrides) (any, error)) any
}

// Factory builds T on demand. Declaring a constructor parameter of type
// Factory[T] defers the resolution of T until Get is called, which allows two
// services to depend on each other without a circular dependency error.
//
// The zero Factory is unbound; obtain one from GetFactory, FactoryFor or
// constructor injection.
type Factory[T any] struct {
	resolve func(Overrides) (any, error)
}

func (Factory[T]) factoryTarget() reflect.Type {
	return typeOf[T]()
}

func (Factory[T]) bindFactory(resolve func(Overrides) (any, error)) any {
	return Factory[T]{resolve: resolve}
}

// Get resolves a T, applying the given overrides to T's constructor.
func (f Factory[T]) Get(overrides ...Overrides) (T, error) {
	var zero T
	if f.resolve == nil {
		return zero, &BindingNotFoundError{Type: typeOf[T]().String() + " (unbound factory)"}
	}

	instance, err := f.resolve(mergeOverrides(overrides))
	if err != nil {
		return zero, err
	}
	return cast[T](instance)
}

// MustGet is like Get but panics on error.
func (f Factory[T]) MustGet(overrides ...Overrides) T {
	v, err := f.Get(overrides...)
	if err != nil {
		panic(err)
	}
	return v
}

// Bound reports whether the factory can resolve.
func (f Factory[T]) Bound() bool {
	return f.resolve != nil
}

func (f Factory[T]) String() string {
	return fmt.Sprintf("Factory[%s]", typeOf[T]())
}

// FactoryFor returns a Factory for T that resolves through p. The registration
// of T is only looked up when the factory is used.
func FactoryFor[T any](p Provider) Factory[T] {
	t := typeOf[T]()
	return Factory[T]{resolve: func(o Overrides) (any, error) {
		return p.Resolve(t, o)
	}}
}

// GetFactory returns a Factory for the registered interface I. It fails with
// BindingNotFoundError if I is not registered.
func GetFactory[I any](c *Container) (Factory[I], error) {
	if !IsRegistered[I](c) {
		return Factory[I]{}, &BindingNotFoundError{Type: typeOf[I]().String()}
	}
	return FactoryFor[I](c), nil
}

// cast converts a resolved instance to T.
func cast[T any](instance any) (T, error) {
	var zero T
	if instance == nil {
		return zero, nil
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{Expected: typeOf[T]().String(), Got: reflect.TypeOf(instance).String()}
	}
	return typed, nil
}
