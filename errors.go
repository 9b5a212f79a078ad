package digo

import (
	"fmt"
	"strings"
)

// DuplicateRegistrationError represents an attempt to register an interface
// that already has an entry.
type DuplicateRegistrationError struct {
	Type string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("service already registered for type: %s", e.Type)
}

// BindingNotFoundError represents a missing binding error.
type BindingNotFoundError struct {
	Type string
}

func (e *BindingNotFoundError) Error() string {
	return fmt.Sprintf("no binding found for type: %s", e.Type)
}

// CircularDependencyError represents a circular dependency detection error.
// Chain lists the interfaces being built, ending with the repeated one.
type CircularDependencyError struct {
	Type  string
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("circular dependency detected for type: %s", e.Type)
	}
	return fmt.Sprintf("circular dependency detected for type %s: %s", e.Type, strings.Join(e.Chain, " -> "))
}

// MissingDependencyError represents a constructor parameter that could not be
// satisfied by an override, a registration or a default value.
type MissingDependencyError struct {
	Param       string
	Type        string
	Constructor string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("unable to resolve dependency %q (%s) for %s", e.Param, e.Type, e.Constructor)
}

// ScopeError represents an invalid scope usage: resolving a scoped service
// without an active scope, popping an empty stack, or re-using a scope.
type ScopeError struct {
	Type   string
	Reason string
}

func (e *ScopeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("scope error: %s", e.Reason)
	}
	return fmt.Sprintf("scope error for type %s: %s", e.Type, e.Reason)
}

// RegistrationTypeError represents a constructor that does not conform to the
// interface it is registered for.
type RegistrationTypeError struct {
	Type        string
	Constructor string
	Reason      string
}

func (e *RegistrationTypeError) Error() string {
	return fmt.Sprintf("invalid registration of %s for type %s: %s", e.Constructor, e.Type, e.Reason)
}

// TypeMismatchError represents a type assertion failure.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

// InitializationError represents a constructor that returned an error.
type InitializationError struct {
	Type string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed for type %s: %v", e.Type, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// DisposeError represents a service disposal failure.
type DisposeError struct {
	Type string
	Err  error
}

func (e *DisposeError) Error() string {
	return fmt.Sprintf("dispose failed for type %s: %v", e.Type, e.Err)
}

func (e *DisposeError) Unwrap() error {
	return e.Err
}
