package digo

import (
	"context"
)

type scopeContextKey struct{}

// ContextWithScope returns a copy of ctx carrying scope. Use it to hand a
// request's scope to code that runs on other goroutines.
func ContextWithScope(ctx context.Context, scope *Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext returns the scope stored in ctx, or nil.
func ScopeFromContext(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	scope, _ := ctx.Value(scopeContextKey{}).(*Scope)
	return scope
}

// ProviderFromContext returns the scope stored in ctx if there is one, and
// fallback otherwise.
func ProviderFromContext(ctx context.Context, fallback Provider) Provider {
	if scope := ScopeFromContext(ctx); scope != nil {
		return scope
	}
	return fallback
}
