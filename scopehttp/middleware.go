// Package scopehttp runs every HTTP request inside its own digo scope.
package scopehttp

import (
	"net/http"

	"github.com/centraunit/digo"
)

// ErrorHandler receives the error of a scope that could not be entered or
// that failed to dispose its services.
type ErrorHandler func(r *http.Request, err error)

// Option configures Middleware.
type Option func(*middleware)

type middleware struct {
	container *digo.Container
	onError   ErrorHandler
}

// OnError sets the handler for scope errors. The default logs them through
// the container's logger.
func OnError(fn ErrorHandler) Option {
	return func(m *middleware) {
		m.onError = fn
	}
}

// Middleware creates a scope per request. The scope is entered on the
// serving goroutine, stored in the request context and exited once the next
// handler returns, panics included.
func Middleware(c *digo.Container, opts ...Option) func(http.Handler) http.Handler {
	m := &middleware{container: c}
	for _, opt := range opts {
		opt(m)
	}
	if m.onError == nil {
		m.onError = func(r *http.Request, err error) {
			c.Logger().Error("request scope failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, err := c.CreateScope().Enter()
			if err != nil {
				m.onError(r, err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			defer func() {
				if err := scope.Exit(); err != nil {
					m.onError(r, err)
				}
			}()

			next.ServeHTTP(w, r.WithContext(digo.ContextWithScope(r.Context(), scope)))
		})
	}
}

// Scope returns the scope of r, or nil if r did not pass through Middleware.
func Scope(r *http.Request) *digo.Scope {
	return digo.ScopeFromContext(r.Context())
}

// Get resolves I in the scope of r. Outside Middleware it falls back to the
// container.
func Get[I any](c *digo.Container, r *http.Request, overrides ...digo.Overrides) (I, error) {
	return digo.Get[I](digo.ProviderFromContext(r.Context(), c), overrides...)
}
