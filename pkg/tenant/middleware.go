package tenant

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrNoTenantInContext indicates a handler that requires a tenant ran
// without one in the request context.
var ErrNoTenantInContext = errors.New("no tenant in context")

// ErrorHandler renders a tenant resolution or switch failure.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	skipPaths    []string
	errorHandler ErrorHandler
}

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareConfig)

// WithSkipPaths lists path prefixes served without tenant resolution,
// such as health checks and shared landing pages.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		cfg.skipPaths = append(cfg.skipPaths, paths...)
	}
}

// WithErrorHandler replaces the default error response mapping.
func WithErrorHandler(handler ErrorHandler) MiddlewareOption {
	return func(cfg *middlewareConfig) {
		if handler != nil {
			cfg.errorHandler = handler
		}
	}
}

// Middleware resolves the tenant for each request and serves the rest of
// the chain inside Process, so the connection points at the tenant for
// the duration of the request and is restored afterwards. Requests that
// resolve to no tenant pass through on the default connection.
//
// Because the adapter is bound to a single connection, requests routed
// through this middleware serialize on it. Spread load across adapters
// when one connection is not enough.
func Middleware(adapter *Adapter, resolver Resolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			identifier, err := resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if identifier == "" {
				next.ServeHTTP(w, r)
				return
			}

			err = adapter.Process(r.Context(), identifier, func(ctx context.Context) error {
				next.ServeHTTP(w, r.WithContext(ctx))
				return nil
			})
			if err != nil {
				cfg.errorHandler(w, r, err)
			}
		})
	}
}

// RequireTenant ensures a tenant is present in the context. Useful for
// protecting routes that must never run on the default connection.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tenant, ok := FromContext(r.Context()); !ok || tenant == "" {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "invalid tenant", http.StatusBadRequest)
	case errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "tenant required", http.StatusForbidden)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
