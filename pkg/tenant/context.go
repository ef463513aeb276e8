package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithTenant adds a qualified tenant name to the context.
func WithTenant(ctx context.Context, tenant string) context.Context {
	return context.WithValue(ctx, contextKey{}, tenant)
}

// FromContext retrieves the tenant name from the context.
// Returns "", false if no tenant is found.
func FromContext(ctx context.Context) (string, bool) {
	tenant, ok := ctx.Value(contextKey{}).(string)
	return tenant, ok
}

// MustFromContext retrieves the tenant name from the context.
// Panics if no tenant is found. Use this only in handlers
// that absolutely require a tenant to function.
func MustFromContext(ctx context.Context) string {
	tenant, ok := FromContext(ctx)
	if !ok || tenant == "" {
		panic("tenant: no tenant in context")
	}
	return tenant
}

// LoggerExtractor returns a context extractor for the logger that adds
// the active tenant to every log line carrying the request context.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if tenant, ok := FromContext(ctx); ok && tenant != "" {
			return slog.String("tenant", tenant), true
		}
		return slog.Attr{}, false
	}
}
