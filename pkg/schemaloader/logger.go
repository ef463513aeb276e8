package schemaloader

import "context"

// logger defines the interface required for schema loading and migration
// logging. Compatible with slog and other structured loggers, required
// for goose migration output routing to application logging instead of
// stdout/stderr.
type logger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) DebugContext(context.Context, string, ...any) {}
func (noopLogger) InfoContext(context.Context, string, ...any)  {}
func (noopLogger) ErrorContext(context.Context, string, ...any) {}
