package mysql

import (
	"context"
	"errors"
)

// Healthcheck returns a closure that validates database connectivity for health endpoints.
// Uses closure pattern to inject the engine dependency while maintaining
// compatibility with standard health check interfaces that expect func(context.Context) error.
func Healthcheck(engine *Engine) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := engine.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
