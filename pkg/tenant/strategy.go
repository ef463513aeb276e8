package tenant

import "context"

// strategy carries the connection mechanics that differ between the two
// isolation models. The adapter owns validation, qualification, caching,
// and callbacks; strategies only move the active connection.
//
// Strategies receive already-qualified names and report failures as
// domain errors: a switch to a missing tenant comes back wrapping
// ErrTenantNotFound with the connection pointed somewhere safe.
type strategy interface {
	// init establishes the default connection at construction time.
	init(ctx context.Context) error

	// connect points the active connection at the named tenant. An empty
	// name behaves like reset.
	connect(ctx context.Context, qualified string) error

	// reset restores the default connection or namespace.
	reset(ctx context.Context) error

	// extraRescuable returns matchers for driver error classes, beyond
	// the engine's invalid-statement class, that translate into domain
	// errors during connect and create.
	extraRescuable() []ErrorMatcher

	// recorded reports the qualified name of the tenant this strategy
	// last switched to, or empty when it sits on the default connection.
	recorded() string
}
