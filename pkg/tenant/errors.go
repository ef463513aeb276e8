package tenant

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound indicates a switch or drop targeted a tenant whose
	// database or schema does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantExists indicates a create targeted a tenant whose database
	// or schema already exists.
	ErrTenantExists = errors.New("tenant already exists")

	// ErrInvalidIdentifier indicates a tenant name failed validation.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrInvalidConfig indicates the adapter configuration is unusable.
	ErrInvalidConfig = errors.New("invalid tenant configuration")

	// ErrSchemaImport indicates loading the schema into a new tenant failed.
	// Tenants in this state are unusable and should be dropped.
	ErrSchemaImport = errors.New("tenant schema import failed")

	// ErrSeedData indicates seeding a freshly created tenant failed.
	ErrSeedData = errors.New("tenant seed failed")
)

// ErrorMatcher reports whether a driver error belongs to a class the
// routing layer translates into a domain error. Engines contribute their
// invalid-statement class; strategies may contribute additional classes
// such as connection failures. Anything unmatched propagates unchanged.
type ErrorMatcher func(error) bool

// translator holds the matcher set assembled at construction time. It is
// consulted exactly once per failed connect, create, or drop; errors
// surfaced by the tenant's own workload are never translated.
type translator struct {
	matchers []ErrorMatcher
}

func (t *translator) rescuable(err error) bool {
	for _, match := range t.matchers {
		if match != nil && match(err) {
			return true
		}
	}
	return false
}

func notFound(tenant string, cause error) error {
	return errors.Join(ErrTenantNotFound, fmt.Errorf("tenant %q: %w", tenant, cause))
}

func alreadyExists(tenant string, cause error) error {
	return errors.Join(ErrTenantExists, fmt.Errorf("tenant %q: %w", tenant, cause))
}
