package tenant_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	resolver := tenant.NewHeaderResolver("X-Tenant-ID")

	t.Run("serves the request inside the tenant and restores after", func(t *testing.T) {
		t.Parallel()

		engine := newFakeEngine("db1", "app", "acme")
		adapter := newAdapter(t, engine, databaseConfig())

		var duringNS, duringCtx string
		handler := tenant.Middleware(adapter, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, duringNS = engine.state()
			duringCtx, _ = tenant.FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		req.Header.Set("X-Tenant-ID", "acme")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "acme", duringNS)
		assert.Equal(t, "acme", duringCtx)

		current, err := adapter.Current(req.Context())
		require.NoError(t, err)
		assert.Equal(t, "app", current)
	})

	t.Run("passes through when nothing resolves", func(t *testing.T) {
		t.Parallel()

		engine := newFakeEngine("db1", "app")
		adapter := newAdapter(t, engine, databaseConfig())

		served := false
		handler := tenant.Middleware(adapter, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			served = true
			_, ok := tenant.FromContext(r.Context())
			assert.False(t, ok)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.True(t, served)
		_, namespace := engine.state()
		assert.Equal(t, "app", namespace)
	})

	t.Run("skips configured path prefixes", func(t *testing.T) {
		t.Parallel()

		engine := newFakeEngine("db1", "app", "acme")
		adapter := newAdapter(t, engine, databaseConfig())

		served := false
		handler := tenant.Middleware(adapter, resolver, tenant.WithSkipPaths("/health"))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				served = true
			}))

		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		req.Header.Set("X-Tenant-ID", "acme")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.True(t, served)
		_, namespace := engine.state()
		assert.Equal(t, "app", namespace, "skipped paths stay on the default connection")
	})

	t.Run("maps an unknown tenant to 404", func(t *testing.T) {
		t.Parallel()

		engine := newFakeEngine("db1", "app")
		adapter := newAdapter(t, engine, databaseConfig())

		served := false
		handler := tenant.Middleware(adapter, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			served = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", "ghost")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.False(t, served)

		current, err := adapter.Current(req.Context())
		require.NoError(t, err)
		assert.Equal(t, "app", current)
	})

	t.Run("maps an invalid identifier to 400", func(t *testing.T) {
		t.Parallel()

		engine := newFakeEngine("db1", "app")
		adapter := newAdapter(t, engine, databaseConfig())

		handler := tenant.Middleware(adapter, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", "not a tenant;")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("resolver failures hit the error handler", func(t *testing.T) {
		t.Parallel()

		engine := newFakeEngine("db1", "app")
		adapter := newAdapter(t, engine, databaseConfig())

		broken := tenant.ResolverFunc(func(r *http.Request) (string, error) {
			return "", errors.New("resolver exploded")
		})
		handler := tenant.Middleware(adapter, broken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("custom error handler replaces the default", func(t *testing.T) {
		t.Parallel()

		engine := newFakeEngine("db1", "app")
		adapter := newAdapter(t, engine, databaseConfig())

		handler := tenant.Middleware(adapter, resolver,
			tenant.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				http.Error(w, "nope", http.StatusTeapot)
			}),
		)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Tenant-ID", "ghost")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	t.Run("rejects requests without a tenant", func(t *testing.T) {
		t.Parallel()

		handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("passes requests with a tenant", func(t *testing.T) {
		t.Parallel()

		handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(tenant.WithTenant(req.Context(), "acme"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
