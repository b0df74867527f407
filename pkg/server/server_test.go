package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/gatehouse/pkg/guard"
	"github.com/platinummonkey/gatehouse/pkg/interaction"
	"github.com/platinummonkey/gatehouse/pkg/samlapp"
	"github.com/platinummonkey/gatehouse/pkg/tenants"
)

type noRedirectConfigs struct{}

func (noRedirectConfigs) SessionNotFoundRedirectURL(context.Context) (string, bool, error) {
	return "", false, nil
}

func newTestServer(t *testing.T, sessionValid bool) *Server {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	resolver, err := tenants.NewResolver(false, "", "t1", "https://t1.gatehouse.app")
	require.NoError(t, err)

	finder := &fakeFinder{}
	sessions := interaction.ValidatorFunc(func(context.Context, *http.Request) error {
		if sessionValid {
			return nil
		}
		return interaction.ErrSessionNotFound
	})

	return New(Options{
		Guard:  guard.New(sessions, finder, noRedirectConfigs{}, resolver, nil, nil, nil),
		Finder: finder,
		SAML:   samlapp.NewStorage(db, nil),
	})
}

func TestServerGuardsExperienceRoutes(t *testing.T) {
	srv := newTestServer(t, false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/sign-in", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://t1.gatehouse.app/unknown-session", rec.Header().Get("Location"))
}

func TestServerServesExperienceWithValidSession(t *testing.T) {
	srv := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/sign-in", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestServerUnknownSessionPageIsUnguarded(t *testing.T) {
	srv := newTestServer(t, false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/unknown-session", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "session has expired")
}

func TestServerAPIBypassesGuard(t *testing.T) {
	srv := newTestServer(t, false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/saml-applications/app_missing", nil))

	// Guarded-session failures never leak into the admin API; this is the
	// handler's own 404.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "application.not_found")
}

func TestServerSetsRequestID(t *testing.T) {
	srv := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/unknown-session", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
