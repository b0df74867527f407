package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/gatehouse/pkg/applications"
	"github.com/platinummonkey/gatehouse/pkg/samlapp"
)

type fakeFinder struct {
	apps map[string]*applications.Application
}

func (f *fakeFinder) FindApplicationByID(_ context.Context, id string) (*applications.Application, error) {
	if app, ok := f.apps[id]; ok {
		return app, nil
	}
	return nil, applications.ErrNotFound
}

func newSAMLTestRouter(t *testing.T) (*mux.Router, sqlmock.Sqlmock, *fakeFinder) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	finder := &fakeFinder{apps: map[string]*applications.Application{
		"app_1":   {ID: "app_1", TenantID: "t1", Name: "Acme SP", Type: applications.TypeSAML},
		"app_spa": {ID: "app_spa", Type: applications.TypeSPA},
	}}

	router := mux.NewRouter()
	NewSAMLHandlers(samlapp.NewStorage(db, nil), finder, nil, nil).RegisterRoutes(router)
	return router, mock, finder
}

func TestGetSAMLApplication(t *testing.T) {
	router, mock, _ := newSAMLTestRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM saml_application_configs").
		WithArgs("app_1").
		WillReturnRows(sqlmock.NewRows([]string{"attribute_mapping", "entity_id", "acs_url"}).
			AddRow(nil, "https://sp.example.com/metadata", []byte(`{"url":"https://sp.example.com/acs","binding":"HTTP-POST"}`)))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/saml-applications/app_1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var view map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "app_1", view["id"])
	assert.Equal(t, "Acme SP", view["name"])
	assert.Equal(t, "https://sp.example.com/metadata", view["entityId"])
}

func TestGetSAMLApplicationErrors(t *testing.T) {
	t.Run("unknown application", func(t *testing.T) {
		router, _, _ := newSAMLTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/saml-applications/app_missing", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "application.not_found")
	})

	t.Run("non-SAML application", func(t *testing.T) {
		router, mock, _ := newSAMLTestRouter(t)

		mock.ExpectQuery("SELECT (.+) FROM saml_application_configs").
			WithArgs("app_spa").
			WillReturnRows(sqlmock.NewRows([]string{"attribute_mapping", "entity_id", "acs_url"}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/saml-applications/app_spa", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "application.saml.not_saml_application")
	})
}

func TestPutSAMLConfig(t *testing.T) {
	t.Run("accepts HTTP-POST binding", func(t *testing.T) {
		router, mock, _ := newSAMLTestRouter(t)

		mock.ExpectExec("INSERT INTO saml_application_configs").
			WillReturnResult(sqlmock.NewResult(0, 1))

		body := `{"entityId":"https://sp.example.com/metadata","acsUrl":{"url":"https://sp.example.com/acs","binding":"HTTP-POST"}}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("PUT", "/api/v1/saml-applications/app_1/config", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"entityId":"https://sp.example.com/metadata"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects HTTP-Redirect binding with 422", func(t *testing.T) {
		router, mock, _ := newSAMLTestRouter(t)

		body := `{"acsUrl":{"url":"https://sp.example.com/acs","binding":"HTTP-Redirect"}}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("PUT", "/api/v1/saml-applications/app_1/config", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "application.saml.acs_url_binding_not_supported")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		router, _, _ := newSAMLTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("PUT", "/api/v1/saml-applications/app_1/config", strings.NewReader(`{"bogus":1}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestImportSPMetadata(t *testing.T) {
	metadata := `<?xml version="1.0"?>
<md:EntityDescriptor xmlns:md="urn:oasis:names:tc:SAML:2.0:metadata" entityID="https://sp.example.com/metadata">
  <md:SPSSODescriptor protocolSupportEnumeration="urn:oasis:names:tc:SAML:2.0:protocol">
    <md:AssertionConsumerService Binding="urn:oasis:names:tc:SAML:2.0:bindings:HTTP-POST" Location="https://sp.example.com/acs" index="0"/>
  </md:SPSSODescriptor>
</md:EntityDescriptor>`

	t.Run("folds entity ID and ACS into the config", func(t *testing.T) {
		router, mock, _ := newSAMLTestRouter(t)

		mock.ExpectQuery("SELECT (.+) FROM saml_application_configs").
			WithArgs("app_1").
			WillReturnRows(sqlmock.NewRows([]string{"attribute_mapping", "entity_id", "acs_url"}))
		mock.ExpectExec("INSERT INTO saml_application_configs").
			WillReturnResult(sqlmock.NewResult(0, 1))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/saml-applications/app_1/metadata", strings.NewReader(metadata)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"entityId":"https://sp.example.com/metadata"`)
		assert.Contains(t, rec.Body.String(), `"binding":"HTTP-POST"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("metadata without a POST endpoint is a 422", func(t *testing.T) {
		router, _, _ := newSAMLTestRouter(t)

		redirectOnly := strings.ReplaceAll(metadata, "HTTP-POST", "HTTP-Redirect")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/saml-applications/app_1/metadata", strings.NewReader(redirectOnly)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "application.saml.acs_url_binding_not_supported")
	})

	t.Run("garbage metadata is a 400", func(t *testing.T) {
		router, _, _ := newSAMLTestRouter(t)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/saml-applications/app_1/metadata", strings.NewReader("not xml")))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "application.saml.invalid_metadata")
	})
}

func TestRotateSecret(t *testing.T) {
	router, mock, _ := newSAMLTestRouter(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE saml_application_secrets SET active").
		WithArgs("app_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO saml_application_secrets").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/saml-applications/app_1/secrets", strings.NewReader(`{"lifespanDays":30}`)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var secret map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &secret))
	assert.Equal(t, "app_1", secret["applicationId"])
	assert.Equal(t, true, secret["active"])

	// The private key must never leave the server
	assert.NotContains(t, rec.Body.String(), "PRIVATE KEY")
	assert.NotContains(t, secret, "privateKey")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateSecretUnknownApplication(t *testing.T) {
	router, _, _ := newSAMLTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/saml-applications/app_missing/secrets", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetActiveSecret(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		router, mock, _ := newSAMLTestRouter(t)

		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM saml_application_secrets").
			WithArgs("app_1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "private_key", "certificate", "expires_at", "created_at"}).
				AddRow("secret_1", "key-pem", "cert-pem", now.AddDate(1, 0, 0), now))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/saml-applications/app_1/secrets/active", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "secret_1")
		assert.NotContains(t, rec.Body.String(), "key-pem")
	})

	t.Run("missing", func(t *testing.T) {
		router, mock, _ := newSAMLTestRouter(t)

		mock.ExpectQuery("SELECT (.+) FROM saml_application_secrets").
			WithArgs("app_1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "private_key", "certificate", "expires_at", "created_at"}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/saml-applications/app_1/secrets/active", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "application.saml.secret_not_found")
	})
}
