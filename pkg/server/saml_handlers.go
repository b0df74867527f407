package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/gatehouse/pkg/applications"
	"github.com/platinummonkey/gatehouse/pkg/httputil"
	"github.com/platinummonkey/gatehouse/pkg/observability"
	"github.com/platinummonkey/gatehouse/pkg/samlapp"
)

const maxMetadataBytes = 1 << 20

// SAMLHandlers serves the SAML application admin API
type SAMLHandlers struct {
	store   *samlapp.Storage
	finder  applications.Finder
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewSAMLHandlers creates the SAML admin handlers. metrics may be nil.
func NewSAMLHandlers(store *samlapp.Storage, finder applications.Finder, logger *observability.Logger, metrics *observability.Metrics) *SAMLHandlers {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &SAMLHandlers{
		store:   store,
		finder:  finder,
		logger:  logger,
		metrics: metrics,
	}
}

// RegisterRoutes registers the SAML admin routes
func (h *SAMLHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/saml-applications/{id}", h.getApplication).Methods("GET")
	router.HandleFunc("/api/v1/saml-applications/{id}/config", h.putConfig).Methods("PUT")
	router.HandleFunc("/api/v1/saml-applications/{id}/metadata", h.importMetadata).Methods("POST")
	router.HandleFunc("/api/v1/saml-applications/{id}/secrets", h.rotateSecret).Methods("POST")
	router.HandleFunc("/api/v1/saml-applications/{id}/secrets/active", h.getActiveSecret).Methods("GET")
}

// getApplication handles GET /api/v1/saml-applications/{id}
func (h *SAMLHandlers) getApplication(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	view, err := h.store.ApplicationView(r.Context(), h.finder, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, view)
}

// putConfig handles PUT /api/v1/saml-applications/{id}/config
func (h *SAMLHandlers) putConfig(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var cfg samlapp.Config
	if err := httputil.DecodeJSON(r, &cfg); err != nil {
		httputil.WriteBadRequest(w, "guard.invalid_input", "invalid SAML config payload")
		return
	}
	cfg.ApplicationID = id

	// The application must exist and be a SAML application before any
	// configuration is accepted for it.
	app, err := h.finder.FindApplicationByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.store.UpsertConfig(r.Context(), &cfg); err != nil {
		h.writeError(w, err)
		return
	}

	view, err := samlapp.AssembleView(app, &cfg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, view)
}

// importMetadata handles POST /api/v1/saml-applications/{id}/metadata. The
// body is the SP's metadata XML; the entity ID and the HTTP-POST ACS
// endpoint are folded into the stored config.
func (h *SAMLHandlers) importMetadata(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMetadataBytes))
	if err != nil {
		httputil.WriteBadRequest(w, "guard.invalid_input", "failed to read metadata body")
		return
	}

	descriptor, err := samlapp.ParseServiceProviderMetadata(raw)
	if err != nil {
		httputil.WriteBadRequest(w, "application.saml.invalid_metadata", err.Error())
		return
	}

	acs, ok := descriptor.PostACSURL()
	if !ok {
		httputil.WriteRequestError(w, httputil.Unprocessable(
			"application.saml.acs_url_binding_not_supported",
			"SP metadata advertises no HTTP-POST AssertionConsumerService",
		))
		return
	}

	cfg, err := h.store.GetConfig(r.Context(), id)
	if errors.Is(err, samlapp.ErrConfigNotFound) {
		cfg = &samlapp.Config{ApplicationID: id}
	} else if err != nil {
		h.writeError(w, err)
		return
	}

	cfg.EntityID = descriptor.EntityID
	cfg.ACSURL = acs
	if err := h.store.UpsertConfig(r.Context(), cfg); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"application_id": id,
		"entity_id":      descriptor.EntityID,
	}).Info("imported SP metadata")
	httputil.WriteSuccess(w, cfg)
}

type rotateSecretRequest struct {
	LifespanDays int `json:"lifespanDays"`
}

// rotateSecret handles POST /api/v1/saml-applications/{id}/secrets. Fresh
// key material is generated and stored as the new active secret; the private
// key never appears in the response.
func (h *SAMLHandlers) rotateSecret(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req rotateSecretRequest
	if err := httputil.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteBadRequest(w, "guard.invalid_input", "invalid rotation payload")
		return
	}

	if _, err := h.finder.FindApplicationByID(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	start := time.Now()
	material, err := samlapp.GenerateKeyMaterial(req.LifespanDays)
	if h.metrics != nil {
		h.metrics.KeygenDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if h.metrics != nil {
			h.metrics.KeygenErrorsTotal.Inc()
		}
		h.writeError(w, err)
		return
	}

	secret, err := h.store.InsertSecret(r.Context(), id, material, true)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"application_id": id,
		"secret_id":      secret.ID,
		"expires_at":     secret.ExpiresAt.Format(time.RFC3339),
	}).Info("rotated SAML signing secret")
	httputil.WriteCreated(w, secret)
}

// getActiveSecret handles GET /api/v1/saml-applications/{id}/secrets/active
func (h *SAMLHandlers) getActiveSecret(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	secret, err := h.store.ActiveSecret(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httputil.WriteSuccess(w, secret)
}

// writeError maps domain errors onto the platform error contract
func (h *SAMLHandlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, applications.ErrNotFound):
		httputil.WriteRequestError(w, httputil.NotFound("application.not_found", ""))
	case errors.Is(err, samlapp.ErrConfigNotFound):
		httputil.WriteRequestError(w, httputil.NotFound("application.saml.config_not_found", ""))
	case errors.Is(err, samlapp.ErrSecretNotFound):
		httputil.WriteRequestError(w, httputil.NotFound("application.saml.secret_not_found", ""))
	case errors.Is(err, samlapp.ErrNotSAMLApplication):
		httputil.WriteRequestError(w, httputil.Unprocessable("application.saml.not_saml_application", err.Error()))
	default:
		h.logger.WithError(err).Error("SAML admin request failed")
		httputil.WriteRequestError(w, err)
	}
}
