package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/gatehouse/pkg/applications"
	"github.com/platinummonkey/gatehouse/pkg/guard"
	"github.com/platinummonkey/gatehouse/pkg/httputil"
	"github.com/platinummonkey/gatehouse/pkg/observability"
	"github.com/platinummonkey/gatehouse/pkg/samlapp"
)

// Server is the main HTTP server
type Server struct {
	router  *mux.Router
	handler http.Handler
	logger  *observability.Logger
}

// Options configures the server
type Options struct {
	Guard   *guard.Guard
	Finder  applications.Finder
	SAML    *samlapp.Storage
	Logger  *observability.Logger
	Metrics *observability.Metrics

	// TracingEnabled wraps the whole router in OpenTelemetry HTTP tracing
	TracingEnabled bool
}

// New creates the HTTP server and sets up all routes
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	s := &Server{
		router: mux.NewRouter(),
		logger: opts.Logger,
	}

	s.router.Use(httputil.RecoveryMiddleware, httputil.RequestIDMiddleware)
	if opts.Guard != nil {
		// The guard only intercepts experience paths; API and probe routes
		// pass through untouched.
		s.router.Use(opts.Guard.Middleware)
	}

	if opts.SAML != nil {
		NewSAMLHandlers(opts.SAML, opts.Finder, opts.Logger, opts.Metrics).RegisterRoutes(s.router)
	}
	registerExperienceRoutes(s.router)

	s.handler = s.router
	if opts.TracingEnabled {
		s.handler = otelhttp.NewHandler(s.router, "gatehouse")
	}

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// RouteRegistrar registers routes on the server's router
type RouteRegistrar interface {
	RegisterRoutes(router *mux.Router)
}

// RegisterRoutes registers routes from a RouteRegistrar
func (s *Server) RegisterRoutes(registrar RouteRegistrar) {
	registrar.RegisterRoutes(s.router)
}
