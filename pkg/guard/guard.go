package guard

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/platinummonkey/gatehouse/pkg/applications"
	"github.com/platinummonkey/gatehouse/pkg/httputil"
	"github.com/platinummonkey/gatehouse/pkg/interaction"
	"github.com/platinummonkey/gatehouse/pkg/observability"
	"github.com/platinummonkey/gatehouse/pkg/tenants"
)

const (
	// SessionNotFoundPath is the experience UI's landing page for
	// unrecoverable sessions. Needs to stay aligned with the UI routes.
	SessionNotFoundPath = "/unknown-session"

	// AppIDQueryKey is the query parameter carrying the application ID on
	// login requests
	AppIDQueryKey = "appId"

	previewQueryKey = "preview"
)

// GuardedPaths are the interactive flow path prefixes that require a live
// interaction session. The root path is guarded as well.
var GuardedPaths = []string{
	"/sign-in",
	"/consent",
	"/register",
	"/single-sign-on",
	"/social/register",
	"/forgot-password",
}

// TenantConfigs reads the tenant-level session-not-found redirect
type TenantConfigs interface {
	SessionNotFoundRedirectURL(ctx context.Context) (string, bool, error)
}

// Guard is the session continuity guard middleware
type Guard struct {
	sessions interaction.Validator
	apps     applications.Finder
	configs  TenantConfigs
	resolver *tenants.Resolver
	cookies  *CookieCodec
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// New creates a session continuity guard. metrics may be nil.
func New(
	sessions interaction.Validator,
	apps applications.Finder,
	configs TenantConfigs,
	resolver *tenants.Resolver,
	cookies *CookieCodec,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Guard {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	if cookies == nil {
		cookies = NewCookieCodec(nil)
	}
	return &Guard{
		sessions: sessions,
		apps:     apps,
		configs:  configs,
		resolver: resolver,
		cookies:  cookies,
		logger:   logger,
		metrics:  metrics,
	}
}

// Middleware wraps next with the session continuity guard. Requests to
// unguarded paths and preview requests pass through untouched; guarded
// requests either continue with a valid session, get redirected, or receive
// the single 404 session.not_found error.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isGuardedPath(r.URL.Path) || r.URL.Query().Get(previewQueryKey) != "" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		err := g.sessions.CheckSession(r.Context(), r)
		if g.metrics != nil {
			g.metrics.SessionCheckDuration.Observe(time.Since(start).Seconds())
		}

		if err == nil {
			g.countRequest("pass")
			next.ServeHTTP(w, r)
			return
		}

		g.logger.WithError(err).WithField("path", r.URL.Path).Debug("interaction session check failed, resolving fallback")
		g.resolveFallback(w, r)
	})
}

// isGuardedPath reports whether the path requires a live interaction session
func isGuardedPath(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range GuardedPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// resolveFallback walks the fallback chain in priority order. Every step is
// individually fault-tolerant: a failed lookup means "no match", never an
// aborted chain.
func (g *Guard) resolveFallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	steps := []struct {
		name    string
		resolve func(ctx context.Context, r *http.Request) (string, bool)
	}{
		{"application", g.applicationFallback},
		{"tenant_config", g.tenantConfigFallback},
	}

	for _, step := range steps {
		if target, ok := step.resolve(ctx, r); ok {
			g.redirect(w, r, step.name, target)
			return
		}
	}

	tenantID, ok := g.resolver.ResolveTenantID(r.Host)
	if !ok {
		g.countRequest("error")
		g.countFallback("not_found")
		httputil.WriteRequestError(w, httputil.NotFound("session.not_found", ""))
		return
	}

	endpoint, err := g.resolver.EndpointFor(tenantID)
	if err != nil {
		g.countRequest("error")
		g.countFallback("not_found")
		httputil.WriteRequestError(w, httputil.NotFound("session.not_found", ""))
		return
	}

	if g.resolver.DomainBased() {
		// Keep the hostname the user actually hit so custom domains survive
		// the redirect; scheme and port stay canonical.
		overrideHostname(endpoint, requestHostname(r))
	}

	g.redirect(w, r, "tenant_endpoint", endpoint.JoinPath(SessionNotFoundPath).String())
}

// applicationFallback resolves the application's unknown-session fallback
// URI. The explicit appId query parameter wins over the signed UI cookie.
func (g *Guard) applicationFallback(ctx context.Context, r *http.Request) (string, bool) {
	appID := r.URL.Query().Get(AppIDQueryKey)
	if appID == "" {
		if cookie, ok := g.cookies.Decode(r); ok {
			appID = cookie.AppID
		}
	}
	if appID == "" {
		return "", false
	}

	app, err := g.apps.FindApplicationByID(ctx, appID)
	if err != nil {
		if !errors.Is(err, applications.ErrNotFound) {
			g.logger.WithError(err).WithField("app_id", appID).Debug("application fallback lookup failed")
		}
		return "", false
	}

	if app.UnknownSessionFallbackURI == "" {
		return "", false
	}

	return app.UnknownSessionFallbackURI, true
}

// tenantConfigFallback resolves the tenant-configured redirect URL
func (g *Guard) tenantConfigFallback(ctx context.Context, r *http.Request) (string, bool) {
	target, ok, err := g.configs.SessionNotFoundRedirectURL(ctx)
	if err != nil {
		g.logger.WithError(err).Debug("tenant config fallback lookup failed")
		return "", false
	}
	return target, ok
}

func (g *Guard) redirect(w http.ResponseWriter, r *http.Request, step, target string) {
	g.countRequest("redirect")
	g.countFallback(step)
	g.logger.WithFields(map[string]interface{}{
		"step":   step,
		"target": target,
		"path":   r.URL.Path,
	}).Info("redirecting unrecoverable session")
	http.Redirect(w, r, target, http.StatusFound)
}

func (g *Guard) countRequest(outcome string) {
	if g.metrics != nil {
		g.metrics.GuardRequestsTotal.WithLabelValues(outcome).Inc()
	}
}

func (g *Guard) countFallback(step string) {
	if g.metrics != nil {
		g.metrics.GuardFallbacksTotal.WithLabelValues(step).Inc()
	}
}

func requestHostname(r *http.Request) string {
	if hostname, _, err := net.SplitHostPort(r.Host); err == nil {
		return hostname
	}
	return r.Host
}

func overrideHostname(u *url.URL, hostname string) {
	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(hostname, port)
	} else {
		u.Host = hostname
	}
}
