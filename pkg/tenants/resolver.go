package tenants

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Resolver maps request hostnames to tenant IDs and tenant IDs to their
// canonical endpoints.
type Resolver struct {
	domainBased     bool
	baseDomain      string
	defaultTenantID string
	endpoint        *url.URL
}

// NewResolver creates a tenant resolver. endpoint is the canonical endpoint
// used when multi-tenancy is not domain-based; it must parse as an absolute
// URL in that mode.
func NewResolver(domainBased bool, baseDomain, defaultTenantID, endpoint string) (*Resolver, error) {
	r := &Resolver{
		domainBased:     domainBased,
		baseDomain:      strings.TrimPrefix(baseDomain, "."),
		defaultTenantID: defaultTenantID,
	}

	if !domainBased {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid tenant endpoint %q: %w", endpoint, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("tenant endpoint %q must be an absolute URL", endpoint)
		}
		r.endpoint = parsed
	}

	return r, nil
}

// DomainBased reports whether tenants are distinguished by hostname
func (r *Resolver) DomainBased() bool {
	return r.domainBased
}

// ResolveTenantID resolves the tenant for a request host (host[:port]).
// Returns false when no tenant can be determined.
func (r *Resolver) ResolveTenantID(host string) (string, bool) {
	if !r.domainBased {
		if r.defaultTenantID == "" {
			return "", false
		}
		return r.defaultTenantID, true
	}

	hostname := stripPort(host)
	suffix := "." + r.baseDomain
	if !strings.HasSuffix(hostname, suffix) {
		// Custom domains carry no tenant label; the admin layer maps those
		// separately and the guard treats them as unresolvable.
		return "", false
	}

	tenantID := strings.TrimSuffix(hostname, suffix)
	if tenantID == "" || strings.Contains(tenantID, ".") {
		return "", false
	}

	return tenantID, true
}

// EndpointFor computes the canonical endpoint origin for a tenant
func (r *Resolver) EndpointFor(tenantID string) (*url.URL, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}

	if r.domainBased {
		return &url.URL{
			Scheme: "https",
			Host:   tenantID + "." + r.baseDomain,
		}, nil
	}

	// Copy so callers can mutate the host freely
	endpoint := *r.endpoint
	return &endpoint, nil
}

func stripPort(host string) string {
	if hostname, _, err := net.SplitHostPort(host); err == nil {
		return hostname
	}
	return host
}
