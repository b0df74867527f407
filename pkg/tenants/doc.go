// Package tenants resolves tenants from inbound requests and reads
// tenant-level configuration.
//
// Two deployment modes exist. Domain-based multi-tenancy derives the tenant
// from the request hostname (tenant `t1` lives at `t1.<base domain>`);
// otherwise a single configured tenant serves every request at a fixed
// canonical endpoint.
package tenants
