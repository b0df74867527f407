// Package observability bundles the runtime's logging, metrics, tracing, and
// health-check plumbing.
//
// Logging is structured JSON on top of log/slog; request-scoped fields
// (request ID, tenant ID) travel through context. Metrics are Prometheus
// collectors exposed on the health port next to the liveness and readiness
// probes. Tracing is optional and exports over OTLP/gRPC when enabled.
package observability
