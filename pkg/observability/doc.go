// Package observability provides structured logging, Prometheus metrics and
// health probes for the portal service.
//
// The logger is a thin wrapper over stdlib slog with JSON output so log lines
// are machine-parseable in aggregation pipelines. Metrics cover the HTTP
// surface, record-store operations, authentication outcomes and live
// subscription counts. Health probes expose liveness and readiness endpoints
// on a separate port for orchestrator probes.
package observability
