// Package metrics exposes Prometheus metrics for the HTTP server and the sync
// engines: request counts and durations, per-environment replicate and repair
// results, observed sync states and promotion outcomes.
//
// Each Registry owns its prometheus.Registry, so tests can create as many as they
// need. The start command serves it on /metrics.
package metrics
