// Package product implements the catalog product feature.
//
// It reads and writes catalog products in the caller's environment, creates new
// products in any set of environments, and keeps one product consistent across
// environments by checking it against the primary copy and repairing the stale or
// missing copies.
//
// # Components
//
//   - Service: orchestrates the replicate and reconcile engines, and records each
//     mutation in the audit trail, report bucket and metrics when configured.
//   - Handler: exposes the HTTP endpoints.
//   - Feature: registers the routes with the loader.
//
// # HTTP Endpoints
//
//   - GET /products/:id : product from the caller's environment
//   - POST /products : create in the environments flagged test/staging/prod
//   - PUT /products/:id : update in the caller's environment
//   - GET /products/:id/check : sync state of every update environment
//   - POST /products/:id/repair : create or update the product in the flagged environments
package product
