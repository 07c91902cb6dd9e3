// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: rejects requests without the configured X-API-Key, except public paths
//     such as /health and /metrics.
//   - rayid: assigns every request a ray id (or keeps the caller's), stored in the
//     context for logger.WithRayID and echoed in the X-Ray-ID response header.
//
// Register rayid first so every later log line carries the id.
package middleware
