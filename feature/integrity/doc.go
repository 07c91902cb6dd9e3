// Package integrity checks that every table and bucket the toolset depends on is
// reachable with the current credentials.
//
// # Checks Provided
//
//   - Environments: looks up a sentinel key in the products table of every environment,
//     assuming the cross-account role where needed. A not-found answer counts as ok.
//   - Tables: the same lookup against the caller's notfound and lists tables.
//   - Reports: verifies the report bucket exists when report publishing is enabled.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/environments : Runs the environment check.
//   - GET /integrity/tables : Runs the table check.
//   - GET /integrity/reports : Runs the report bucket check.
package integrity
