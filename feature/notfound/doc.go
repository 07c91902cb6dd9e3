// Package notfound implements the unreviewed product feature.
//
// Unreviewed products are user-submitted items that matched nothing in the catalog.
// They live in the notfound table of the caller's environment and are referenced by
// list and reservation records until promoted.
//
// # HTTP Endpoints
//
//   - GET /notfound : every unreviewed product
//   - GET /notfound/count : number of unreviewed products
//   - GET /notfound/:id : product with creator name, list id and list title
//   - POST /notfound/:id/promote : catalog product from the override details in the body
package notfound
