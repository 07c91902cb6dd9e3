// Package promote moves an unreviewed product into the catalog and relinks the list
// and reservation records that point at it.
package promote
