// Package store defines the record store client: a table handle with conditional
// writes, key lookups and queries, plus the error taxonomy shared by every backend.
package store
