// Package models holds the product entities, their mapping to and from store items,
// and the parsed shape of lists table records.
package models
