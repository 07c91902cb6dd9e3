package reconcile

import "context"

// Record is one environment's copy of the reconciled entity. Adapters define the
// concrete type.
type Record any

// Adapter defines the entity-specific part of a sync check.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g. "products").
	Name() string

	// Fetch loads the record with id from the named environment. It must return an
	// error matching store.ErrNotFound when the record is absent.
	Fetch(ctx context.Context, environment, id string) (Record, error)

	// CompareFields compares reference with candidate and returns one description
	// per differing field, e.g. "price: primary=10 env=12". Fields that are expected
	// to differ between environments are ignored. Both records are non-nil.
	CompareFields(reference, candidate Record) []string
}
