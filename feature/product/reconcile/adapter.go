package reconcile

import (
	"context"
	"fmt"

	"giftlist-tools/core/reconcile"
	"giftlist-tools/core/store"
	"giftlist-tools/feature/product/models"
)

// Resolver hands out the products table of a named environment.
type Resolver interface {
	Resolve(ctx context.Context, environment string) (store.Store, error)
}

// ProductAdapter implements reconcile.Adapter for catalog products.
type ProductAdapter struct {
	resolver Resolver
}

var _ reconcile.Adapter = (*ProductAdapter)(nil)

// NewAdapter creates a product adapter reading through resolver.
func NewAdapter(resolver Resolver) *ProductAdapter {
	return &ProductAdapter{resolver: resolver}
}

// Name returns the unique name of this adapter.
func (a *ProductAdapter) Name() string {
	return "products"
}

// Fetch loads the product with id from the environment's products table.
func (a *ProductAdapter) Fetch(ctx context.Context, environment, id string) (reconcile.Record, error) {
	table, err := a.resolver.Resolve(ctx, environment)
	if err != nil {
		return nil, err
	}

	item, err := table.Get(ctx, models.ProductKey(id))
	if err != nil {
		return nil, fmt.Errorf("no product exists with id %s in %s: %w", id, table.Name(), err)
	}

	return models.CatalogFromItem(item)
}

// CompareFields compares two catalog products, ignoring priceCheckedDate.
func (a *ProductAdapter) CompareFields(reference, candidate reconcile.Record) []string {
	ref := reference.(models.CatalogProduct)
	cand := candidate.(models.CatalogProduct)
	return models.CompareFields(ref.WithoutPriceCheckedDate(), cand.WithoutPriceCheckedDate())
}
