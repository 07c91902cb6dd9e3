package replicate

import (
	"context"
	"fmt"

	"giftlist-tools/core/reconcile"
	"giftlist-tools/core/store"
	"giftlist-tools/feature/product/models"

	"go.uber.org/zap"
)

// Resolver hands out the products table of a named environment.
type Resolver interface {
	Resolve(ctx context.Context, environment string) (store.Store, error)
}

// Engine writes a catalog product into several environments.
type Engine struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewEngine creates a replication engine.
func NewEngine(resolver Resolver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{resolver: resolver, logger: logger}
}

// Replicate puts product unconditionally into every target environment, in order.
// Each environment reports "Success:<id>" or "Failed:<reason>"; failed is set when
// any environment failed. One failure never stops the remaining environments.
func (e *Engine) Replicate(ctx context.Context, product models.CatalogProduct, targets []string) (reconcile.Results, bool) {
	item, err := product.Item()
	if err != nil {
		results := make(reconcile.Results, len(targets))
		for _, env := range targets {
			results[env] = "Failed:" + err.Error()
		}
		return results, true
	}

	return reconcile.FanOut(ctx, targets, func(ctx context.Context, env string) (string, error) {
		l := e.logger.With(zap.String("environment", env), zap.String("product_id", product.ProductID))

		table, err := e.resolver.Resolve(ctx, env)
		if err != nil {
			l.Error("Could not resolve environment", zap.Error(err))
			return "Failed:" + err.Error(), err
		}

		if err := table.Put(ctx, item, store.None); err != nil {
			l.Error("Product could not be created", zap.String("table", table.Name()), zap.Error(err))
			return fmt.Sprintf("Failed:Product could not be created (%s).", table.Name()), err
		}

		l.Info("Product replicated", zap.String("table", table.Name()))
		return "Success:" + product.ProductID, nil
	})
}
