package reconcile

import (
	"context"
	"errors"
	"time"

	"giftlist-tools/core/reconcile"
	"giftlist-tools/core/store"
	"giftlist-tools/feature/product/models"

	"go.uber.org/zap"
)

// RepairFailed is reported for an environment whose repair did not complete.
const RepairFailed = "Failed: Unexpected error when updating"

// Engine checks and repairs catalog products across environments.
type Engine struct {
	resolver Resolver
	adapter  *ProductAdapter
	logger   *zap.Logger

	// Now returns the time stamped on repaired products.
	Now func() time.Time
}

// NewEngine creates a reconciliation engine.
func NewEngine(resolver Resolver, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		resolver: resolver,
		adapter:  NewAdapter(resolver),
		logger:   logger,
		Now:      time.Now,
	}
}

// Check compares product with its copy in every secondary environment.
// A copy that could not be fetched for any reason other than not-found fails the
// whole check.
func (e *Engine) Check(ctx context.Context, product models.CatalogProduct, secondaries []string) (reconcile.Report, error) {
	report, err := reconcile.Classify(ctx, e.adapter, product, product.ProductID, secondaries)
	if err != nil {
		e.logger.Error("Product check failed", zap.String("product_id", product.ProductID), zap.Error(err))
		return reconcile.Report{}, err
	}

	s := report.Summary()
	e.logger.Info("Product checked",
		zap.String("product_id", product.ProductID),
		zap.Int("in_sync", s.InSync),
		zap.Int("not_in_sync", s.NotInSync),
		zap.Int("does_not_exist", s.DoesNotExist),
	)
	return report, nil
}

// Repair brings product into every target environment under id: environments that
// hold a copy are overwritten with every compared field, the others get a full create
// with a fresh createdAt. Results are
// "Updated: <id>", "Created: <id>" or RepairFailed; failed is set when any
// environment failed.
func (e *Engine) Repair(ctx context.Context, product models.CatalogProduct, id string, targets []string) (reconcile.Results, bool) {
	product.ProductID = id

	return reconcile.FanOut(ctx, targets, func(ctx context.Context, env string) (string, error) {
		l := e.logger.With(zap.String("environment", env), zap.String("product_id", id))

		msg, err := e.repairOne(ctx, product, env)
		if err != nil {
			l.Error("Repair failed", zap.Error(err))
			return RepairFailed, err
		}

		l.Info("Product repaired", zap.String("result", msg))
		return msg, nil
	})
}

func (e *Engine) repairOne(ctx context.Context, product models.CatalogProduct, env string) (string, error) {
	table, err := e.resolver.Resolve(ctx, env)
	if err != nil {
		return "", err
	}

	now := e.Now()
	key := models.ProductKey(product.ProductID)

	_, err = table.Get(ctx, key)
	switch {
	case err == nil:
		if _, err := table.Update(ctx, key, product.SyncFields(now)); err != nil {
			return "", err
		}
		return "Updated: " + product.ProductID, nil

	case errors.Is(err, store.ErrNotFound):
		item, err := product.CreatedNow(now).Item()
		if err != nil {
			return "", err
		}
		if err := table.Put(ctx, item, store.None); err != nil {
			return "", err
		}
		return "Created: " + product.ProductID, nil

	default:
		return "", err
	}
}
