package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giftlist-tools/core/audit"
	"giftlist-tools/core/metrics"
	corereconcile "giftlist-tools/core/reconcile"
	"giftlist-tools/core/storage"
	"giftlist-tools/core/store"
	"giftlist-tools/feature/product/models"
	"giftlist-tools/feature/product/reconcile"
	"giftlist-tools/feature/product/replicate"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrProductNotFound is returned when the product does not exist in the queried
// environment.
var ErrProductNotFound = fmt.Errorf("product %w", store.ErrNotFound)

// Resolver hands out the products table of a named environment.
type Resolver interface {
	Resolve(ctx context.Context, environment string) (store.Store, error)
}

// Publisher uploads run reports.
type Publisher interface {
	Publish(ctx context.Context, kind, id string, report any) (string, error)
}

// Environments names the environments the service works with.
type Environments struct {
	// Caller is the environment this process runs in. Get, create and update use it.
	Caller string
	// Primary holds the reference copy for checks and repairs.
	Primary string
	// Update lists the environments compared by a check.
	Update []string
}

// CheckResult is the outcome of a product check.
type CheckResult struct {
	Product    models.CatalogProduct              `json:"product"`
	States     map[string]corereconcile.SyncState `json:"test_environment_states"`
	Mismatches map[string][]string                `json:"mismatches,omitempty"`
	Report     corereconcile.Report               `json:"-"`
}

// SyncResult is the outcome of a create or repair across environments.
type SyncResult struct {
	ProductID    string                `json:"productId"`
	Environments corereconcile.Results `json:"environments"`
	Failed       bool                  `json:"-"`
}

// Service handles product operations.
type Service struct {
	resolver   Resolver
	envs       Environments
	replicator *replicate.Engine
	reconciler *reconcile.Engine
	logger     *zap.Logger

	recorder  audit.Recorder
	publisher Publisher
	metrics   *metrics.Registry

	// NewID generates product ids for direct creates.
	NewID func() string
	// Now stamps created and updated products.
	Now func() time.Time
}

// NewService creates a new product service.
func NewService(resolver Resolver, envs Environments, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		resolver:   resolver,
		envs:       envs,
		replicator: replicate.NewEngine(resolver, logger),
		reconciler: reconcile.NewEngine(resolver, logger),
		logger:     logger,
		recorder:   audit.Nop{},
		NewID:      uuid.NewString,
		Now:        time.Now,
	}
	s.reconciler.Now = func() time.Time { return s.Now() }
	return s
}

// WithAudit records every mutating operation with r.
func (s *Service) WithAudit(r audit.Recorder) *Service {
	s.recorder = audit.Logged{Recorder: r, Logger: s.logger}
	return s
}

// WithReports publishes check and repair reports with p.
func (s *Service) WithReports(p Publisher) *Service {
	s.publisher = p
	return s
}

// WithMetrics counts sync results in m.
func (s *Service) WithMetrics(m *metrics.Registry) *Service {
	s.metrics = m
	return s
}

// Environments returns the environments the service works with.
func (s *Service) Environments() Environments {
	return s.envs
}

// Get returns a product from the caller's environment.
func (s *Service) Get(ctx context.Context, id string) (models.CatalogProduct, error) {
	return s.fetch(ctx, s.envs.Caller, id)
}

// Create stores a new product in every selected environment under one fresh id.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*SyncResult, error) {
	if err := req.ValidateComplete(); err != nil {
		return nil, err
	}
	targets, err := req.Targets()
	if err != nil {
		return nil, err
	}

	product := models.NewCatalogProduct(req.ProductDetails, s.NewID(), s.Now())
	results, failed := s.replicator.Replicate(ctx, product, targets)

	res := &SyncResult{ProductID: product.ProductID, Environments: results, Failed: failed}
	s.finish(ctx, audit.OpReplicate, storage.KindReplicate, product.ProductID, failed, res)
	return res, nil
}

// Update overwrites the editable fields of a product in the caller's environment and
// refreshes its price check date.
func (s *Service) Update(ctx context.Context, id string, details models.ProductDetails) error {
	if err := details.ValidateComplete(); err != nil {
		return err
	}

	table, err := s.resolver.Resolve(ctx, s.envs.Caller)
	if err != nil {
		return err
	}

	product := models.CatalogProduct{
		ProductID:    id,
		Brand:        details.Brand,
		Details:      details.Details,
		Retailer:     details.Retailer,
		ProductURL:   details.ProductURL,
		ImageURL:     details.ImageURL,
		Price:        details.Price,
		SearchHidden: details.SearchHidden,
	}

	_, err = table.Update(ctx, models.ProductKey(id), product.UpdateFields(s.Now()))
	s.record(ctx, audit.OpUpdate, id, err != nil, details)
	if err != nil {
		s.logger.Error("Product could not be updated", zap.String("product_id", id), zap.Error(err))
		return fmt.Errorf("product could not be updated: %w", err)
	}
	return nil
}

// Check compares the primary copy of a product with every update environment.
func (s *Service) Check(ctx context.Context, id string) (*CheckResult, error) {
	product, err := s.fetch(ctx, s.envs.Primary, id)
	if err != nil {
		return nil, err
	}

	report, err := s.reconciler.Check(ctx, product, s.envs.Update)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		for env, state := range report.States {
			s.metrics.SyncStates.WithLabelValues(env, string(state)).Inc()
		}
	}

	res := &CheckResult{Product: product, States: report.States, Mismatches: report.Mismatches, Report: report}
	s.publish(ctx, storage.KindCheck, id, res)
	return res, nil
}

// Plan checks a product and lists the actions a repair would take.
func (s *Service) Plan(ctx context.Context, id string, opts corereconcile.Options) (corereconcile.Plan, error) {
	res, err := s.Check(ctx, id)
	if err != nil {
		return corereconcile.Plan{}, err
	}
	return corereconcile.BuildPlan(res.Report, opts), nil
}

// Repair copies the primary version of a product into every target environment.
func (s *Service) Repair(ctx context.Context, id string, targets []string) (*SyncResult, error) {
	product, err := s.fetch(ctx, s.envs.Primary, id)
	if err != nil {
		return nil, err
	}

	results, failed := s.reconciler.Repair(ctx, product, id, targets)

	res := &SyncResult{ProductID: id, Environments: results, Failed: failed}
	s.finish(ctx, audit.OpRepair, storage.KindRepair, id, failed, res)
	return res, nil
}

func (s *Service) fetch(ctx context.Context, env, id string) (models.CatalogProduct, error) {
	table, err := s.resolver.Resolve(ctx, env)
	if err != nil {
		return models.CatalogProduct{}, err
	}

	item, err := table.Get(ctx, models.ProductKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return models.CatalogProduct{}, fmt.Errorf("no product exists with id %s: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return models.CatalogProduct{}, fmt.Errorf("unexpected problem getting product from table: %w", err)
	}

	return models.CatalogFromItem(item)
}

func (s *Service) finish(ctx context.Context, op, kind, id string, failed bool, res *SyncResult) {
	if s.metrics != nil {
		s.metrics.ObserveResults(op, res.Environments)
	}
	s.record(ctx, op, id, failed, res.Environments)
	s.publish(ctx, kind, id, res)
}

func (s *Service) record(ctx context.Context, op, id string, failed bool, detail any) {
	entry, err := audit.NewEntry(op, id, failed, detail)
	if err != nil {
		s.logger.Warn("Audit entry dropped", zap.String("operation", op), zap.Error(err))
		return
	}
	_ = s.recorder.Record(ctx, entry)
}

func (s *Service) publish(ctx context.Context, kind, id string, report any) {
	if s.publisher == nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, kind, id, report); err != nil {
		s.logger.Warn("Report not published", zap.String("kind", kind), zap.String("product_id", id), zap.Error(err))
	}
}
