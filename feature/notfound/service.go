package notfound

import (
	"context"
	"errors"
	"fmt"

	"giftlist-tools/core/audit"
	"giftlist-tools/core/metrics"
	"giftlist-tools/core/storage"
	"giftlist-tools/core/store"
	"giftlist-tools/feature/notfound/promote"
	"giftlist-tools/feature/product/models"

	"go.uber.org/zap"
)

// UnknownListTitle is reported when no list references the unreviewed product.
const UnknownListTitle = "Unknown"

// ErrProductNotFound is returned when the unreviewed product does not exist.
var ErrProductNotFound = promote.ErrUnreviewedNotFound

// Resolver opens tables in a named environment.
type Resolver interface {
	Resolve(ctx context.Context, environment string) (store.Store, error)
	ResolveTable(ctx context.Context, environment, table string, schema store.KeySchema) (store.Store, error)
}

// Publisher uploads run reports.
type Publisher interface {
	Publish(ctx context.Context, kind, id string, report any) (string, error)
}

// Tables names the notfound and lists tables of the caller's environment.
type Tables struct {
	Notfound string
	Lists    string
	// ListsIndex is the lists table index keyed on SK.
	ListsIndex string
}

// Detail is an unreviewed product with the names of its creator and list.
type Detail struct {
	models.UnreviewedProduct
	CreatorsName *string `json:"creatorsName"`
	ListID       *string `json:"listId"`
	ListTitle    *string `json:"listTitle"`
}

// Service handles unreviewed product operations.
type Service struct {
	resolver    Resolver
	environment string
	tables      Tables
	logger      *zap.Logger

	recorder  audit.Recorder
	publisher Publisher
	metrics   *metrics.Registry

	// NewID overrides the catalog id generator of promotions when set.
	NewID func() string
}

// NewService creates a notfound service working in environment.
func NewService(resolver Resolver, environment string, tables Tables, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables.ListsIndex == "" {
		tables.ListsIndex = promote.DefaultListIndex
	}
	return &Service{
		resolver:    resolver,
		environment: environment,
		tables:      tables,
		logger:      logger,
		recorder:    audit.Nop{},
	}
}

// WithAudit records every promotion with r.
func (s *Service) WithAudit(r audit.Recorder) *Service {
	s.recorder = audit.Logged{Recorder: r, Logger: s.logger}
	return s
}

// WithReports publishes promotion reports with p.
func (s *Service) WithReports(p Publisher) *Service {
	s.publisher = p
	return s
}

// WithMetrics counts promotions in m.
func (s *Service) WithMetrics(m *metrics.Registry) *Service {
	s.metrics = m
	return s
}

// List returns every unreviewed product.
func (s *Service) List(ctx context.Context) ([]models.UnreviewedProduct, error) {
	table, err := s.resolver.ResolveTable(ctx, s.environment, s.tables.Notfound, models.ProductSchema)
	if err != nil {
		return nil, err
	}

	items, err := table.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("unexpected problem getting products from table: %w", err)
	}

	out := make([]models.UnreviewedProduct, 0, len(items))
	for _, item := range items {
		p, err := models.UnreviewedFromItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Count returns the number of unreviewed products.
func (s *Service) Count(ctx context.Context) (int, error) {
	table, err := s.resolver.ResolveTable(ctx, s.environment, s.tables.Notfound, models.ProductSchema)
	if err != nil {
		return 0, err
	}

	items, err := table.Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("unexpected problem getting products from table: %w", err)
	}
	return len(items), nil
}

// Get returns an unreviewed product with its creator's name and the list holding it.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	notfound, err := s.resolver.ResolveTable(ctx, s.environment, s.tables.Notfound, models.ProductSchema)
	if err != nil {
		return nil, err
	}
	lists, err := s.resolver.ResolveTable(ctx, s.environment, s.tables.Lists, models.ListSchema)
	if err != nil {
		return nil, err
	}

	item, err := notfound.Get(ctx, models.ProductKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no product exists with id %s: %w", id, ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("unexpected problem getting product from table: %w", err)
	}
	product, err := models.UnreviewedFromItem(item)
	if err != nil {
		return nil, err
	}

	d := &Detail{UnreviewedProduct: product}

	if d.CreatorsName, err = attribute(ctx, lists, userKey(product.CreatedBy), "name"); err != nil {
		return nil, fmt.Errorf("unexpected problem getting user from lists table: %w", err)
	}

	items, err := lists.Query(ctx, store.Query{
		Index:   s.tables.ListsIndex,
		KeyName: models.ListSchema.SortKey,
		Value:   models.ProductPrefix + id,
	})
	if err != nil {
		return nil, fmt.Errorf("unexpected problem querying for list in lists table: %w", err)
	}
	if len(items) == 0 {
		unknown := UnknownListTitle
		d.ListTitle = &unknown
		return d, nil
	}

	listID, err := models.ListID(items[0].String(models.ListSchema.PartitionKey))
	if err != nil {
		return nil, err
	}
	d.ListID = &listID

	key := store.Key{"PK": store.S(models.ListPK(listID)), "SK": store.S(models.UserPrefix + product.CreatedBy)}
	if d.ListTitle, err = attribute(ctx, lists, key, "title"); err != nil {
		return nil, fmt.Errorf("unexpected problem getting list from lists table: %w", err)
	}
	return d, nil
}

// Promote moves an unreviewed product into the caller's catalog.
func (s *Service) Promote(ctx context.Context, id string, overrides models.ProductDetails) (*promote.Result, error) {
	if err := overrides.Validate(); err != nil {
		return nil, err
	}

	engine, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}

	result, err := engine.Promote(ctx, id, overrides)
	s.observe(result, err)
	if err != nil {
		s.record(ctx, id, true, map[string]string{"error": err.Error()})
		return nil, err
	}

	s.record(ctx, result.ProductID, result.HasFailures(), result)
	if s.publisher != nil {
		if _, err := s.publisher.Publish(ctx, storage.KindPromotion, id, result); err != nil {
			s.logger.Warn("Report not published", zap.String("notfound_id", id), zap.Error(err))
		}
	}
	return result, nil
}

func (s *Service) engine(ctx context.Context) (*promote.Engine, error) {
	catalog, err := s.resolver.Resolve(ctx, s.environment)
	if err != nil {
		return nil, err
	}
	notfound, err := s.resolver.ResolveTable(ctx, s.environment, s.tables.Notfound, models.ProductSchema)
	if err != nil {
		return nil, err
	}
	lists, err := s.resolver.ResolveTable(ctx, s.environment, s.tables.Lists, models.ListSchema)
	if err != nil {
		return nil, err
	}

	e := promote.NewEngine(catalog, notfound, lists, s.logger)
	e.ListIndex = s.tables.ListsIndex
	if s.NewID != nil {
		e.NewID = s.NewID
	}
	return e, nil
}

func (s *Service) observe(result *promote.Result, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err != nil:
		s.metrics.Promotions.WithLabelValues("failed").Inc()
		return
	case result.HasFailures():
		s.metrics.Promotions.WithLabelValues("partial").Inc()
	default:
		s.metrics.Promotions.WithLabelValues("ok").Inc()
	}
	s.metrics.ListItemsRelinked.Add(float64(len(result.ListAdds.Succeeded)))
}

func (s *Service) record(ctx context.Context, id string, failed bool, detail any) {
	entry, err := audit.NewEntry(audit.OpPromote, id, failed, detail)
	if err != nil {
		s.logger.Warn("Audit entry dropped", zap.String("operation", audit.OpPromote), zap.Error(err))
		return
	}
	_ = s.recorder.Record(ctx, entry)
}

func userKey(userID string) store.Key {
	return store.Key{"PK": store.S(models.UserPrefix + userID), "SK": store.S(models.UserPrefix + userID)}
}

// attribute reads a string attribute of the item under key, nil when the item is absent.
func attribute(ctx context.Context, table store.Store, key store.Key, name string) (*string, error) {
	item, err := table.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v := item.String(name)
	return &v, nil
}
