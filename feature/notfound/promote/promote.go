package promote

import (
	"context"
	"errors"
	"fmt"

	"giftlist-tools/core/store"
	"giftlist-tools/feature/product/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultListIndex is the lists table index keyed on SK alone.
const DefaultListIndex = "SK-index"

var (
	// ErrUnreviewedNotFound is returned when the product to promote does not exist.
	ErrUnreviewedNotFound = fmt.Errorf("unreviewed product %w", store.ErrNotFound)
	// ErrListNotFound is returned when no list references the product.
	ErrListNotFound = fmt.Errorf("list %w", store.ErrNotFound)
	// ErrAmbiguousList is returned when more than one list references the product.
	ErrAmbiguousList = fmt.Errorf("list lookup: %w", store.ErrAmbiguous)
)

// Outcome partitions the items of one promotion step.
type Outcome struct {
	Succeeded []store.Item `json:"succeeded"`
	Failed    []store.Item `json:"failed"`
}

func newOutcome() Outcome {
	return Outcome{Succeeded: []store.Item{}, Failed: []store.Item{}}
}

func (o *Outcome) record(item store.Item, err error) {
	if err != nil {
		o.Failed = append(o.Failed, item)
		return
	}
	o.Succeeded = append(o.Succeeded, item)
}

// Result reports every step of a promotion so a retry can target the failed items.
type Result struct {
	ProductID        string  `json:"productId"`
	ListID           string  `json:"listId"`
	CatalogCreate    Outcome `json:"catalogCreate"`
	ListDeletes      Outcome `json:"listDeletes"`
	ListAdds         Outcome `json:"listAdds"`
	UnreviewedDelete Outcome `json:"unreviewedDelete"`
}

// HasFailures reports whether any step left items behind.
func (r *Result) HasFailures() bool {
	return len(r.CatalogCreate.Failed)+len(r.ListDeletes.Failed)+len(r.ListAdds.Failed)+len(r.UnreviewedDelete.Failed) > 0
}

// Engine moves unreviewed products into the catalog and relinks the list records
// that reference them.
type Engine struct {
	Catalog    store.Store
	Unreviewed store.Store
	Lists      store.Store
	// ListIndex is the lists table index keyed on SK.
	ListIndex string
	// NewID generates catalog product ids.
	NewID  func() string
	Logger *zap.Logger
}

// NewEngine creates an engine with UUID v4 ids and the default list index.
func NewEngine(catalog, unreviewed, lists store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Catalog:    catalog,
		Unreviewed: unreviewed,
		Lists:      lists,
		ListIndex:  DefaultListIndex,
		NewID:      uuid.NewString,
		Logger:     logger,
	}
}

// Promote creates a catalog product from the unreviewed product id and rewrites the
// list's product and reservation records to point at it.
//
// Reading the unreviewed product, writing the catalog product and resolving the list
// are fatal. Past that point every item is attempted and bucketed in the Result.
// The steps are not atomic; retrying converges because relinked copies are only
// written when absent and originals are only deleted when present.
func (e *Engine) Promote(ctx context.Context, unreviewedID string, overrides models.ProductDetails) (*Result, error) {
	l := e.Logger.With(zap.String("notfound_id", unreviewedID))

	unreviewedItem, err := e.Unreviewed.Get(ctx, models.ProductKey(unreviewedID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no product returned for the id %s: %w", unreviewedID, ErrUnreviewedNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unreviewed product: %w", err)
	}
	unreviewed, err := models.UnreviewedFromItem(unreviewedItem)
	if err != nil {
		return nil, err
	}

	catalog := models.ToCatalog(unreviewed, overrides)
	catalog.ProductID = e.NewID()
	catalogItem, err := catalog.Item()
	if err != nil {
		return nil, err
	}
	if err := e.Catalog.Put(ctx, catalogItem, store.None); err != nil {
		return nil, fmt.Errorf("product could not be created: %w", err)
	}
	l.Info("Created catalog product", zap.String("product_id", catalog.ProductID))

	result := &Result{
		ProductID:        catalog.ProductID,
		CatalogCreate:    newOutcome(),
		ListDeletes:      newOutcome(),
		ListAdds:         newOutcome(),
		UnreviewedDelete: newOutcome(),
	}
	result.CatalogCreate.record(catalogItem, nil)

	listID, err := e.listID(ctx, unreviewedID)
	if err != nil {
		return nil, err
	}
	result.ListID = listID

	related, err := e.relatedItems(ctx, listID, unreviewedID)
	if err != nil {
		return nil, err
	}
	l.Info("Relinking list items", zap.String("list_id", listID), zap.Int("count", len(related)))

	for _, li := range related {
		item := li.Item()
		err := e.Lists.Delete(ctx, models.ListSchema.KeyOf(item), store.MustExist)
		if err != nil {
			l.Warn("List item could not be deleted", zap.String("sk", li.Key.String()), zap.Error(err))
		}
		result.ListDeletes.record(item, err)
	}

	for _, li := range related {
		item := li.Relinked(catalog.ProductID).Item()
		err := e.Lists.Put(ctx, item, store.MustNotExist)
		if errors.Is(err, store.ErrConditionFailed) {
			l.Warn("List item already exists", zap.String("sk", item.String("SK")))
		} else if err != nil {
			l.Warn("List item could not be created", zap.String("sk", item.String("SK")), zap.Error(err))
		}
		result.ListAdds.record(item, err)
	}

	err = e.Unreviewed.Delete(ctx, models.ProductKey(unreviewedID), store.MustExist)
	if err != nil {
		l.Warn("Unreviewed product could not be deleted", zap.Error(err))
	}
	result.UnreviewedDelete.record(unreviewedItem, err)

	return result, nil
}

// listID finds the single list holding the product record of productID.
func (e *Engine) listID(ctx context.Context, productID string) (string, error) {
	items, err := e.Lists.Query(ctx, store.Query{
		Index:   e.ListIndex,
		KeyName: models.ListSchema.SortKey,
		Value:   models.ProductPrefix + productID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up list for product %s: %w", productID, err)
	}

	switch len(items) {
	case 0:
		return "", fmt.Errorf("no lists for product %s were returned: %w", productID, ErrListNotFound)
	case 1:
		return models.ListID(items[0].String(models.ListSchema.PartitionKey))
	default:
		return "", fmt.Errorf("%d lists hold product %s: %w", len(items), productID, ErrAmbiguousList)
	}
}

// relatedItems returns the product and reservation records of productID in a list.
func (e *Engine) relatedItems(ctx context.Context, listID, productID string) ([]models.ListItem, error) {
	items, err := e.Lists.Query(ctx, store.Query{
		KeyName: models.ListSchema.PartitionKey,
		Value:   models.ListPK(listID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get items of list %s: %w", listID, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no query results for list id %s: %w", listID, ErrListNotFound)
	}

	var related []models.ListItem
	for _, item := range items {
		li := models.NewListItem(item)
		if !li.Key.References(productID) {
			continue
		}
		if li.Key.Malformed() {
			e.Logger.Warn("Reservation key has unexpected segments",
				zap.String("list_id", listID), zap.String("sk", li.Key.String()))
		}
		related = append(related, li)
	}
	return related, nil
}
