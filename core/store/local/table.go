package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"giftlist-tools/core/store"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/cockroachdb/pebble"
)

const sep = 0x00

// Table is a store.Store kept in a pebble database. Items are JSON encoded under
// "<table>\x00<partition>\x00<sort>" so a partition query is a prefix scan in sort key
// order.
type Table struct {
	db     *pebble.DB
	mu     *sync.Mutex
	name   string
	schema store.KeySchema
}

var _ store.Store = (*Table)(nil)

// NewTable binds a table name to db. Tables sharing a database must share mu so
// conditional writes stay atomic.
func NewTable(db *pebble.DB, mu *sync.Mutex, name string, schema store.KeySchema) *Table {
	return &Table{db: db, mu: mu, name: name, schema: schema}
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// Get reads one item by key.
func (t *Table) Get(ctx context.Context, key store.Key) (store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k, err := t.encodeKey(key)
	if err != nil {
		return nil, store.Wrap("get", t.name, err)
	}
	item, err := t.read(k)
	if err != nil {
		return nil, store.Wrap("get", t.name, err)
	}
	return item, nil
}

// Put writes an item, honouring cond.
func (t *Table) Put(ctx context.Context, item store.Item, cond store.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := t.encodeKey(item)
	if err != nil {
		return store.Wrap("put", t.name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(k, cond); err != nil {
		return fmt.Errorf("put on %s: %w", t.name, err)
	}
	return store.Wrap("put", t.name, t.write(k, item))
}

// Update merges fields into the item under key, creating it when absent as DynamoDB does.
// Nil values remove the attribute.
func (t *Table) Update(ctx context.Context, key store.Key, fields store.Item) (store.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, store.Wrap("update", t.name, errors.New("no fields to update"))
	}
	k, err := t.encodeKey(key)
	if err != nil {
		return nil, store.Wrap("update", t.name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	current, err := t.read(k)
	if errors.Is(err, store.ErrNotFound) {
		current = key.Clone()
	} else if err != nil {
		return nil, store.Wrap("update", t.name, err)
	}

	updated := store.Item{}
	for name, v := range fields {
		if v == nil {
			delete(current, name)
			continue
		}
		current[name] = v
		updated[name] = v
	}
	if err := t.write(k, current); err != nil {
		return nil, store.Wrap("update", t.name, err)
	}
	return updated, nil
}

// Delete removes the item under key, honouring cond.
func (t *Table) Delete(ctx context.Context, key store.Key, cond store.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	k, err := t.encodeKey(key)
	if err != nil {
		return store.Wrap("delete", t.name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(k, cond); err != nil {
		return fmt.Errorf("delete on %s: %w", t.name, err)
	}
	return store.Wrap("delete", t.name, t.db.Delete(k, pebble.Sync))
}

// Query matches items whose q.KeyName attribute equals q.Value. A lookup on the
// partition key without an index is a prefix scan; anything else filters the table.
func (t *Table) Query(ctx context.Context, q store.Query) ([]store.Item, error) {
	if q.Index == "" && q.KeyName == t.schema.PartitionKey {
		prefix := append(t.tablePrefix(), []byte(q.Value)...)
		prefix = append(prefix, sep)
		items, err := t.iterate(ctx, prefix, nil)
		return items, store.Wrap("query", t.name, err)
	}

	items, err := t.iterate(ctx, t.tablePrefix(), func(item store.Item) bool {
		return attributeString(item[q.KeyName]) == q.Value
	})
	return items, store.Wrap("query", t.name, err)
}

// Scan returns every item of the table in key order.
func (t *Table) Scan(ctx context.Context) ([]store.Item, error) {
	items, err := t.iterate(ctx, t.tablePrefix(), nil)
	return items, store.Wrap("scan", t.name, err)
}

func (t *Table) check(k []byte, cond store.Condition) error {
	if cond == store.None {
		return nil
	}
	_, closer, err := t.db.Get(k)
	exists := err == nil
	if exists {
		_ = closer.Close()
	} else if !errors.Is(err, pebble.ErrNotFound) {
		return err
	}

	switch {
	case cond == store.MustNotExist && exists, cond == store.MustExist && !exists:
		return store.ErrConditionFailed
	}
	return nil
}

func (t *Table) read(k []byte) (store.Item, error) {
	v, closer, err := t.db.Get(k)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return decodeItem(v)
}

func (t *Table) write(k []byte, item store.Item) error {
	b, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return t.db.Set(k, b, pebble.Sync)
}

func (t *Table) iterate(ctx context.Context, prefix []byte, keep func(store.Item) bool) ([]store.Item, error) {
	it, err := t.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var items []store.Item
	for it.First(); it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item, err := decodeItem(it.Value())
		if err != nil {
			return nil, err
		}
		if keep == nil || keep(item) {
			items = append(items, item)
		}
	}
	return items, it.Error()
}

func (t *Table) tablePrefix() []byte {
	return append([]byte(t.name), sep)
}

func (t *Table) encodeKey(item store.Item) ([]byte, error) {
	pk, ok := item[t.schema.PartitionKey]
	if !ok {
		return nil, fmt.Errorf("missing partition key %s", t.schema.PartitionKey)
	}

	var buf bytes.Buffer
	buf.Write(t.tablePrefix())
	buf.WriteString(attributeString(pk))
	buf.WriteByte(sep)

	if t.schema.SortKey != "" {
		sk, ok := item[t.schema.SortKey]
		if !ok {
			return nil, fmt.Errorf("missing sort key %s", t.schema.SortKey)
		}
		buf.WriteString(attributeString(sk))
	}
	return buf.Bytes(), nil
}

func decodeItem(b []byte) (store.Item, error) {
	var item store.Item
	if err := json.Unmarshal(b, &item); err != nil {
		return nil, fmt.Errorf("corrupt item: %w", err)
	}
	return item, nil
}

func attributeString(v *dynamodb.AttributeValue) string {
	switch {
	case v == nil:
		return ""
	case v.S != nil:
		return *v.S
	case v.N != nil:
		return *v.N
	default:
		return ""
	}
}

// upperBound returns the smallest key greater than every key with the given prefix.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
