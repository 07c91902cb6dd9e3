package store

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// Item is a single record keyed by attribute name.
type Item map[string]*dynamodb.AttributeValue

// Key identifies an item. It holds only the key attributes of the table.
type Key = Item

// Condition is a precondition attached to a put or delete.
type Condition int

const (
	// None applies the write unconditionally.
	None Condition = iota
	// MustNotExist requires that no item with the same key exists.
	MustNotExist
	// MustExist requires that an item with exactly the same key exists.
	MustExist
)

// String returns a readable name for the condition.
func (c Condition) String() string {
	switch c {
	case MustNotExist:
		return "must_not_exist"
	case MustExist:
		return "must_exist"
	default:
		return "none"
	}
}

// Query is an equality lookup on a key attribute.
type Query struct {
	// Index is the secondary index to query. Empty means the table's primary key.
	Index string
	// KeyName is the attribute the condition applies to.
	KeyName string
	// Value is the string value the attribute must equal.
	Value string
}

// KeySchema names the key attributes of a table.
type KeySchema struct {
	// PartitionKey is the hash key attribute name.
	PartitionKey string
	// SortKey is the range key attribute name, empty for hash-only tables.
	SortKey string
}

// KeyOf extracts the key attributes of item according to the schema.
func (k KeySchema) KeyOf(item Item) Key {
	key := Key{}
	if v, ok := item[k.PartitionKey]; ok {
		key[k.PartitionKey] = v
	}
	if k.SortKey != "" {
		if v, ok := item[k.SortKey]; ok {
			key[k.SortKey] = v
		}
	}
	return key
}

// Store is a handle on one table of a record store.
type Store interface {
	// Name returns the table name this handle is bound to.
	Name() string
	// Get returns the item stored under key, or ErrNotFound.
	Get(ctx context.Context, key Key) (Item, error)
	// Put writes item, honouring cond.
	Put(ctx context.Context, item Item, cond Condition) error
	// Update sets every attribute in fields on the item under key and returns the
	// updated attributes. A nil attribute value removes the attribute.
	Update(ctx context.Context, key Key, fields Item) (Item, error)
	// Delete removes the item under key, honouring cond.
	Delete(ctx context.Context, key Key, cond Condition) error
	// Query returns every item matching q, following pagination.
	Query(ctx context.Context, q Query) ([]Item, error)
	// Scan returns every item of the table.
	Scan(ctx context.Context) ([]Item, error)
}

// S builds a string attribute value.
func S(v string) *dynamodb.AttributeValue {
	return &dynamodb.AttributeValue{S: aws.String(v)}
}

// String returns the string value of attribute name, or "" when absent or not a string.
func (i Item) String(name string) string {
	v, ok := i[name]
	if !ok || v == nil || v.S == nil {
		return ""
	}
	return *v.S
}

// Clone returns a shallow copy of the item. Attribute values are shared, so callers
// replace values instead of mutating them.
func (i Item) Clone() Item {
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}
