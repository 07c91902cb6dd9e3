package models

import (
	"fmt"
	"strconv"
	"time"

	"giftlist-tools/core/store"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
)

// Key schemas of the tables the toolset reads and writes.
var (
	ProductSchema = store.KeySchema{PartitionKey: "productId"}
	ListSchema    = store.KeySchema{PartitionKey: "PK", SortKey: "SK"}
)

// ProductKey returns the key of a product or unreviewed product.
func ProductKey(id string) store.Key {
	return store.Key{"productId": store.S(id)}
}

// UnreviewedFromItem decodes a notfound table item.
func UnreviewedFromItem(item store.Item) (UnreviewedProduct, error) {
	var u UnreviewedProduct
	if err := dynamodbattribute.UnmarshalMap(item, &u); err != nil {
		return UnreviewedProduct{}, fmt.Errorf("failed to decode unreviewed product: %w", err)
	}
	return u, nil
}

// CatalogFromItem decodes a products table item.
func CatalogFromItem(item store.Item) (CatalogProduct, error) {
	var p CatalogProduct
	if err := dynamodbattribute.UnmarshalMap(item, &p); err != nil {
		return CatalogProduct{}, fmt.Errorf("failed to decode product: %w", err)
	}
	return p, nil
}

// Item encodes p as a products table item.
func (p CatalogProduct) Item() (store.Item, error) {
	av, err := dynamodbattribute.MarshalMap(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode product: %w", err)
	}
	return av, nil
}

// Item encodes u as a notfound table item.
func (u UnreviewedProduct) Item() (store.Item, error) {
	av, err := dynamodbattribute.MarshalMap(u)
	if err != nil {
		return nil, fmt.Errorf("failed to encode unreviewed product: %w", err)
	}
	return av, nil
}

// UpdateFields returns the attributes written by an update of p: every mutable
// field plus a fresh priceCheckedDate. Empty optional fields are left untouched.
func (p CatalogProduct) UpdateFields(now time.Time) store.Item {
	fields := store.Item{
		"brand":            store.S(p.Brand),
		"details":          store.S(p.Details),
		"retailer":         store.S(p.Retailer),
		"priceCheckedDate": store.S(FormatTimestamp(now)),
	}
	if p.ProductURL != "" {
		fields["productUrl"] = store.S(p.ProductURL)
	}
	if p.ImageURL != "" {
		fields["imageUrl"] = store.S(p.ImageURL)
	}
	if p.Price != "" {
		fields["price"] = store.S(p.Price)
	}
	if p.SearchHidden != nil {
		hidden := *p.SearchHidden
		fields["searchHidden"] = &dynamodb.AttributeValue{BOOL: &hidden}
	}
	return fields
}

// SyncFields returns the attributes that make an environment's copy match p: the
// UpdateFields, p's createdAt, and a removal of every optional attribute p lacks.
func (p CatalogProduct) SyncFields(now time.Time) store.Item {
	fields := p.UpdateFields(now)
	for _, name := range []string{"productUrl", "imageUrl", "price", "searchHidden"} {
		if _, ok := fields[name]; !ok {
			fields[name] = nil
		}
	}
	if p.CreatedAt != 0 {
		fields["createdAt"] = &dynamodb.AttributeValue{N: aws.String(strconv.FormatInt(p.CreatedAt, 10))}
	} else {
		fields["createdAt"] = nil
	}
	return fields
}

// CreatedNow returns a copy of p stamped with a fresh creation time and price
// check date.
func (p CatalogProduct) CreatedNow(now time.Time) CatalogProduct {
	p.CreatedAt = now.Unix()
	p.PriceCheckedDate = FormatTimestamp(now)
	return p
}
