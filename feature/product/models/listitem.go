package models

import (
	"fmt"
	"strings"

	"giftlist-tools/core/store"
)

// Sort key and partition key prefixes of the lists table.
const (
	ListPrefix        = "LIST#"
	ProductPrefix     = "PRODUCT#"
	ReservationPrefix = "RESERVATION#"
	UserPrefix        = "USER#"

	// legacyReservationPrefix marks reservations written before reservation ids
	// were part of the sort key: RESERVED#<productId>#<userId>.
	legacyReservationPrefix = "RESERVED#"
)

// Product types carried by list records.
const (
	TypeProducts = "products"
	TypeNotfound = "notfound"
)

// Kind tells which shape of list record a sort key belongs to.
type Kind int

const (
	// KindOther is any record that does not reference a product (owner, shares...).
	KindOther Kind = iota
	// KindProductQuantity is PRODUCT#<productId>.
	KindProductQuantity
	// KindReservation is RESERVATION#<productId>#<userId>#<reservationId>.
	KindReservation
)

func (k Kind) String() string {
	switch k {
	case KindProductQuantity:
		return "product"
	case KindReservation:
		return "reservation"
	default:
		return "other"
	}
}

// SortKey is a parsed lists table sort key.
type SortKey struct {
	Kind          Kind
	ProductID     string
	UserID        string
	ReservationID string

	raw    string
	legacy bool
	// tail holds what follows the product segment of a reservation key that
	// does not have the user and reservation segments.
	tail      string
	malformed bool
}

// ParseSortKey classifies a sort key once so callers never match on substrings.
func ParseSortKey(sk string) SortKey {
	key := SortKey{Kind: KindOther, raw: sk}

	switch {
	case strings.HasPrefix(sk, ProductPrefix):
		id := strings.TrimPrefix(sk, ProductPrefix)
		if id != "" && !strings.Contains(id, "#") {
			key.Kind = KindProductQuantity
			key.ProductID = id
		}
	case strings.HasPrefix(sk, ReservationPrefix):
		rest := strings.TrimPrefix(sk, ReservationPrefix)
		parts := strings.Split(rest, "#")
		if parts[0] == "" {
			break
		}
		key.Kind = KindReservation
		key.ProductID = parts[0]
		if len(parts) == 3 {
			key.UserID, key.ReservationID = parts[1], parts[2]
			break
		}
		key.tail = strings.TrimPrefix(rest, parts[0])
		key.malformed = true
	case strings.HasPrefix(sk, legacyReservationPrefix):
		parts := strings.Split(strings.TrimPrefix(sk, legacyReservationPrefix), "#")
		if len(parts) == 2 && parts[0] != "" {
			key.Kind = KindReservation
			key.ProductID, key.UserID = parts[0], parts[1]
			key.legacy = true
		}
	}

	return key
}

// String renders the sort key.
func (k SortKey) String() string {
	switch k.Kind {
	case KindProductQuantity:
		return ProductPrefix + k.ProductID
	case KindReservation:
		if k.legacy {
			return legacyReservationPrefix + k.ProductID + "#" + k.UserID
		}
		if k.malformed {
			return ReservationPrefix + k.ProductID + k.tail
		}
		return ReservationPrefix + k.ProductID + "#" + k.UserID + "#" + k.ReservationID
	default:
		return k.raw
	}
}

// Malformed reports whether a reservation key lacks its user and reservation
// segments. Such keys still carry a product segment and are relinked with it.
func (k SortKey) Malformed() bool {
	return k.malformed
}

// References reports whether the key is a product or reservation record of productID.
func (k SortKey) References(productID string) bool {
	return k.Kind != KindOther && k.ProductID == productID
}

// WithProduct returns the key with its product segment replaced. The user and
// reservation segments are kept as they are.
func (k SortKey) WithProduct(productID string) SortKey {
	if k.Kind == KindOther {
		return k
	}
	k.ProductID = productID
	k.raw = ""
	return k
}

// ListItem is a lists table record with its sort key parsed.
type ListItem struct {
	PK         string
	Key        SortKey
	Attributes store.Item
}

// NewListItem parses a raw lists table item.
func NewListItem(item store.Item) ListItem {
	return ListItem{
		PK:         item.String("PK"),
		Key:        ParseSortKey(item.String("SK")),
		Attributes: item,
	}
}

// Item returns the raw item with PK and SK rendered from the parsed fields.
func (li ListItem) Item() store.Item {
	item := li.Attributes.Clone()
	item["PK"] = store.S(li.PK)
	item["SK"] = store.S(li.Key.String())
	return item
}

// Relinked returns a copy of li pointing at productID as a catalog product.
// A product record gets type "products"; a reservation gets productId and
// productType. The receiver is not modified.
func (li ListItem) Relinked(productID string) ListItem {
	out := ListItem{
		PK:         li.PK,
		Key:        li.Key.WithProduct(productID),
		Attributes: li.Attributes.Clone(),
	}

	switch li.Key.Kind {
	case KindProductQuantity:
		out.Attributes["type"] = store.S(TypeProducts)
	case KindReservation:
		out.Attributes["productId"] = store.S(productID)
		out.Attributes["productType"] = store.S(TypeProducts)
	}

	out.Attributes["SK"] = store.S(out.Key.String())
	return out
}

// ListID extracts the list id from a LIST#<listId> partition key.
func ListID(pk string) (string, error) {
	if !strings.HasPrefix(pk, ListPrefix) || len(pk) == len(ListPrefix) {
		return "", fmt.Errorf("unexpected list partition key %q", pk)
	}
	return strings.TrimPrefix(pk, ListPrefix), nil
}

// ListPK builds the partition key of a list.
func ListPK(listID string) string {
	return ListPrefix + listID
}
