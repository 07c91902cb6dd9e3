package models

import (
	"time"
)

// TimestampLayout is the layout of priceCheckedDate values.
const TimestampLayout = "2006-01-02 15:04:05"

// UnreviewedProduct is a user-submitted product waiting in the notfound table.
type UnreviewedProduct struct {
	ProductID  string `json:"productId" dynamodbav:"productId"`
	CreatedBy  string `json:"createdBy" dynamodbav:"createdBy"`
	Brand      string `json:"brand" dynamodbav:"brand"`
	Details    string `json:"details" dynamodbav:"details"`
	ProductURL string `json:"productUrl" dynamodbav:"productUrl"`
	ImageURL   string `json:"imageUrl,omitempty" dynamodbav:"imageUrl,omitempty"`
	Price      string `json:"price,omitempty" dynamodbav:"price,omitempty"`
}

// CatalogProduct is a canonical product. Its ProductID is shared by the copies of
// the product in every environment.
type CatalogProduct struct {
	ProductID        string `json:"productId" dynamodbav:"productId"`
	Brand            string `json:"brand" dynamodbav:"brand"`
	Details          string `json:"details" dynamodbav:"details"`
	Retailer         string `json:"retailer" dynamodbav:"retailer"`
	ProductURL       string `json:"productUrl" dynamodbav:"productUrl"`
	ImageURL         string `json:"imageUrl" dynamodbav:"imageUrl"`
	Price            string `json:"price,omitempty" dynamodbav:"price,omitempty"`
	PriceCheckedDate string `json:"priceCheckedDate,omitempty" dynamodbav:"priceCheckedDate,omitempty"`
	SearchHidden     *bool  `json:"searchHidden,omitempty" dynamodbav:"searchHidden,omitempty"`
	CreatedAt        int64  `json:"createdAt,omitempty" dynamodbav:"createdAt,omitempty"`
}

// ProductDetails are the caller-supplied fields of a catalog product.
type ProductDetails struct {
	Brand        string `json:"brand"`
	Details      string `json:"details"`
	Retailer     string `json:"retailer"`
	ImageURL     string `json:"imageUrl"`
	ProductURL   string `json:"productUrl,omitempty"`
	Price        string `json:"price,omitempty"`
	SearchHidden *bool  `json:"searchHidden,omitempty"`
}

// ToCatalog builds a catalog product from an unreviewed one. Brand, details,
// retailer and image come from the overrides; the product URL falls back to the
// unreviewed record; price is taken from the overrides only. The result has no
// ProductID and neither input is modified.
func ToCatalog(u UnreviewedProduct, o ProductDetails) CatalogProduct {
	p := CatalogProduct{
		Brand:      o.Brand,
		Details:    o.Details,
		Retailer:   o.Retailer,
		ImageURL:   o.ImageURL,
		ProductURL: u.ProductURL,
		Price:      o.Price,
	}
	if o.ProductURL != "" {
		p.ProductURL = o.ProductURL
	}
	if o.SearchHidden != nil {
		hidden := *o.SearchHidden
		p.SearchHidden = &hidden
	}
	return p
}

// NewCatalogProduct builds a directly created catalog product with a fresh price
// check date and creation time.
func NewCatalogProduct(d ProductDetails, id string, now time.Time) CatalogProduct {
	p := CatalogProduct{
		ProductID:        id,
		Brand:            d.Brand,
		Details:          d.Details,
		Retailer:         d.Retailer,
		ProductURL:       d.ProductURL,
		ImageURL:         d.ImageURL,
		Price:            d.Price,
		PriceCheckedDate: FormatTimestamp(now),
		CreatedAt:        now.Unix(),
	}
	if d.SearchHidden != nil {
		hidden := *d.SearchHidden
		p.SearchHidden = &hidden
	}
	return p
}

// WithoutPriceCheckedDate returns a copy of p with the monitoring timestamp cleared.
func (p CatalogProduct) WithoutPriceCheckedDate() CatalogProduct {
	p.PriceCheckedDate = ""
	return p
}

// ToDetails returns the caller-editable fields of p.
func (p CatalogProduct) ToDetails() ProductDetails {
	return ProductDetails{
		Brand:        p.Brand,
		Details:      p.Details,
		Retailer:     p.Retailer,
		ImageURL:     p.ImageURL,
		ProductURL:   p.ProductURL,
		Price:        p.Price,
		SearchHidden: p.SearchHidden,
	}
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
