package models_test

import (
	"strconv"
	"testing"
	"time"

	"giftlist-tools/core/store"
	"giftlist-tools/feature/product/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	notfoundID = "12345678-notf-0010-1234-abcdefghijkl"
	productURL = "https://www.johnlewis.com/john-lewis-partners-safari-mobile/p3439165"
	imageURL   = "https://johnlewis.scene7.com/is/image/JohnLewis/237244063?$rsp-pdp-port-640$"
)

func unreviewed() models.UnreviewedProduct {
	return models.UnreviewedProduct{
		ProductID:  notfoundID,
		CreatedBy:  "12345678-user-0001-1234-abcdefghijkl",
		Brand:      "JL",
		Details:    "Safari Mobile",
		ProductURL: productURL,
		Price:      "12.00",
	}
}

func overrides() models.ProductDetails {
	return models.ProductDetails{
		Brand:    "John Lewis",
		Details:  "John Lewis & Partners Safari Mobile",
		Retailer: "johnlewis.com",
		ImageURL: imageURL,
	}
}

func TestToCatalog(t *testing.T) {
	hidden := true
	tests := []struct {
		name      string
		override  func(*models.ProductDetails)
		wantURL   string
		wantPrice string
		hidden    *bool
	}{
		{"inherits product url", func(d *models.ProductDetails) {}, productURL, "", nil},
		{"override url and price", func(d *models.ProductDetails) {
			d.ProductURL = productURL + "?tagid=abcdefg"
			d.Price = "30.99"
		}, productURL + "?tagid=abcdefg", "30.99", nil},
		{"search hidden passes through", func(d *models.ProductDetails) {
			d.SearchHidden = &hidden
		}, productURL, "", &hidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := unreviewed()
			o := overrides()
			tt.override(&o)
			before := o

			p := models.ToCatalog(u, o)

			assert.Empty(t, p.ProductID)
			assert.Equal(t, "John Lewis", p.Brand)
			assert.Equal(t, "John Lewis & Partners Safari Mobile", p.Details)
			assert.Equal(t, "johnlewis.com", p.Retailer)
			assert.Equal(t, imageURL, p.ImageURL)
			assert.Equal(t, tt.wantURL, p.ProductURL)
			assert.Equal(t, tt.wantPrice, p.Price, "price never falls back to the unreviewed record")
			assert.Equal(t, tt.hidden, p.SearchHidden)
			assert.Empty(t, p.PriceCheckedDate)
			assert.Zero(t, p.CreatedAt)

			assert.Equal(t, unreviewed(), u)
			assert.Equal(t, before, o)
		})
	}
}

func TestCatalogItemRoundTrip(t *testing.T) {
	hidden := true
	p := models.ToCatalog(unreviewed(), overrides())
	p.ProductID = "12345678-prod-0001-1234-abcdefghijkl"
	p.SearchHidden = &hidden

	item, err := p.Item()
	require.NoError(t, err)
	assert.Equal(t, productURL, item.String("productUrl"))
	assert.NotContains(t, item, "price")
	assert.NotContains(t, item, "createdAt")
	require.NotNil(t, item["searchHidden"].BOOL)
	assert.True(t, *item["searchHidden"].BOOL)

	back, err := models.CatalogFromItem(item)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestUnreviewedFromItem(t *testing.T) {
	item := store.Item{
		"productId":  store.S(notfoundID),
		"createdBy":  store.S("12345678-user-0001-1234-abcdefghijkl"),
		"brand":      store.S("JL"),
		"details":    store.S("Safari Mobile"),
		"productUrl": store.S(productURL),
	}
	u, err := models.UnreviewedFromItem(item)
	require.NoError(t, err)
	assert.Equal(t, notfoundID, u.ProductID)
	assert.Equal(t, productURL, u.ProductURL)
	assert.Empty(t, u.Price)
}

func TestNewCatalogProduct(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	d := overrides()
	d.ProductURL = productURL
	d.Price = "25.00"

	p := models.NewCatalogProduct(d, "id-1", now)
	assert.Equal(t, "id-1", p.ProductID)
	assert.Equal(t, "2026-03-01 09:30:00", p.PriceCheckedDate)
	assert.Equal(t, now.Unix(), p.CreatedAt)
	assert.Equal(t, d, p.ToDetails())
}

func TestCompareFields(t *testing.T) {
	base := models.NewCatalogProduct(overrides(), "id-1", time.Unix(1700000000, 0))

	same := base
	same.PriceCheckedDate = "2020-01-01 00:00:00"
	assert.Empty(t, models.CompareFields(base, same))

	changed := base
	changed.Price = "99.00"
	changed.Brand = "Other"
	mismatches := models.CompareFields(base, changed)
	assert.Len(t, mismatches, 2)
	assert.Contains(t, mismatches, "price: primary='' env='99.00'")

	hidden := false
	flagged := base
	flagged.SearchHidden = &hidden
	assert.Equal(t, []string{"searchHidden: primary='' env='false'"}, models.CompareFields(base, flagged))

	assert.Empty(t, base.WithoutPriceCheckedDate().PriceCheckedDate)
	assert.NotEmpty(t, base.PriceCheckedDate, "receiver is a value")
}

func TestUpdateFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	p := models.NewCatalogProduct(overrides(), "id-1", now)

	fields := p.UpdateFields(now.Add(time.Hour))
	assert.Equal(t, "2026-03-01 10:30:00", fields.String("priceCheckedDate"))
	assert.Equal(t, "johnlewis.com", fields.String("retailer"))
	assert.NotContains(t, fields, "productId")
	assert.NotContains(t, fields, "createdAt")
	assert.NotContains(t, fields, "price")

	created := p.CreatedNow(now.Add(2 * time.Hour))
	assert.Equal(t, now.Add(2*time.Hour).Unix(), created.CreatedAt)
	assert.Equal(t, "2026-03-01 11:30:00", created.PriceCheckedDate)
}

func TestSyncFields(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	p := models.NewCatalogProduct(overrides(), "id-1", now)

	fields := p.SyncFields(now.Add(time.Hour))
	assert.Equal(t, "johnlewis.com", fields.String("retailer"))
	assert.Equal(t, strconv.FormatInt(now.Unix(), 10), *fields["createdAt"].N)
	assert.Contains(t, fields, "price")
	assert.Nil(t, fields["price"], "absent price is removed")
	assert.Nil(t, fields["searchHidden"])
	assert.NotContains(t, fields, "productId")

	p.CreatedAt = 0
	assert.Nil(t, p.SyncFields(now)["createdAt"])
}

func TestValidate(t *testing.T) {
	d := overrides()
	assert.NoError(t, d.Validate())

	var mf *models.MissingFieldError
	err := d.ValidateComplete()
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "productUrl", mf.Field)

	d.ProductURL = productURL
	d.Price = "1.00"
	assert.NoError(t, d.ValidateComplete())

	d.Retailer = ""
	require.ErrorAs(t, d.Validate(), &mf)
	assert.Equal(t, "retailer", mf.Field)
}

func TestEnvironmentSelection(t *testing.T) {
	targets, err := models.Select("prod", "test").Targets()
	require.NoError(t, err)
	assert.Equal(t, []string{"test", "prod"}, targets)

	none, err := models.Select().Targets()
	require.NoError(t, err)
	assert.Empty(t, none)

	yes := true
	_, err = models.EnvironmentSelection{Test: &yes, Prod: &yes}.Targets()
	var mf *models.MissingFieldError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, "request did not contain the staging attribute", err.Error())
}
