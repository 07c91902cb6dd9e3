package models

import (
	"fmt"
	"strconv"
)

// CompareFields lists the fields that differ between a reference product and an
// environment's copy. PriceCheckedDate is not compared.
func CompareFields(primary, env CatalogProduct) []string {
	var mismatches []string

	compare := func(field, a, b string) {
		if a != b {
			mismatches = append(mismatches, fmt.Sprintf("%s: primary='%s' env='%s'", field, a, b))
		}
	}

	compare("productId", primary.ProductID, env.ProductID)
	compare("brand", primary.Brand, env.Brand)
	compare("details", primary.Details, env.Details)
	compare("retailer", primary.Retailer, env.Retailer)
	compare("productUrl", primary.ProductURL, env.ProductURL)
	compare("imageUrl", primary.ImageURL, env.ImageURL)
	compare("price", primary.Price, env.Price)
	compare("searchHidden", boolString(primary.SearchHidden), boolString(env.SearchHidden))

	if primary.CreatedAt != env.CreatedAt {
		mismatches = append(mismatches, fmt.Sprintf("createdAt: primary=%d env=%d", primary.CreatedAt, env.CreatedAt))
	}

	return mismatches
}

func boolString(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
