package models

import "fmt"

// MissingFieldError reports a required product field absent from a request.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("request did not contain the %s", e.Field)
}

// ClientError marks the error as caused by the request.
func (e *MissingFieldError) ClientError() {}

// Validate checks the fields every catalog write requires.
func (d ProductDetails) Validate() error {
	return requireFields(
		"brand", d.Brand,
		"details", d.Details,
		"retailer", d.Retailer,
		"imageUrl", d.ImageURL,
	)
}

// ValidateComplete checks the fields a direct create or update requires, which
// include the product URL and price.
func (d ProductDetails) ValidateComplete() error {
	if err := d.Validate(); err != nil {
		return err
	}
	return requireFields("productUrl", d.ProductURL, "price", d.Price)
}

func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return &MissingFieldError{Field: pairs[i]}
		}
	}
	return nil
}
