package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Address struct {
	Name    string
	Street1 string
	Street2 string
	City    string
	State   string
	Zip     string
	Country string
}

// Validate requires every field except Street2 to be non-blank.
func (a Address) Validate() error {
	required := []string{a.Name, a.Street1, a.City, a.State, a.Zip, a.Country}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return ErrInvalidAddress
		}
	}
	return nil
}

// ShippingRate is one option offered by the shipping collaborator.
type ShippingRate struct {
	ID            string
	Amount        decimal.Decimal
	Currency      string
	Provider      string
	Service       string
	EstimatedDays int
}
