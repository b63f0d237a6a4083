package httpclient

import (
	"strconv"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
)

type addressJSON struct {
	Name    string `json:"name"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

func toAddressJSON(a cart.Address) addressJSON {
	country := a.Country
	if country == "" {
		country = "US"
	}
	return addressJSON{
		Name:    a.Name,
		Street1: a.Street1,
		Street2: a.Street2,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: country,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
