// Package codec converts cart line items to and from their persisted JSON
// form. Writes always use the versioned envelope; reads also accept the
// legacy bare array written before the envelope existed.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// Version is the envelope version written by Encode.
const Version = 1

var (
	ErrCorrupt            = errors.New("codec: corrupt cart payload")
	ErrUnsupportedVersion = errors.New("codec: unsupported cart payload version")
)

type envelope struct {
	Version int      `json:"version"`
	Items   []record `json:"items"`
}

type record struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Price    json.Number `json:"price"`
	Image    string      `json:"image,omitempty"`
	Quantity int         `json:"quantity"`
	Category string      `json:"category,omitempty"`
	Width    *float64    `json:"width,omitempty"`
	Height   *float64    `json:"height,omitempty"`
	Length   *float64    `json:"length,omitempty"`
	Weight   *float64    `json:"weight,omitempty"`
}

// Encode serializes items in insertion order.
func Encode(items []domain.LineItem) ([]byte, error) {
	env := envelope{Version: Version, Items: make([]record, 0, len(items))}
	for _, it := range items {
		env.Items = append(env.Items, record{
			ID:       it.ID,
			Title:    it.Title,
			Price:    json.Number(it.UnitPrice.String()),
			Image:    it.ImageRef,
			Quantity: it.Quantity,
			Category: it.Category,
			Width:    it.WidthIn,
			Height:   it.HeightIn,
			Length:   it.LengthIn,
			Weight:   it.WeightLb,
		})
	}
	return json.Marshal(env)
}

// Decode parses a persisted payload. Empty input and JSON null decode to an
// empty cart. Records that could never have been produced by a valid
// mutation (blank id, quantity below one, missing or negative price) are
// dropped, and duplicate ids are merged into the first occurrence.
func Decode(data []byte) ([]domain.LineItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var records []record
	switch data[0] {
	case '[':
		if err := unmarshal(data, &records); err != nil {
			return nil, err
		}
	case '{':
		var env envelope
		if err := unmarshal(data, &env); err != nil {
			return nil, err
		}
		if env.Version > Version || env.Version < 0 {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
		}
		records = env.Items
	default:
		return nil, ErrCorrupt
	}

	return toItems(records), nil
}

func unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: trailing data", ErrCorrupt)
	}
	return nil
}

func toItems(records []record) []domain.LineItem {
	var items []domain.LineItem
	index := make(map[string]int, len(records))

	for _, r := range records {
		if strings.TrimSpace(r.ID) == "" || r.Quantity < 1 || r.Quantity > domain.MaxQuantity || r.Price == "" {
			continue
		}
		price, err := decimal.NewFromString(r.Price.String())
		if err != nil || price.IsNegative() {
			continue
		}
		if i, ok := index[r.ID]; ok {
			// Duplicates merge but never past the per-line cap.
			items[i].Quantity = min(items[i].Quantity+r.Quantity, domain.MaxQuantity)
			continue
		}
		index[r.ID] = len(items)
		items = append(items, domain.LineItem{
			ID:        r.ID,
			Title:     r.Title,
			UnitPrice: price,
			Quantity:  r.Quantity,
			ImageRef:  r.Image,
			Category:  r.Category,
			WidthIn:   r.Width,
			HeightIn:  r.Height,
			LengthIn:  r.Length,
			WeightLb:  r.Weight,
		})
	}
	return items
}
