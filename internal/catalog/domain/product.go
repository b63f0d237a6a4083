package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Title       string
	Price       decimal.Decimal
	Description string
	Image       string
	Category    string
	Condition   string
	Size        string
	Brand       string

	WidthIn  *float64
	HeightIn *float64
	LengthIn *float64
	WeightLb *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Title       *string
	Price       *decimal.Decimal
	Description *string
	Image       *string
	Category    *string
	Condition   *string
	Size        *string
	Brand       *string
	WidthIn     *float64
	HeightIn    *float64
	LengthIn    *float64
	WeightLb    *float64
}

// Apply returns p with every non-nil field of patch copied over.
func (patch Patch) Apply(p Product) Product {
	setString(&p.Title, patch.Title)
	setString(&p.Description, patch.Description)
	setString(&p.Image, patch.Image)
	setString(&p.Category, patch.Category)
	setString(&p.Condition, patch.Condition)
	setString(&p.Size, patch.Size)
	setString(&p.Brand, patch.Brand)
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	setFloat(&p.WidthIn, patch.WidthIn)
	setFloat(&p.HeightIn, patch.HeightIn)
	setFloat(&p.LengthIn, patch.LengthIn)
	setFloat(&p.WeightLb, patch.WeightLb)
	return p
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst **float64, v *float64) {
	if v != nil {
		f := *v
		*dst = &f
	}
}
