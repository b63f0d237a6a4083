package main

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	checkout "github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type totalsReport struct {
	checkout.Display
	TaxEstimated bool `json:"tax_estimated"`
}

func newTotalsCmd() *cobra.Command {
	var subtotal, shipping, tax string

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Derive order totals from a subtotal, shipping and tax",
		Long:  "Prints subtotal, shipping, tax and total rounded to cents. A missing or zero --tax uses the default 8.25% rate.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sub, err := decimal.NewFromString(subtotal)
			if err != nil {
				return fmt.Errorf("--subtotal: %w", err)
			}

			var rate *cart.ShippingRate
			if shipping != "" {
				amount, err := decimal.NewFromString(shipping)
				if err != nil {
					return fmt.Errorf("--shipping: %w", err)
				}
				rate = &cart.ShippingRate{Amount: amount}
			}

			var external *decimal.Decimal
			if tax != "" {
				t, err := decimal.NewFromString(tax)
				if err != nil {
					return fmt.Errorf("--tax: %w", err)
				}
				external = &t
			}

			items := []cart.LineItem{{ID: "subtotal", UnitPrice: sub, Quantity: 1}}
			t := checkout.ComputeTotals(items, rate, external)

			return json.NewEncoder(cmd.OutOrStdout()).Encode(totalsReport{
				Display:      t.Display(),
				TaxEstimated: t.TaxEstimated,
			})
		},
	}
	cmd.Flags().StringVar(&subtotal, "subtotal", "", "order subtotal in dollars")
	cmd.Flags().StringVar(&shipping, "shipping", "", "shipping amount in dollars")
	cmd.Flags().StringVar(&tax, "tax", "", "externally computed tax in dollars")
	_ = cmd.MarkFlagRequired("subtotal")
	return cmd
}
