package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/cart/infra/storage"
	checkout "github.com/dwikikusuma/storefront/internal/checkout/domain"
)

type cartLine struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

type cartReport struct {
	Key    string           `json:"key"`
	Items  []cartLine       `json:"items"`
	Totals checkout.Display `json:"totals"`
}

func newCartCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect persisted carts",
	}

	var (
		session string
		timeout time.Duration
	)
	show := &cobra.Command{
		Use:   "show",
		Short: "Print a persisted cart and its totals as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log := cliLogger(cfg)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			st, err := storage.Open(ctx, cfg.Cart)
			if err != nil {
				return fmt.Errorf("open cart storage: %w", err)
			}
			defer st.Close()

			store := cartapp.Open(ctx, st, cartapp.WithKey(cartapp.KeyFor(session)), cartapp.WithLogger(log))
			select {
			case <-store.Ready():
			case <-ctx.Done():
				return fmt.Errorf("hydrate %s: %w", store.Key(), ctx.Err())
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reportFor(store.Key(), store.Snapshot()))
		},
	}
	show.Flags().StringVar(&session, "session", "", "session id; empty reads the default cart key")
	show.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for storage")

	cmd.AddCommand(show)
	return cmd
}

func reportFor(key string, st cart.State) cartReport {
	r := cartReport{
		Key:    key,
		Items:  make([]cartLine, 0, len(st.Items)),
		Totals: checkout.ComputeTotals(st.Items, nil, nil).Display(),
	}
	for _, it := range st.Items {
		r.Items = append(r.Items, cartLine{
			ID:       it.ID,
			Title:    it.Title,
			Price:    json.Number(it.UnitPrice.String()),
			Quantity: it.Quantity,
		})
	}
	return r
}
