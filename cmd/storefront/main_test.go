package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/codec"
	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/cart/infra/file"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTotalsCmd(t *testing.T) {
	t.Run("default tax", func(t *testing.T) {
		out, err := run(t, "totals", "--subtotal", "30")
		require.NoError(t, err)
		assert.JSONEq(t, `{"subtotal":"30.00","shipping":"0.00","tax":"2.48","total":"32.48","tax_estimated":true}`, out)
	})

	t.Run("shipping and external tax", func(t *testing.T) {
		out, err := run(t, "totals", "--subtotal", "100", "--shipping", "7.5", "--tax", "6.25")
		require.NoError(t, err)
		assert.JSONEq(t, `{"subtotal":"100.00","shipping":"7.50","tax":"6.25","total":"113.75","tax_estimated":false}`, out)
	})

	t.Run("zero tax -> default rate", func(t *testing.T) {
		out, err := run(t, "totals", "--subtotal", "100", "--tax", "0")
		require.NoError(t, err)
		assert.Contains(t, out, `"tax":"8.25"`)
	})

	t.Run("bad subtotal -> error", func(t *testing.T) {
		_, err := run(t, "totals", "--subtotal", "abc")
		require.Error(t, err)
	})

	t.Run("missing subtotal -> error", func(t *testing.T) {
		_, err := run(t, "totals")
		require.Error(t, err)
	})
}

func TestCartShowCmd(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CART_STORAGE_DRIVER", "file")
	t.Setenv("CART_FILE_ROOT", root)

	st, err := file.New(root)
	require.NoError(t, err)
	data, err := codec.Encode([]cart.LineItem{
		{ID: "a", Title: "Lamp", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
		{ID: "b", Title: "Mug", UnitPrice: decimal.RequireFromString("5.5"), Quantity: 1},
	})
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), cartapp.KeyFor("s1"), data))

	out, err := run(t, "cart", "show", "--session", "s1")
	require.NoError(t, err)

	var got cartReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "cart:s1", got.Key)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "25.50", got.Totals.Subtotal)
	assert.Equal(t, "2.10", got.Totals.Tax)
	assert.Equal(t, "27.60", got.Totals.Total)

	t.Run("unknown session -> empty cart", func(t *testing.T) {
		out, err := run(t, "cart", "show", "--session", "nobody")
		require.NoError(t, err)
		var got cartReport
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Empty(t, got.Items)
		assert.Equal(t, "0.00", got.Totals.Total)
	})
}
