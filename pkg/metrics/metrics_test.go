package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCart(reg)

	c.CommandApplied("add_item")
	c.CommandApplied("add_item")
	c.CommandRejected("update_quantity")
	c.PersistenceFailed("write")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.applied.WithLabelValues("add_item")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejected.WithLabelValues("update_quantity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues("write")))
}

func TestHandlerExposesCartMetrics(t *testing.T) {
	reg := NewRegistry()
	NewCart(reg).CommandApplied("clear_cart")

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), `storefront_cart_commands_applied_total{command="clear_cart"} 1`))
}
