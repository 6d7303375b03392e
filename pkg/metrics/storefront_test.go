package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestStorefrontMetricsNilRegisterer(t *testing.T) {
	m := NewStorefrontMetrics(nil)
	require.NotNil(t, m)

	// no-op recorders must not panic
	m.IncFeeQuote("base")
	m.IncOrderPlaced("PIX")
	m.ObserveCheckout("ok", time.Second)
	m.IncPixIntent("success")
	m.IncWebhookEvent("paid")
	m.StreamOpened()
	m.StreamClosed()
	m.IncBoardEvent("order_updated")
}

func TestStorefrontMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStorefrontMetrics(reg)

	m.IncFeeQuote("extra")
	m.IncFeeQuote("extra")
	m.IncFeeQuote("")
	m.IncOrderPlaced("DINHEIRO")
	m.IncPixIntent("failure")
	m.IncWebhookEvent("ignored")
	m.IncBoardEvent("order_created")
	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()

	require.Equal(t, float64(2), testutil.ToFloat64(m.feeQuotes.WithLabelValues("extra")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.feeQuotes.WithLabelValues("unknown")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.ordersPlaced.WithLabelValues("DINHEIRO")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.pixIntents.WithLabelValues("failure")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.webhookEvents.WithLabelValues("ignored")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.boardEvents.WithLabelValues("order_created")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.boardStreams))
}
