package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records the counters and latencies for the customer-facing
// flows: fee quotes, checkout, PIX intents, webhook reconciliation and board
// streaming.
type StorefrontMetrics struct {
	feeQuotes       *prometheus.CounterVec
	ordersPlaced    *prometheus.CounterVec
	checkoutLatency *prometheus.HistogramVec
	pixIntents      *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	boardStreams    prometheus.Gauge
	boardEvents     *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided
// registerer. A nil registerer yields a no-op recorder so tests can run
// without a registry.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	feeQuotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_fee_quotes_total",
		Help: "Delivery fee quotes by resolved tier.",
	}, []string{"tier"})
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders accepted at checkout by payment method.",
	}, []string{"payment_method"})
	checkoutLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "End to end checkout handling time in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	pixIntents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pix_intents_total",
		Help: "PIX payment intent creations by result.",
	}, []string{"result"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Payment webhook deliveries by reconciliation outcome.",
	}, []string{"outcome"})
	boardStreams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "board_streams_active",
		Help: "Currently connected board stream subscribers.",
	})
	boardEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_events_published_total",
		Help: "Board change events published by kind.",
	}, []string{"kind"})
	reg.MustRegister(feeQuotes, ordersPlaced, checkoutLatency, pixIntents, webhookEvents, boardStreams, boardEvents)
	return &StorefrontMetrics{
		feeQuotes:       feeQuotes,
		ordersPlaced:    ordersPlaced,
		checkoutLatency: checkoutLatency,
		pixIntents:      pixIntents,
		webhookEvents:   webhookEvents,
		boardStreams:    boardStreams,
		boardEvents:     boardEvents,
	}
}

// IncFeeQuote counts one fee quote resolved at the given tier.
func (m *StorefrontMetrics) IncFeeQuote(tier string) {
	if m == nil || m.feeQuotes == nil {
		return
	}
	m.feeQuotes.WithLabelValues(normalizeLabel(tier)).Inc()
}

// IncOrderPlaced counts one accepted order.
func (m *StorefrontMetrics) IncOrderPlaced(paymentMethod string) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// ObserveCheckout records the checkout handling duration for the given result.
func (m *StorefrontMetrics) ObserveCheckout(result string, duration time.Duration) {
	if m == nil || m.checkoutLatency == nil {
		return
	}
	m.checkoutLatency.WithLabelValues(normalizeLabel(result)).Observe(duration.Seconds())
}

// IncPixIntent counts one PIX intent attempt by result.
func (m *StorefrontMetrics) IncPixIntent(result string) {
	if m == nil || m.pixIntents == nil {
		return
	}
	m.pixIntents.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncWebhookEvent counts one webhook delivery by reconciliation outcome.
func (m *StorefrontMetrics) IncWebhookEvent(outcome string) {
	if m == nil || m.webhookEvents == nil {
		return
	}
	m.webhookEvents.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// StreamOpened marks one board subscriber as connected.
func (m *StorefrontMetrics) StreamOpened() {
	if m == nil || m.boardStreams == nil {
		return
	}
	m.boardStreams.Inc()
}

// StreamClosed marks one board subscriber as disconnected.
func (m *StorefrontMetrics) StreamClosed() {
	if m == nil || m.boardStreams == nil {
		return
	}
	m.boardStreams.Dec()
}

// IncBoardEvent counts one published board event by kind.
func (m *StorefrontMetrics) IncBoardEvent(kind string) {
	if m == nil || m.boardEvents == nil {
		return
	}
	m.boardEvents.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
