// Package metrics exposes Prometheus counters and histograms for the RPC
// surface and for receipt activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tabshare"

// Metrics holds every collector on its own registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests     *prometheus.CounterVec
	rpcDuration     *prometheus.HistogramVec
	receiptsCreated prometheus.Counter
	itemsAdded      prometheus.Counter
	itemsRemoved    prometheus.Counter
	guestsJoined    prometheus.Counter
	checkouts       *prometheus.CounterVec
	quotes          *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		receiptsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_created_total",
			Help:      "Receipts created.",
		}),
		itemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_added_total",
			Help:      "Items added to existing receipts.",
		}),
		itemsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_removed_total",
			Help:      "Items removed from receipts.",
		}),
		guestsJoined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guests_joined_total",
			Help:      "Guests that joined a receipt by code or were added by a host.",
		}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkouts, by role and payment method.",
		}, []string{"role", "method"}),
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_quotes_total",
			Help:      "Guest payment quotes, by payment method. Quotes change nothing.",
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.receiptsCreated,
		m.itemsAdded,
		m.itemsRemoved,
		m.guestsJoined,
		m.checkouts,
		m.quotes,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

func (m *Metrics) ReceiptCreated() {
	if m != nil {
		m.receiptsCreated.Inc()
	}
}

func (m *Metrics) ItemAdded() {
	if m != nil {
		m.itemsAdded.Inc()
	}
}

func (m *Metrics) ItemRemoved() {
	if m != nil {
		m.itemsRemoved.Inc()
	}
}

func (m *Metrics) GuestJoined() {
	if m != nil {
		m.guestsJoined.Inc()
	}
}

// Checkout counts a checkout. Host checkouts use method "none".
func (m *Metrics) Checkout(role, method string) {
	if m == nil {
		return
	}
	if method == "" {
		method = "none"
	}
	m.checkouts.WithLabelValues(role, method).Inc()
}

// PaymentQuoted counts a guest payment quote.
func (m *Metrics) PaymentQuoted(method string) {
	if m != nil {
		m.quotes.WithLabelValues(method).Inc()
	}
}
