package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ReceiptCreated()
	m.ReceiptCreated()
	m.Checkout("host", "")
	m.Checkout("guest", "venmo")
	m.Checkout("guest", "venmo")
	m.PaymentQuoted("cashapp")
	m.ObserveRPC("/tabshare.v1.ReceiptService/GetReceipt", "ok", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.receiptsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues("host", "none")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkouts.WithLabelValues("guest", "venmo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotes.WithLabelValues("cashapp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcRequests.WithLabelValues("/tabshare.v1.ReceiptService/GetReceipt", "ok")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.rpcDuration))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.GuestJoined()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "tabshare_guests_joined_total 1"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ReceiptCreated()
	m.Checkout("guest", "paypal")
	m.PaymentQuoted("paypal")
	m.ObserveRPC("x", "ok", time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
