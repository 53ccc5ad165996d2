package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/models"
)

func TestPaymentLink(t *testing.T) {
	handles := models.PaymentHandles{
		Venmo:       "@sam-host",
		CashApp:     "$samhost",
		PayPalEmail: "sam@example.com",
	}
	amount := decimal.RequireFromString("111")

	tests := []struct {
		method models.PaymentMethod
		want   string
	}{
		{models.PaymentVenmo, "venmo://paycharge?txn=pay&recipients=sam-host&amount=111.00&note=Tabshare%3A+Dinner"},
		{models.PaymentCashApp, "https://cash.app/$samhost/111.00"},
		{models.PaymentPayPal, "https://www.paypal.com/cgi-bin/webscr?cmd=_xclick&business=sam%40example.com&amount=111.00&currency_code=USD"},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			got, err := PaymentLink(tt.method, handles, amount, "Tabshare: Dinner")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentLinkMissingHandle(t *testing.T) {
	_, err := PaymentLink(models.PaymentPayPal, models.PaymentHandles{Venmo: "x"}, decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "PayPal")

}

func TestPaymentLinkUnsupportedMethod(t *testing.T) {
	_, err := PaymentLink("bitcoin", models.PaymentHandles{Venmo: "x"}, decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), `unsupported payment method "bitcoin"`)
	assert.NotContains(t, err.Error(), "has no")
}

func TestPaymentNote(t *testing.T) {
	assert.Equal(t, "Tabshare: Dinner", PaymentNote(&models.Receipt{Name: "Dinner", Vendor: "Joe's"}))
	assert.Equal(t, "Tabshare: Joe's", PaymentNote(&models.Receipt{Vendor: "Joe's"}))
	assert.Equal(t, "Tabshare ABCD1234", PaymentNote(&models.Receipt{JoinCode: "ABCD1234"}))
}
