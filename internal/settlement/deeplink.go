package settlement

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/money"
)

// PaymentLink builds the deep link that opens method's app with the host's
// handle and amount filled in. Venmo additionally carries a note.
func PaymentLink(method models.PaymentMethod, handles models.PaymentHandles, amount decimal.Decimal, note string) (string, error) {
	if !slices.Contains(models.PaymentMethods, method) {
		return "", apperr.Invalid("payment_method", fmt.Sprintf("unsupported payment method %q", method))
	}
	handle := strings.TrimSpace(handles.For(method))
	if handle == "" {
		return "", apperr.Invalid("payment_method", fmt.Sprintf("the host has no %s account", methodLabel(method)))
	}
	amt := money.FormatAmount(amount)

	switch method {
	case models.PaymentVenmo:
		handle = strings.TrimPrefix(handle, "@")
		return "venmo://paycharge?txn=pay" +
			"&recipients=" + url.QueryEscape(handle) +
			"&amount=" + amt +
			"&note=" + url.QueryEscape(note), nil
	case models.PaymentCashApp:
		handle = strings.TrimPrefix(handle, "$")
		return "https://cash.app/$" + url.PathEscape(handle) + "/" + amt, nil
	case models.PaymentPayPal:
		return "https://www.paypal.com/cgi-bin/webscr?cmd=_xclick" +
			"&business=" + url.QueryEscape(handle) +
			"&amount=" + amt +
			"&currency_code=USD", nil
	}
	return "", apperr.Invalid("payment_method", fmt.Sprintf("unsupported payment method %q", method))
}

func methodLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentVenmo:
		return "Venmo"
	case models.PaymentCashApp:
		return "Cash App"
	case models.PaymentPayPal:
		return "PayPal"
	}
	return string(m)
}

// PaymentNote is the memo attached to a payment for r.
func PaymentNote(r *models.Receipt) string {
	label := r.Name
	if label == "" {
		label = r.Vendor
	}
	if label == "" {
		return "Tabshare " + r.JoinCode
	}
	return "Tabshare: " + label
}
