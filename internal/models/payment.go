package models

import (
	"fmt"
	"strings"
)

// PaymentMethod identifies an external payment app.
type PaymentMethod string

const (
	PaymentVenmo   PaymentMethod = "venmo"
	PaymentCashApp PaymentMethod = "cashapp"
	PaymentPayPal  PaymentMethod = "paypal"
)

// PaymentMethods lists the supported methods in display order.
var PaymentMethods = []PaymentMethod{PaymentVenmo, PaymentCashApp, PaymentPayPal}

// ParsePaymentMethod accepts method names case-insensitively, including
// the spaced "Cash App" form.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	key := strings.ToLower(strings.Join(strings.Fields(s), ""))
	switch key {
	case "venmo":
		return PaymentVenmo, nil
	case "cashapp":
		return PaymentCashApp, nil
	case "paypal":
		return PaymentPayPal, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// PaymentHandles are the accounts a user receives payments on.
// Any of them may be empty.
type PaymentHandles struct {
	Venmo       string
	CashApp     string
	PayPalEmail string
}

// For returns the handle registered for method, or "".
func (h PaymentHandles) For(method PaymentMethod) string {
	switch method {
	case PaymentVenmo:
		return h.Venmo
	case PaymentCashApp:
		return h.CashApp
	case PaymentPayPal:
		return h.PayPalEmail
	}
	return ""
}

// Any reports whether at least one handle is set.
func (h PaymentHandles) Any() bool {
	return h.Venmo != "" || h.CashApp != "" || h.PayPalEmail != ""
}
