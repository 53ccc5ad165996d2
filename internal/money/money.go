// Package money holds the fixed rates and rounding rules for receipt
// amounts. All amounts are decimals; floats never touch a stored total.
package money

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/mmynk/tabshare/internal/apperr"
)

var (
	// TaxRate is applied to a receipt's subtotal.
	TaxRate = decimal.RequireFromString("0.07")

	// TotalRate is 1 + TaxRate.
	TotalRate = decimal.RequireFromString("1.07")

	// GuestSurchargeRate covers tax and tip on a guest's share. It is
	// separate from the receipt's own tax.
	GuestSurchargeRate = decimal.RequireFromString("1.11")
)

var pricePattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// Round2 rounds to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// TaxFor returns round2(subtotal * 0.07).
func TaxFor(subtotal decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Mul(TaxRate))
}

// TotalFor returns round2(subtotal * 1.07).
func TotalFor(subtotal decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Mul(TotalRate))
}

// GuestPayment returns the amount a guest sends the host for an
// individual total.
func GuestPayment(individualTotal decimal.Decimal) decimal.Decimal {
	return Round2(individualTotal.Mul(GuestSurchargeRate))
}

// Sum adds amounts exactly.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// ParsePrice parses user-entered prices such as "12" or "4.50".
// Signs, exponents, and thousands separators are rejected.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, apperr.Invalid("price", "is required")
	}
	if !pricePattern.MatchString(s) {
		return decimal.Zero, apperr.Invalid("price", "must be a number and can include a decimal point")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperr.Invalid("price", "must be a number")
	}
	if err := ValidatePrice(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidatePrice rejects zero, negative, and sub-cent prices.
func ValidatePrice(d decimal.Decimal) error {
	if !d.IsPositive() {
		return apperr.Invalid("price", "must be greater than zero")
	}
	if !d.Equal(Round2(d)) {
		return apperr.Invalid("price", "must not have more than two decimal places")
	}
	return nil
}

// FormatAmount renders an amount the way payment links expect it: two
// fixed decimals, no grouping, no symbol.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var usPrinter = message.NewPrinter(language.AmericanEnglish)

var maxWhole = decimal.NewFromInt(math.MaxInt64)

// FormatUSD renders an amount for display, e.g. "$1,234.50". Only the
// whole dollars go through the locale printer; cents come from the decimal.
func FormatUSD(d decimal.Decimal) string {
	r := Round2(d)
	sign := ""
	if r.IsNegative() {
		sign = "-"
		r = r.Neg()
	}
	fixed := r.StringFixed(2)
	cents := fixed[len(fixed)-2:]

	whole := r.Truncate(0)
	if whole.GreaterThan(maxWhole) {
		return sign + "$" + fixed
	}
	return usPrinter.Sprintf("%s$%v.%s", sign, number.Decimal(whole.IntPart()), cents)
}
