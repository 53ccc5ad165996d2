package models

import "github.com/shopspring/decimal"

// Checkout records one host checkout: the items marked paid in a single write.
type Checkout struct {
	// ID is the unique identifier for the checkout (UUID format).
	ID string

	// ReceiptID is the receipt the items belong to.
	ReceiptID string

	// UserID is the user added as purchaser of the items.
	UserID string

	// ItemIDs are the items marked paid.
	ItemIDs []string

	// Amount is the sum of the item prices.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the checkout was recorded.
	CreatedAt int64
}
