package models

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Receipt represents a shared bill.
// The host creates it, guests join it by join code, and each party
// settles the items they claim.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string

	// JoinCode is the 8-character code guests enter to find the receipt.
	// Derived from ID at creation time.
	JoinCode string

	// Name is an optional label (e.g., "Friday dinner").
	Name string

	// Vendor is where the bill came from (e.g., "Joe's Pizza").
	Vendor string

	// HostID is the user who created the receipt. Immutable.
	HostID string

	// Guests are the user IDs that joined. The set only grows.
	Guests []string

	// Items are the line items in insertion order.
	Items []ReceiptItem

	// Subtotal is the sum of item prices.
	Subtotal decimal.Decimal

	// Tax is round2(Subtotal * 0.07).
	Tax decimal.Decimal

	// Total is round2(Subtotal * 1.07).
	Total decimal.Decimal

	// Version increases by one on every write to the receipt.
	Version int64

	// CreatedAt is the Unix timestamp when the receipt was created.
	CreatedAt int64
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	// ID is a stable unique identifier (UUID format), assigned on creation.
	ID string

	// Name is the item's description (e.g., "Pizza").
	Name string

	// Price is the pre-tax price of the item.
	Price decimal.Decimal

	// Paid is set once the host has checked the item out.
	// Paid items can no longer be selected or claimed.
	Paid bool

	// Purchasers are the user IDs that claimed this item.
	Purchasers []string
}

// IsHost reports whether userID hosts the receipt.
func (r *Receipt) IsHost(userID string) bool {
	return userID != "" && r.HostID == userID
}

// IsMember reports whether userID is the host or a guest.
func (r *Receipt) IsMember(userID string) bool {
	return r.IsHost(userID) || slices.Contains(r.Guests, userID)
}

// Item returns the item with the given ID, or nil.
func (r *Receipt) Item(id string) *ReceiptItem {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return &r.Items[i]
		}
	}
	return nil
}

// UnpaidItems returns the items still open for selection.
func (r *Receipt) UnpaidItems() []ReceiptItem {
	var out []ReceiptItem
	for _, item := range r.Items {
		if !item.Paid {
			out = append(out, item)
		}
	}
	return out
}

// Clone returns a deep copy so callers can mutate without touching the original.
func (r *Receipt) Clone() *Receipt {
	c := *r
	c.Guests = slices.Clone(r.Guests)
	c.Items = make([]ReceiptItem, len(r.Items))
	for i, item := range r.Items {
		item.Purchasers = slices.Clone(item.Purchasers)
		c.Items[i] = item
	}
	return &c
}

// HasPurchaser reports whether userID already claimed the item.
func (i *ReceiptItem) HasPurchaser(userID string) bool {
	return slices.Contains(i.Purchasers, userID)
}
