// Package selection tracks the items one participant intends to settle
// during a session. State is in memory only and never persisted.
package selection

import (
	"errors"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/money"
)

// ErrItemPaid is returned when toggling an item that is already paid.
var ErrItemPaid = errors.New("item is already paid")

// Tracker holds the selected items and their running total.
// The zero value is an empty selection ready for use.
type Tracker struct {
	mu    sync.Mutex
	items []models.ReceiptItem
	total decimal.Decimal
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Toggle removes item if it is selected (matched by ID) and adds it
// otherwise. Paid items cannot be toggled.
// It reports whether the item is selected afterwards.
func (t *Tracker) Toggle(item models.ReceiptItem) (bool, error) {
	if item.Paid {
		return false, ErrItemPaid
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	selected := true
	if i := t.indexOf(item.ID); i >= 0 {
		t.items = slices.Delete(t.items, i, i+1)
		selected = false
	} else {
		t.items = append(t.items, item)
	}
	t.recompute()
	return selected, nil
}

// Reset clears the selection.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = nil
	t.total = decimal.Zero
}

// Prune drops selected items that r no longer lists or shows as paid.
// Call it after reloading a receipt.
func (t *Tracker) Prune(r *models.Receipt) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := len(t.items)
	t.items = slices.DeleteFunc(t.items, func(sel models.ReceiptItem) bool {
		current := r.Item(sel.ID)
		return current == nil || current.Paid
	})
	t.recompute()
	return before - len(t.items)
}

// Has reports whether the item with id is selected.
func (t *Tracker) Has(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.indexOf(id) >= 0
}

// Len returns the number of selected items.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// Items returns a copy of the selected items in selection order.
func (t *Tracker) Items() []models.ReceiptItem {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.items)
}

// IDs returns the selected item IDs in selection order.
func (t *Tracker) IDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, len(t.items))
	for i, item := range t.items {
		ids[i] = item.ID
	}
	return ids
}

// Total is the sum of the selected items' prices.
func (t *Tracker) Total() decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

func (t *Tracker) indexOf(id string) int {
	return slices.IndexFunc(t.items, func(item models.ReceiptItem) bool { return item.ID == id })
}

// recompute must be called with mu held.
func (t *Tracker) recompute() {
	prices := make([]decimal.Decimal, len(t.items))
	for i, item := range t.items {
		prices[i] = item.Price
	}
	t.total = money.Sum(prices...)
}
