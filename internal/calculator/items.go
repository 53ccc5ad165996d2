package calculator

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/money"
)

// Recompute derives Tax and Total from Subtotal.
func Recompute(r *models.Receipt) {
	r.Tax = money.TaxFor(r.Subtotal)
	r.Total = money.TotalFor(r.Subtotal)
}

// CheckTotals verifies the receipt's totals invariant.
func CheckTotals(r *models.Receipt) error {
	if !r.Tax.Equal(money.TaxFor(r.Subtotal)) {
		return fmt.Errorf("tax %s does not match subtotal %s", r.Tax, r.Subtotal)
	}
	if !r.Total.Equal(money.TotalFor(r.Subtotal)) {
		return fmt.Errorf("total %s does not match subtotal %s", r.Total, r.Subtotal)
	}
	return nil
}

// NewItem validates name and price and returns an unpaid item with a fresh ID.
func NewItem(name string, price decimal.Decimal) (models.ReceiptItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ReceiptItem{}, apperr.Invalid("name", "item name is required")
	}
	if err := money.ValidatePrice(price); err != nil {
		return models.ReceiptItem{}, err
	}
	return models.ReceiptItem{
		ID:         uuid.New().String(),
		Name:       name,
		Price:      price,
		Purchasers: []string{},
	}, nil
}

// AddItem appends a new item and updates subtotal, tax, and total.
// The caller persists all four changes in one write.
func AddItem(r *models.Receipt, name string, price decimal.Decimal) (models.ReceiptItem, error) {
	item, err := NewItem(name, price)
	if err != nil {
		return models.ReceiptItem{}, err
	}
	r.Items = append(r.Items, item)
	r.Subtotal = r.Subtotal.Add(item.Price)
	Recompute(r)
	return item, nil
}

// RemoveItem removes the item with itemID and subtracts its price.
func RemoveItem(r *models.Receipt, itemID string) (models.ReceiptItem, error) {
	for i, item := range r.Items {
		if item.ID != itemID {
			continue
		}
		r.Items = append(r.Items[:i:i], r.Items[i+1:]...)
		r.Subtotal = r.Subtotal.Sub(item.Price)
		Recompute(r)
		return item, nil
	}
	return models.ReceiptItem{}, apperr.NotFound("item", itemID)
}

// MarkItemsPaid adds userID as a purchaser of every targeted item and marks
// them paid. Either all targets are updated or, on error, none are.
// It returns the summed price of the targeted items.
func MarkItemsPaid(r *models.Receipt, userID string, itemIDs []string) (decimal.Decimal, error) {
	if len(itemIDs) == 0 {
		return decimal.Zero, apperr.Invalid("item_ids", "at least one item is required")
	}

	// Validate everything before touching the receipt.
	idx := make([]int, 0, len(itemIDs))
	seen := make(map[string]bool, len(itemIDs))
	for _, id := range itemIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		pos := -1
		for i := range r.Items {
			if r.Items[i].ID == id {
				pos = i
				break
			}
		}
		if pos < 0 {
			return decimal.Zero, apperr.NotFound("item", id)
		}
		if r.Items[pos].Paid {
			return decimal.Zero, apperr.Invalid("item_ids", fmt.Sprintf("%q is already paid", r.Items[pos].Name))
		}
		idx = append(idx, pos)
	}

	amount := decimal.Zero
	for _, pos := range idx {
		item := &r.Items[pos]
		if !item.HasPurchaser(userID) {
			item.Purchasers = append(item.Purchasers, userID)
		}
		item.Paid = true
		amount = amount.Add(item.Price)
	}
	return amount, nil
}

// BuildReceipt computes totals for a new receipt from item drafts.
func BuildReceipt(r *models.Receipt, drafts []ItemDraft) error {
	r.Items = make([]models.ReceiptItem, 0, len(drafts))
	r.Subtotal = decimal.Zero
	for _, d := range drafts {
		if _, err := AddItem(r, d.Name, d.Price); err != nil {
			return err
		}
	}
	Recompute(r)
	return nil
}

// ItemDraft is an item that has not been assigned an ID yet.
type ItemDraft struct {
	Name  string
	Price decimal.Decimal
}
