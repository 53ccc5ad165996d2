package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/money"
)

// PersonShare is one purchaser's portion of a receipt.
type PersonShare struct {
	UserID   string
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Items    []PersonItem
}

// PersonItem is a purchaser's share of one item.
type PersonItem struct {
	ItemID string
	Name   string
	Amount decimal.Decimal
	Paid   bool
}

// Summary aggregates a receipt by purchaser.
type Summary struct {
	Shares []PersonShare

	// Received is the subtotal of items marked paid.
	Received decimal.Decimal

	// Outstanding is the subtotal of items not yet paid.
	Outstanding decimal.Decimal

	// Unclaimed is the subtotal of unpaid items nobody has claimed.
	Unclaimed decimal.Decimal
}

// Summarize splits each claimed item equally among its purchasers and
// applies the receipt tax rate to each person's subtotal.
func Summarize(r *models.Receipt) Summary {
	var s Summary
	shares := make(map[string]*PersonShare)

	for _, item := range r.Items {
		if item.Paid {
			s.Received = s.Received.Add(item.Price)
		} else {
			s.Outstanding = s.Outstanding.Add(item.Price)
			if len(item.Purchasers) == 0 {
				s.Unclaimed = s.Unclaimed.Add(item.Price)
			}
		}
		if len(item.Purchasers) == 0 {
			continue
		}

		per := item.Price.Div(decimal.NewFromInt(int64(len(item.Purchasers))))
		for _, p := range item.Purchasers {
			share, ok := shares[p]
			if !ok {
				share = &PersonShare{UserID: p}
				shares[p] = share
			}
			share.Subtotal = share.Subtotal.Add(per)
			share.Items = append(share.Items, PersonItem{
				ItemID: item.ID,
				Name:   item.Name,
				Amount: money.Round2(per),
				Paid:   item.Paid,
			})
		}
	}

	for _, share := range shares {
		share.Subtotal = money.Round2(share.Subtotal)
		share.Tax = money.TaxFor(share.Subtotal)
		share.Total = money.TotalFor(share.Subtotal)
		s.Shares = append(s.Shares, *share)
	}
	sort.Slice(s.Shares, func(i, j int) bool { return s.Shares[i].UserID < s.Shares[j].UserID })

	return s
}
