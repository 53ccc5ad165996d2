package service

import (
	"github.com/mmynk/tabshare/internal/calculator"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/money"
	"github.com/mmynk/tabshare/pkg/api"
)

func receiptToAPI(r *models.Receipt) api.Receipt {
	items := make([]api.Item, len(r.Items))
	for i, item := range r.Items {
		items[i] = itemToAPI(item)
	}
	guests := append([]string{}, r.Guests...)
	return api.Receipt{
		ID:        r.ID,
		JoinCode:  r.JoinCode,
		Name:      r.Name,
		Vendor:    r.Vendor,
		HostID:    r.HostID,
		GuestIDs:  guests,
		Items:     items,
		Subtotal:  money.FormatAmount(r.Subtotal),
		Tax:       money.FormatAmount(r.Tax),
		Total:     money.FormatAmount(r.Total),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
	}
}

func itemToAPI(item models.ReceiptItem) api.Item {
	return api.Item{
		ID:           item.ID,
		Name:         item.Name,
		Price:        money.FormatAmount(item.Price),
		Paid:         item.Paid,
		PurchaserIDs: append([]string{}, item.Purchasers...),
	}
}

// userToAPI converts a user. Contact details are only included for the
// user themselves; payment handles are always public to participants.
func userToAPI(u *models.User, self bool) api.User {
	out := api.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		HasAccount:  u.HasAccount,
		Payments:    handlesToAPI(u.Payments),
		CreatedAt:   u.CreatedAt,
	}
	if self {
		out.Email = u.Email
		out.Phone = u.Phone
	}
	return out
}

func handlesToAPI(h models.PaymentHandles) api.PaymentHandles {
	return api.PaymentHandles{Venmo: h.Venmo, CashApp: h.CashApp, PayPalEmail: h.PayPalEmail}
}

func handlesFromAPI(h api.PaymentHandles) models.PaymentHandles {
	return models.PaymentHandles{Venmo: h.Venmo, CashApp: h.CashApp, PayPalEmail: h.PayPalEmail}
}

func checkoutToAPI(c *models.Checkout) api.Checkout {
	return api.Checkout{
		ID:        c.ID,
		ReceiptID: c.ReceiptID,
		UserID:    c.UserID,
		ItemIDs:   append([]string{}, c.ItemIDs...),
		Amount:    money.FormatAmount(c.Amount),
		CreatedAt: c.CreatedAt,
	}
}

func sharesToAPI(shares []calculator.PersonShare, users map[string]*models.User) []api.PersonShare {
	out := make([]api.PersonShare, len(shares))
	for i, s := range shares {
		items := make([]api.PersonItem, len(s.Items))
		for j, it := range s.Items {
			items[j] = api.PersonItem{
				ItemID: it.ItemID,
				Name:   it.Name,
				Amount: money.FormatAmount(it.Amount),
				Paid:   it.Paid,
			}
		}
		out[i] = api.PersonShare{
			UserID:      s.UserID,
			DisplayName: nameOf(users, s.UserID),
			Subtotal:    money.FormatAmount(s.Subtotal),
			Tax:         money.FormatAmount(s.Tax),
			Total:       money.FormatAmount(s.Total),
			Items:       items,
		}
	}
	return out
}

// nameOf returns the user's display name, or the ID for unknown users.
func nameOf(users map[string]*models.User, id string) string {
	if u, ok := users[id]; ok && u.DisplayName != "" {
		return u.DisplayName
	}
	return id
}

// participantIDs lists the host, guests, and purchasers of r without duplicates.
func participantIDs(r *models.Receipt) []string {
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(r.HostID)
	for _, g := range r.Guests {
		add(g)
	}
	for _, item := range r.Items {
		for _, p := range item.Purchasers {
			add(p)
		}
	}
	return ids
}
