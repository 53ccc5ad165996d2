package client

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/pkg/api"
)

func parseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad %s %q from server: %w", field, s, err)
	}
	return d, nil
}

func receiptFromAPI(in api.Receipt) (*models.Receipt, error) {
	r := &models.Receipt{
		ID:        in.ID,
		JoinCode:  in.JoinCode,
		Name:      in.Name,
		Vendor:    in.Vendor,
		HostID:    in.HostID,
		Guests:    append([]string{}, in.GuestIDs...),
		Items:     make([]models.ReceiptItem, len(in.Items)),
		Version:   in.Version,
		CreatedAt: in.CreatedAt,
	}
	var err error
	if r.Subtotal, err = parseAmount("subtotal", in.Subtotal); err != nil {
		return nil, err
	}
	if r.Tax, err = parseAmount("tax", in.Tax); err != nil {
		return nil, err
	}
	if r.Total, err = parseAmount("total", in.Total); err != nil {
		return nil, err
	}
	for i, item := range in.Items {
		if r.Items[i], err = itemFromAPI(item); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func itemFromAPI(in api.Item) (models.ReceiptItem, error) {
	price, err := parseAmount("price", in.Price)
	if err != nil {
		return models.ReceiptItem{}, err
	}
	return models.ReceiptItem{
		ID:         in.ID,
		Name:       in.Name,
		Price:      price,
		Paid:       in.Paid,
		Purchasers: append([]string{}, in.PurchaserIDs...),
	}, nil
}

func userFromAPI(in api.User) *models.User {
	return &models.User{
		ID:          in.ID,
		Email:       in.Email,
		DisplayName: in.DisplayName,
		Phone:       in.Phone,
		HasAccount:  in.HasAccount,
		Payments:    handlesFromAPI(in.Payments),
		CreatedAt:   in.CreatedAt,
	}
}

func handlesFromAPI(h api.PaymentHandles) models.PaymentHandles {
	return models.PaymentHandles{Venmo: h.Venmo, CashApp: h.CashApp, PayPalEmail: h.PayPalEmail}
}

func handlesToAPI(h models.PaymentHandles) api.PaymentHandles {
	return api.PaymentHandles{Venmo: h.Venmo, CashApp: h.CashApp, PayPalEmail: h.PayPalEmail}
}

func checkoutFromAPI(in api.Checkout) (*models.Checkout, error) {
	amount, err := parseAmount("amount", in.Amount)
	if err != nil {
		return nil, err
	}
	return &models.Checkout{
		ID:        in.ID,
		ReceiptID: in.ReceiptID,
		UserID:    in.UserID,
		ItemIDs:   append([]string{}, in.ItemIDs...),
		Amount:    amount,
		CreatedAt: in.CreatedAt,
	}, nil
}

// ReceiptFromAPI converts a wire receipt, as returned by ReceiptDetails,
// into the domain model.
func ReceiptFromAPI(in api.Receipt) (*models.Receipt, error) {
	return receiptFromAPI(in)
}
