package client

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/selection"
	"github.com/mmynk/tabshare/internal/settlement"
	"github.com/mmynk/tabshare/pkg/api"
)

// CreateReceipt creates a receipt hosted by the signed-in user.
func (c *Client) CreateReceipt(ctx context.Context, name, vendor string, items []api.ItemInput) (*models.Receipt, error) {
	resp, err := c.receipts.CreateReceipt(ctx, connect.NewRequest(&api.CreateReceiptRequest{
		Name:   name,
		Vendor: vendor,
		Items:  items,
	}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return receiptFromAPI(resp.Msg.Receipt)
}

// GetReceipt fetches a receipt.
func (c *Client) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	details, err := c.ReceiptDetails(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	return receiptFromAPI(details.Receipt)
}

// ReceiptDetails fetches a receipt with participant names and shares.
func (c *Client) ReceiptDetails(ctx context.Context, receiptID string) (*api.GetReceiptResponse, error) {
	resp, err := c.receipts.GetReceipt(ctx, connect.NewRequest(&api.GetReceiptRequest{ReceiptID: receiptID}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return resp.Msg, nil
}

// JoinReceipt joins the receipt with the given code as a guest.
func (c *Client) JoinReceipt(ctx context.Context, code string) (*models.Receipt, error) {
	resp, err := c.receipts.JoinReceipt(ctx, connect.NewRequest(&api.JoinReceiptRequest{JoinCode: code}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return receiptFromAPI(resp.Msg.Receipt)
}

// ListReceipts returns the hosted and requested receipts.
func (c *Client) ListReceipts(ctx context.Context) (*api.ListReceiptsResponse, error) {
	resp, err := c.receipts.ListReceipts(ctx, connect.NewRequest(&api.ListReceiptsRequest{}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return resp.Msg, nil
}

// AddItem adds an item. expectedVersion 0 writes unconditionally.
func (c *Client) AddItem(ctx context.Context, receiptID, name, price string, expectedVersion int64) (*models.Receipt, models.ReceiptItem, error) {
	resp, err := c.receipts.AddItem(ctx, connect.NewRequest(&api.AddItemRequest{
		ReceiptID:       receiptID,
		Name:            name,
		Price:           price,
		ExpectedVersion: expectedVersion,
	}))
	if err != nil {
		return nil, models.ReceiptItem{}, fromConnect(err)
	}
	item, err := itemFromAPI(resp.Msg.Item)
	if err != nil {
		return nil, models.ReceiptItem{}, err
	}
	r, err := receiptFromAPI(resp.Msg.Receipt)
	return r, item, err
}

// RemoveItem removes an item by ID. expectedVersion 0 writes unconditionally.
func (c *Client) RemoveItem(ctx context.Context, receiptID, itemID string, expectedVersion int64) (*models.Receipt, error) {
	resp, err := c.receipts.RemoveItem(ctx, connect.NewRequest(&api.RemoveItemRequest{
		ReceiptID:       receiptID,
		ItemID:          itemID,
		ExpectedVersion: expectedVersion,
	}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return receiptFromAPI(resp.Msg.Receipt)
}

// MarkItemsPaid implements settlement.Repository. The server takes the
// purchaser from the session, so userID must be the signed-in host.
func (c *Client) MarkItemsPaid(ctx context.Context, receiptID, userID string, itemIDs []string) error {
	_, err := c.receipts.MarkItemsPaid(ctx, connect.NewRequest(&api.MarkItemsPaidRequest{
		ReceiptID: receiptID,
		ItemIDs:   itemIDs,
	}))
	if err != nil {
		return fromConnect(err)
	}
	return nil
}

// AddGuest adds an existing user by ID, or a guest without an account by
// name and phone when userID is empty.
func (c *Client) AddGuest(ctx context.Context, receiptID, userID, displayName, phone string) (*models.User, error) {
	resp, err := c.receipts.AddGuest(ctx, connect.NewRequest(&api.AddGuestRequest{
		ReceiptID:   receiptID,
		UserID:      userID,
		DisplayName: displayName,
		Phone:       phone,
	}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return userFromAPI(resp.Msg.Guest), nil
}

// QuotePayment asks the server for a guest's amount and payment link.
func (c *Client) QuotePayment(ctx context.Context, receiptID string, itemIDs []string, method models.PaymentMethod) (*api.QuotePaymentResponse, error) {
	resp, err := c.receipts.QuotePayment(ctx, connect.NewRequest(&api.QuotePaymentRequest{
		ReceiptID: receiptID,
		ItemIDs:   itemIDs,
		Method:    string(method),
	}))
	if err != nil {
		return nil, fromConnect(err)
	}
	return resp.Msg, nil
}

// ListCheckouts returns the receipt's host checkouts, newest first.
func (c *Client) ListCheckouts(ctx context.Context, receiptID string) ([]*models.Checkout, error) {
	resp, err := c.receipts.ListCheckouts(ctx, connect.NewRequest(&api.ListCheckoutsRequest{ReceiptID: receiptID}))
	if err != nil {
		return nil, fromConnect(err)
	}
	out := make([]*models.Checkout, 0, len(resp.Msg.Checkouts))
	for _, in := range resp.Msg.Checkouts {
		co, err := checkoutFromAPI(in)
		if err != nil {
			return nil, err
		}
		out = append(out, co)
	}
	return out, nil
}

// Checkout selects itemIDs on the receipt and runs the settlement flow for
// the signed-in user: hosts mark the items paid, guests get a payment link
// handed to opener. method is ignored for hosts.
func (c *Client) Checkout(ctx context.Context, receiptID string, itemIDs []string, method models.PaymentMethod, opener settlement.Opener) (*settlement.Outcome, error) {
	sess, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	receipt, err := c.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	tracker := selection.NewTracker()
	for _, id := range itemIDs {
		item := receipt.Item(id)
		if item == nil {
			return nil, apperr.NotFound("item", id)
		}
		if tracker.Has(id) {
			continue
		}
		if _, err := tracker.Toggle(*item); err != nil {
			return nil, apperr.Invalid("items", item.Name+" is already paid")
		}
	}

	reconciler := settlement.NewReconciler(c, c, opener, c.logger)
	return reconciler.Checkout(ctx, sess, receipt, tracker, method)
}
