package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/calculator"
	"github.com/mmynk/tabshare/internal/joincode"
	"github.com/mmynk/tabshare/internal/metrics"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/money"
	"github.com/mmynk/tabshare/internal/selection"
	"github.com/mmynk/tabshare/internal/settlement"
	"github.com/mmynk/tabshare/internal/storage"
	"github.com/mmynk/tabshare/pkg/api"
	"github.com/mmynk/tabshare/pkg/api/apiconnect"
)

// ReceiptService implements the Connect ReceiptService
type ReceiptService struct {
	apiconnect.UnimplementedReceiptServiceHandler
	store   storage.Store
	metrics *metrics.Metrics
}

// NewReceiptService creates a new ReceiptService with the given storage
// backend. m may be nil.
func NewReceiptService(store storage.Store, m *metrics.Metrics) *ReceiptService {
	return &ReceiptService{store: store, metrics: m}
}

// CreateReceipt creates a receipt hosted by the caller.
func (s *ReceiptService) CreateReceipt(ctx context.Context, req *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateReceipt request received",
		"host_id", sess.UserID,
		"vendor", req.Msg.Vendor,
		"items_count", len(req.Msg.Items),
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	drafts := make([]calculator.ItemDraft, len(req.Msg.Items))
	for i, in := range req.Msg.Items {
		price, err := money.ParsePrice(in.Price)
		if err != nil {
			return nil, toConnectError(err)
		}
		drafts[i] = calculator.ItemDraft{Name: in.Name, Price: price}
	}

	receipt := &models.Receipt{
		Name:   req.Msg.Name,
		Vendor: req.Msg.Vendor,
		HostID: sess.UserID,
	}
	if err := calculator.BuildReceipt(receipt, drafts); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		slog.Error("CreateReceipt failed", "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ReceiptCreated()

	slog.Info("Receipt created",
		"receipt_id", receipt.ID,
		"join_code", receipt.JoinCode,
		"total", money.FormatAmount(receipt.Total),
	)

	return connect.NewResponse(&api.CreateReceiptResponse{Receipt: receiptToAPI(receipt)}), nil
}

// GetReceipt returns a receipt with participant names and per-person shares.
func (s *ReceiptService) GetReceipt(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetReceipt request received", "receipt_id", req.Msg.ReceiptID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	receipt, err := s.memberReceipt(ctx, sess, req.Msg.ReceiptID)
	if err != nil {
		slog.Error("GetReceipt failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, toConnectError(err)
	}

	users, err := s.store.GetUsersByIDs(ctx, participantIDs(receipt))
	if err != nil {
		slog.Error("GetReceipt: failed to load participants", "receipt_id", receipt.ID, "error", err)
		return nil, toConnectError(err)
	}
	names := make(map[string]string, len(users))
	for _, id := range participantIDs(receipt) {
		names[id] = nameOf(users, id)
	}

	summary := calculator.Summarize(receipt)

	slog.Info("GetReceipt successful", "receipt_id", receipt.ID, "items_count", len(receipt.Items))

	return connect.NewResponse(&api.GetReceiptResponse{
		Receipt:     receiptToAPI(receipt),
		Names:       names,
		Shares:      sharesToAPI(summary.Shares, users),
		Received:    money.FormatAmount(summary.Received),
		Outstanding: money.FormatAmount(summary.Outstanding),
		Unclaimed:   money.FormatAmount(summary.Unclaimed),
	}), nil
}

// JoinReceipt adds the caller as a guest of the receipt with the given code.
func (s *ReceiptService) JoinReceipt(ctx context.Context, req *connect.Request[api.JoinReceiptRequest]) (*connect.Response[api.JoinReceiptResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("JoinReceipt request received", "user_id", sess.UserID, "join_code", req.Msg.JoinCode)

	code, err := joincode.Normalize(req.Msg.JoinCode)
	if err != nil {
		return nil, toConnectError(err)
	}

	receipt, err := s.store.GetReceiptByJoinCode(ctx, code)
	if err != nil {
		slog.Warn("JoinReceipt: no receipt for code", "join_code", code, "error", err)
		return nil, toConnectError(err)
	}

	if !receipt.IsMember(sess.UserID) {
		if err := s.store.AddGuest(ctx, receipt.ID, sess.UserID); err != nil {
			slog.Error("JoinReceipt: failed to add guest", "receipt_id", receipt.ID, "error", err)
			return nil, toConnectError(err)
		}
		s.metrics.GuestJoined()
		if receipt, err = s.store.GetReceipt(ctx, receipt.ID); err != nil {
			return nil, toConnectError(err)
		}
	}

	slog.Info("Receipt joined", "receipt_id", receipt.ID, "user_id", sess.UserID)

	return connect.NewResponse(&api.JoinReceiptResponse{
		ReceiptID: receipt.ID,
		Receipt:   receiptToAPI(receipt),
	}), nil
}

// ListReceipts returns the receipts the caller hosts and the ones they joined.
func (s *ReceiptService) ListReceipts(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListReceipts request received", "user_id", sess.UserID)

	hosted, err := s.store.ListHostedReceipts(ctx, sess.UserID)
	if err != nil {
		slog.Error("ListReceipts failed", "error", err)
		return nil, toConnectError(err)
	}
	requested, err := s.store.ListRequestedReceipts(ctx, sess.UserID)
	if err != nil {
		slog.Error("ListReceipts failed", "error", err)
		return nil, toConnectError(err)
	}

	var ids []string
	for _, r := range append(append([]*models.Receipt{}, hosted...), requested...) {
		ids = append(ids, r.HostID)
		ids = append(ids, r.Guests...)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		slog.Error("ListReceipts: failed to load users", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListReceipts successful", "hosted", len(hosted), "requested", len(requested))

	return connect.NewResponse(&api.ListReceiptsResponse{
		Hosted:    summaries(hosted, users),
		Requested: summaries(requested, users),
	}), nil
}

func summaries(receipts []*models.Receipt, users map[string]*models.User) []api.ReceiptSummary {
	out := make([]api.ReceiptSummary, len(receipts))
	for i, r := range receipts {
		members := make([]string, len(r.Guests))
		for j, g := range r.Guests {
			members[j] = nameOf(users, g)
		}
		out[i] = api.ReceiptSummary{
			Receipt:     receiptToAPI(r),
			HostName:    nameOf(users, r.HostID),
			MemberNames: members,
		}
	}
	return out
}

// AddItem appends an item and updates the receipt totals in one write.
func (s *ReceiptService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddItem request received",
		"receipt_id", req.Msg.ReceiptID,
		"name", req.Msg.Name,
		"price", req.Msg.Price,
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	price, err := money.ParsePrice(req.Msg.Price)
	if err != nil {
		return nil, toConnectError(err)
	}

	var added models.ReceiptItem
	receipt, err := s.store.UpdateReceipt(ctx, req.Msg.ReceiptID, req.Msg.ExpectedVersion, func(r *models.Receipt) error {
		if !r.IsHost(sess.UserID) {
			return hostOnly("add items")
		}
		item, err := calculator.AddItem(r, req.Msg.Name, price)
		added = item
		return err
	})
	if err != nil {
		slog.Error("AddItem failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ItemAdded()

	slog.Info("Item added",
		"receipt_id", receipt.ID,
		"item_id", added.ID,
		"subtotal", money.FormatAmount(receipt.Subtotal),
	)

	return connect.NewResponse(&api.AddItemResponse{
		Item:    itemToAPI(added),
		Receipt: receiptToAPI(receipt),
	}), nil
}

// RemoveItem deletes an item by ID and updates the receipt totals in one write.
func (s *ReceiptService) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.RemoveItemResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RemoveItem request received", "receipt_id", req.Msg.ReceiptID, "item_id", req.Msg.ItemID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	receipt, err := s.store.UpdateReceipt(ctx, req.Msg.ReceiptID, req.Msg.ExpectedVersion, func(r *models.Receipt) error {
		if !r.IsHost(sess.UserID) {
			return hostOnly("remove items")
		}
		_, err := calculator.RemoveItem(r, req.Msg.ItemID)
		return err
	})
	if err != nil {
		slog.Error("RemoveItem failed", "receipt_id", req.Msg.ReceiptID, "item_id", req.Msg.ItemID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.ItemRemoved()

	slog.Info("Item removed", "receipt_id", receipt.ID, "item_id", req.Msg.ItemID)

	return connect.NewResponse(&api.RemoveItemResponse{Receipt: receiptToAPI(receipt)}), nil
}

// MarkItemsPaid is the host checkout: the items are marked paid with the
// host as purchaser, all or none.
func (s *ReceiptService) MarkItemsPaid(ctx context.Context, req *connect.Request[api.MarkItemsPaidRequest]) (*connect.Response[api.MarkItemsPaidResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("MarkItemsPaid request received", "receipt_id", req.Msg.ReceiptID, "items_count", len(req.Msg.ItemIDs))

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	receipt, err := s.store.GetReceipt(ctx, req.Msg.ReceiptID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !receipt.IsHost(sess.UserID) {
		return nil, toConnectError(hostOnly("mark items paid"))
	}

	checkout, err := s.store.MarkItemsPaid(ctx, receipt.ID, sess.UserID, req.Msg.ItemIDs)
	if err != nil {
		slog.Error("MarkItemsPaid failed", "receipt_id", receipt.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.Checkout(string(settlement.RoleHost), "")

	if receipt, err = s.store.GetReceipt(ctx, receipt.ID); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Items marked paid",
		"receipt_id", receipt.ID,
		"checkout_id", checkout.ID,
		"amount", money.FormatAmount(checkout.Amount),
	)

	return connect.NewResponse(&api.MarkItemsPaidResponse{
		Checkout: checkoutToAPI(checkout),
		Receipt:  receiptToAPI(receipt),
	}), nil
}

// AddGuest lets the host add an existing user, or create a guest without
// an account from a name and phone number.
func (s *ReceiptService) AddGuest(ctx context.Context, req *connect.Request[api.AddGuestRequest]) (*connect.Response[api.AddGuestResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddGuest request received",
		"receipt_id", req.Msg.ReceiptID,
		"user_id", req.Msg.UserID,
		"display_name", req.Msg.DisplayName,
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}

	receipt, err := s.store.GetReceipt(ctx, req.Msg.ReceiptID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !receipt.IsHost(sess.UserID) {
		return nil, toConnectError(hostOnly("add guests"))
	}

	var guest *models.User
	if req.Msg.UserID != "" {
		guest, err = s.store.GetUserByID(ctx, req.Msg.UserID)
		if err != nil {
			return nil, toConnectError(err)
		}
	} else {
		guest = models.NewPlaceholderUser(req.Msg.DisplayName, req.Msg.Phone)
		if err := s.store.CreateUser(ctx, guest); err != nil {
			slog.Error("AddGuest: failed to create guest", "error", err)
			return nil, toConnectError(err)
		}
	}

	if err := s.store.AddGuest(ctx, receipt.ID, guest.ID); err != nil {
		slog.Error("AddGuest failed", "receipt_id", receipt.ID, "guest_id", guest.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.metrics.GuestJoined()

	if receipt, err = s.store.GetReceipt(ctx, receipt.ID); err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Guest added", "receipt_id", receipt.ID, "guest_id", guest.ID, "has_account", guest.HasAccount)

	return connect.NewResponse(&api.AddGuestResponse{
		Guest:   userToAPI(guest, false),
		Receipt: receiptToAPI(receipt),
	}), nil
}

// QuotePayment computes what a guest pays for the given items and the
// deep link that opens the chosen payment app. Nothing is written.
func (s *ReceiptService) QuotePayment(ctx context.Context, req *connect.Request[api.QuotePaymentRequest]) (*connect.Response[api.QuotePaymentResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("QuotePayment request received",
		"receipt_id", req.Msg.ReceiptID,
		"items_count", len(req.Msg.ItemIDs),
		"method", req.Msg.Method,
	)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	method, err := models.ParsePaymentMethod(req.Msg.Method)
	if err != nil {
		return nil, toConnectError(apperr.Invalid("method", err.Error()))
	}

	receipt, err := s.memberReceipt(ctx, sess, req.Msg.ReceiptID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if receipt.IsHost(sess.UserID) {
		return nil, toConnectError(apperr.Invalid("receipt_id", "the host settles items by marking them paid"))
	}

	subtotal, err := selectionTotal(receipt, req.Msg.ItemIDs)
	if err != nil {
		return nil, toConnectError(err)
	}
	amount := money.GuestPayment(subtotal)

	host, err := s.store.GetUserByID(ctx, receipt.HostID)
	if err != nil {
		slog.Error("QuotePayment: failed to load host", "host_id", receipt.HostID, "error", err)
		return nil, toConnectError(err)
	}
	link, err := settlement.PaymentLink(method, host.Payments, amount, settlement.PaymentNote(receipt))
	if err != nil {
		return nil, toConnectError(err)
	}
	s.metrics.PaymentQuoted(string(method))

	slog.Info("Payment quoted",
		"receipt_id", receipt.ID,
		"method", method,
		"amount", money.FormatAmount(amount),
	)

	return connect.NewResponse(&api.QuotePaymentResponse{
		Subtotal: money.FormatAmount(subtotal),
		Amount:   money.FormatAmount(amount),
		Method:   string(method),
		Link:     link,
	}), nil
}

// selectionTotal sums the unpaid items named by ids.
func selectionTotal(r *models.Receipt, ids []string) (decimal.Decimal, error) {
	tracker := selection.NewTracker()
	for _, id := range ids {
		item := r.Item(id)
		if item == nil {
			return decimal.Zero, apperr.NotFound("item", id)
		}
		if tracker.Has(id) {
			continue
		}
		if _, err := tracker.Toggle(*item); err != nil {
			return decimal.Zero, apperr.Invalid("item_ids", item.Name+" is already paid")
		}
	}
	return tracker.Total(), nil
}

// ListCheckouts returns the receipt's recorded host checkouts.
func (s *ReceiptService) ListCheckouts(ctx context.Context, req *connect.Request[api.ListCheckoutsRequest]) (*connect.Response[api.ListCheckoutsResponse], error) {
	sess, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListCheckouts request received", "receipt_id", req.Msg.ReceiptID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, toConnectError(err)
	}
	if _, err := s.memberReceipt(ctx, sess, req.Msg.ReceiptID); err != nil {
		return nil, toConnectError(err)
	}

	checkouts, err := s.store.ListCheckouts(ctx, req.Msg.ReceiptID)
	if err != nil {
		slog.Error("ListCheckouts failed", "receipt_id", req.Msg.ReceiptID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.Checkout, len(checkouts))
	for i, c := range checkouts {
		out[i] = checkoutToAPI(c)
	}
	return connect.NewResponse(&api.ListCheckoutsResponse{Checkouts: out}), nil
}

// memberReceipt loads a receipt the caller hosts or has joined.
func (s *ReceiptService) memberReceipt(ctx context.Context, sess settlement.Session, receiptID string) (*models.Receipt, error) {
	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if !receipt.IsMember(sess.UserID) {
		return nil, fmt.Errorf("join receipt %s first: %w", receipt.JoinCode, apperr.ErrPermissionDenied)
	}
	return receipt, nil
}
