package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/money"
	"github.com/mmynk/tabshare/internal/selection"
)

// Repository is the receipt store as seen by the reconciler.
type Repository interface {
	// MarkItemsPaid adds userID as purchaser of every item and marks them
	// paid, in one write. On error no item is changed.
	MarkItemsPaid(ctx context.Context, receiptID, userID string, itemIDs []string) error
}

// Profiles resolves a user's payment handles.
type Profiles interface {
	GetUserProfile(ctx context.Context, userID string) (*models.User, error)
}

// Role is the caller's relation to the receipt at checkout.
type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
)

// Next tells the caller where to go after a checkout.
type Next string

const (
	// NextReceipts means return to the receipts list.
	NextReceipts Next = "receipts"
	// NextPaymentApp means control passed to an external payment app.
	NextPaymentApp Next = "payment_app"
)

// Outcome describes a finished checkout.
type Outcome struct {
	Role Role
	Next Next

	// ItemIDs are the items settled (host) or paid for (guest).
	ItemIDs []string

	// Subtotal is the selected items' sum.
	Subtotal decimal.Decimal

	// Amount is what the guest was asked to pay (subtotal * 1.11).
	// Zero for host checkouts.
	Amount decimal.Decimal

	// Method and Link are set for guest checkouts.
	Method models.PaymentMethod
	Link   string
}

// Reconciler runs checkouts.
type Reconciler struct {
	repo     Repository
	profiles Profiles
	opener   Opener
	logger   *slog.Logger
}

// NewReconciler creates a Reconciler. A nil logger uses slog.Default().
func NewReconciler(repo Repository, profiles Profiles, opener Opener, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{repo: repo, profiles: profiles, opener: opener, logger: logger}
}

// CanCheckout reports whether the checkout action is enabled.
// Guests need a selection and a payment method; hosts need a selection.
func CanCheckout(sess Session, receipt *models.Receipt, tracker *selection.Tracker, method models.PaymentMethod) bool {
	if !sess.Valid() || receipt == nil || tracker.Len() == 0 {
		return false
	}
	if receipt.IsHost(sess.UserID) {
		return true
	}
	return method != ""
}

// Checkout settles the tracker's selection on receipt.
//
// For the host, the selected items are marked paid in one repository call;
// on success receipt is updated in place and the tracker is cleared, on
// failure both are left as they were. For a guest, no repository write
// happens: the payment amount is computed and one payment link is opened.
// The reconciler does not wait for or verify the external payment.
func (r *Reconciler) Checkout(ctx context.Context, sess Session, receipt *models.Receipt, tracker *selection.Tracker, method models.PaymentMethod) (*Outcome, error) {
	if !CanCheckout(sess, receipt, tracker, method) {
		return nil, apperr.ErrCheckoutDisabled
	}
	if receipt.IsHost(sess.UserID) {
		return r.hostCheckout(ctx, sess, receipt, tracker)
	}
	return r.guestCheckout(ctx, receipt, tracker, method)
}

func (r *Reconciler) hostCheckout(ctx context.Context, sess Session, receipt *models.Receipt, tracker *selection.Tracker) (*Outcome, error) {
	ids := tracker.IDs()
	subtotal := tracker.Total()

	if err := r.repo.MarkItemsPaid(ctx, receipt.ID, sess.UserID, ids); err != nil {
		r.logger.Error("Host checkout failed",
			"receipt_id", receipt.ID,
			"user_id", sess.UserID,
			"items_count", len(ids),
			"error", err,
		)
		return nil, classifyWriteError(err)
	}

	for _, id := range ids {
		if item := receipt.Item(id); item != nil {
			if !item.HasPurchaser(sess.UserID) {
				item.Purchasers = append(item.Purchasers, sess.UserID)
			}
			item.Paid = true
		}
	}
	tracker.Reset()

	r.logger.Info("Host checkout complete",
		"receipt_id", receipt.ID,
		"user_id", sess.UserID,
		"items_count", len(ids),
		"subtotal", subtotal.StringFixed(2),
	)
	return &Outcome{
		Role:     RoleHost,
		Next:     NextReceipts,
		ItemIDs:  ids,
		Subtotal: subtotal,
	}, nil
}

func (r *Reconciler) guestCheckout(ctx context.Context, receipt *models.Receipt, tracker *selection.Tracker, method models.PaymentMethod) (*Outcome, error) {
	subtotal := tracker.Total()
	amount := money.GuestPayment(subtotal)

	host, err := r.profiles.GetUserProfile(ctx, receipt.HostID)
	if err != nil {
		r.logger.Error("Could not load host payment info", "receipt_id", receipt.ID, "host_id", receipt.HostID, "error", err)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load host profile: %w", err)
	}

	link, err := PaymentLink(method, host.Payments, amount, PaymentNote(receipt))
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		Role:     RoleGuest,
		Next:     NextPaymentApp,
		ItemIDs:  tracker.IDs(),
		Subtotal: subtotal,
		Amount:   amount,
		Method:   method,
		Link:     link,
	}

	if err := r.opener.Open(ctx, link); err != nil {
		r.logger.Warn("Cannot open payment link", "method", method, "error", err)
		if !errors.Is(err, apperr.ErrExternalLinkUnavailable) {
			err = fmt.Errorf("%w: %v", apperr.ErrExternalLinkUnavailable, err)
		}
		return out, err
	}

	r.logger.Info("Guest checkout handed off",
		"receipt_id", receipt.ID,
		"method", method,
		"amount", money.FormatAmount(amount),
	)
	return out, nil
}

// classifyWriteError keeps not-found, permission, and conflict errors
// recognizable and files everything else under ErrRepositoryWrite.
func classifyWriteError(err error) error {
	for _, known := range []error{
		apperr.ErrNotFound,
		apperr.ErrPermissionDenied,
		apperr.ErrVersionConflict,
		apperr.ErrValidation,
		apperr.ErrRepositoryWrite,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", apperr.ErrRepositoryWrite, err)
}
