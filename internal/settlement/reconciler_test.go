package settlement

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/selection"
)

type fakeRepo struct {
	calls   int
	userID  string
	itemIDs []string
	err     error
}

func (f *fakeRepo) MarkItemsPaid(ctx context.Context, receiptID, userID string, itemIDs []string) error {
	f.calls++
	f.userID = userID
	f.itemIDs = itemIDs
	return f.err
}

type fakeProfiles map[string]*models.User

func (f fakeProfiles) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	u, ok := f[userID]
	if !ok {
		return nil, apperr.NotFound("user", userID)
	}
	return u, nil
}

type fakeOpener struct {
	links []string
	err   error
}

func (f *fakeOpener) Open(ctx context.Context, link string) error {
	f.links = append(f.links, link)
	return f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testReceipt() *models.Receipt {
	r := &models.Receipt{ID: "r1", JoinCode: "ABCD1234", Name: "Dinner", HostID: "host", Guests: []string{"guest"}}
	for i, p := range []string{"5", "6", "7", "8", "9", "10"} {
		r.Items = append(r.Items, models.ReceiptItem{
			ID:    string(rune('a' + i)),
			Name:  "item",
			Price: decimal.RequireFromString(p),
		})
	}
	return r
}

func hostProfiles() fakeProfiles {
	return fakeProfiles{"host": {ID: "host", Payments: models.PaymentHandles{CashApp: "hosty", Venmo: "hosty"}}}
}

func TestHostCheckout(t *testing.T) {
	repo := &fakeRepo{}
	rec := NewReconciler(repo, hostProfiles(), &fakeOpener{}, quietLogger())
	receipt := testReceipt()
	tr := selection.NewTracker()
	_, _ = tr.Toggle(receipt.Items[2])
	_, _ = tr.Toggle(receipt.Items[5])

	out, err := rec.Checkout(context.Background(), Session{UserID: "host"}, receipt, tr, "")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls, "host checkout is one batched write")
	assert.Equal(t, "host", repo.userID)
	assert.Equal(t, []string{"c", "f"}, repo.itemIDs)
	assert.Equal(t, RoleHost, out.Role)
	assert.Equal(t, NextReceipts, out.Next)
	assert.True(t, out.Amount.IsZero())
	assert.Equal(t, "17", out.Subtotal.String())

	for i, item := range receipt.Items {
		targeted := i == 2 || i == 5
		assert.Equal(t, targeted, item.Paid, "item %d", i)
		assert.Equal(t, targeted, item.HasPurchaser("host"), "item %d", i)
	}
	assert.Equal(t, 0, tr.Len())
}

func TestHostCheckoutFailureLeavesStateAlone(t *testing.T) {
	repo := &fakeRepo{err: errors.New("connection reset")}
	rec := NewReconciler(repo, hostProfiles(), &fakeOpener{}, quietLogger())
	receipt := testReceipt()
	tr := selection.NewTracker()
	_, _ = tr.Toggle(receipt.Items[0])

	_, err := rec.Checkout(context.Background(), Session{UserID: "host"}, receipt, tr, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrRepositoryWrite)

	assert.False(t, receipt.Items[0].Paid)
	assert.Empty(t, receipt.Items[0].Purchasers)
	assert.Equal(t, []string{"a"}, tr.IDs())
}

func TestHostCheckoutKeepsNotFound(t *testing.T) {
	repo := &fakeRepo{err: apperr.NotFound("receipt", "r1")}
	rec := NewReconciler(repo, hostProfiles(), &fakeOpener{}, quietLogger())
	receipt := testReceipt()
	tr := selection.NewTracker()
	_, _ = tr.Toggle(receipt.Items[0])

	_, err := rec.Checkout(context.Background(), Session{UserID: "host"}, receipt, tr, "")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NotErrorIs(t, err, apperr.ErrRepositoryWrite)
}

func TestGuestCheckout(t *testing.T) {
	repo := &fakeRepo{}
	opener := &fakeOpener{}
	rec := NewReconciler(repo, hostProfiles(), opener, quietLogger())
	receipt := testReceipt()
	receipt.Items = append(receipt.Items, models.ReceiptItem{ID: "big", Price: decimal.NewFromInt(100)})
	tr := selection.NewTracker()
	_, _ = tr.Toggle(*receipt.Item("big"))

	out, err := rec.Checkout(context.Background(), Session{UserID: "guest"}, receipt, tr, models.PaymentCashApp)
	require.NoError(t, err)

	assert.Equal(t, 0, repo.calls, "guest checkout never writes")
	assert.Equal(t, RoleGuest, out.Role)
	assert.Equal(t, NextPaymentApp, out.Next)
	assert.Equal(t, "111.00", out.Amount.StringFixed(2))
	assert.Equal(t, "https://cash.app/$hosty/111.00", out.Link)
	assert.Equal(t, []string{out.Link}, opener.links)
	assert.Equal(t, 1, tr.Len(), "guest selection is kept")
}

func TestGuestCheckoutDisabled(t *testing.T) {
	repo := &fakeRepo{}
	opener := &fakeOpener{}
	rec := NewReconciler(repo, hostProfiles(), opener, quietLogger())
	receipt := testReceipt()

	// nothing selected
	_, err := rec.Checkout(context.Background(), Session{UserID: "guest"}, receipt, selection.NewTracker(), models.PaymentVenmo)
	assert.ErrorIs(t, err, apperr.ErrCheckoutDisabled)

	// no payment method
	tr := selection.NewTracker()
	_, _ = tr.Toggle(receipt.Items[0])
	_, err = rec.Checkout(context.Background(), Session{UserID: "guest"}, receipt, tr, "")
	assert.ErrorIs(t, err, apperr.ErrCheckoutDisabled)

	// no session
	_, err = rec.Checkout(context.Background(), Session{}, receipt, tr, models.PaymentVenmo)
	assert.ErrorIs(t, err, apperr.ErrCheckoutDisabled)

	assert.Empty(t, opener.links)
	assert.Equal(t, 0, repo.calls)
}

func TestHostCheckoutWithNothingSelectedIsDisabled(t *testing.T) {
	repo := &fakeRepo{}
	rec := NewReconciler(repo, hostProfiles(), &fakeOpener{}, quietLogger())

	_, err := rec.Checkout(context.Background(), Session{UserID: "host"}, testReceipt(), selection.NewTracker(), "")
	assert.ErrorIs(t, err, apperr.ErrCheckoutDisabled)
	assert.Equal(t, 0, repo.calls)
}

func TestGuestCheckoutCannotOpen(t *testing.T) {
	var buf bytes.Buffer
	rec := NewReconciler(&fakeRepo{}, hostProfiles(), NewSchemeOpener(&buf), quietLogger())
	receipt := testReceipt()
	tr := selection.NewTracker()
	_, _ = tr.Toggle(receipt.Items[0])

	out, err := rec.Checkout(context.Background(), Session{UserID: "guest"}, receipt, tr, models.PaymentVenmo)
	assert.ErrorIs(t, err, apperr.ErrExternalLinkUnavailable)
	require.NotNil(t, out)
	assert.Contains(t, out.Link, "venmo://paycharge?txn=pay&recipients=hosty&amount=5.55")
	assert.Empty(t, buf.String())
}

func TestGuestCheckoutHostWithoutHandle(t *testing.T) {
	opener := &fakeOpener{}
	rec := NewReconciler(&fakeRepo{}, hostProfiles(), opener, quietLogger())
	receipt := testReceipt()
	tr := selection.NewTracker()
	_, _ = tr.Toggle(receipt.Items[0])

	_, err := rec.Checkout(context.Background(), Session{UserID: "guest"}, receipt, tr, models.PaymentPayPal)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, opener.links)
}

func TestGuestCheckoutUnknownHost(t *testing.T) {
	rec := NewReconciler(&fakeRepo{}, fakeProfiles{}, &fakeOpener{}, quietLogger())
	receipt := testReceipt()
	tr := selection.NewTracker()
	_, _ = tr.Toggle(receipt.Items[0])

	_, err := rec.Checkout(context.Background(), Session{UserID: "guest"}, receipt, tr, models.PaymentVenmo)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
