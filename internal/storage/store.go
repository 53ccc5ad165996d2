// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/tabshare/internal/models"
)

// MutateFunc changes a receipt loaded inside a write transaction.
// Returning an error aborts the write and leaves the stored receipt unchanged.
type MutateFunc func(r *models.Receipt) error

// ReceiptStore is the receipt repository.
type ReceiptStore interface {
	// CreateReceipt persists a new receipt. ID, JoinCode, Version, and
	// CreatedAt are assigned by the store.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceipt retrieves a receipt by ID.
	// Returns an error wrapping apperr.ErrNotFound if it does not exist.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)

	// GetReceiptByJoinCode looks up a receipt by its canonical join code.
	GetReceiptByJoinCode(ctx context.Context, code string) (*models.Receipt, error)

	// UpdateReceipt loads the receipt, applies fn, and writes items, totals,
	// and version back in a single transaction.
	// expectedVersion 0 writes unconditionally (last writer wins); any other
	// value fails with apperr.ErrVersionConflict if the stored version differs.
	UpdateReceipt(ctx context.Context, receiptID string, expectedVersion int64, fn MutateFunc) (*models.Receipt, error)

	// MarkItemsPaid marks items paid for userID and records the checkout,
	// atomically.
	MarkItemsPaid(ctx context.Context, receiptID, userID string, itemIDs []string) (*models.Checkout, error)

	// AddGuest adds userID to the receipt's guests if absent and records the
	// receipt on the user's requested list.
	AddGuest(ctx context.Context, receiptID, userID string) error

	// ListHostedReceipts returns receipts hosted by userID, newest first.
	ListHostedReceipts(ctx context.Context, userID string) ([]*models.Receipt, error)

	// ListRequestedReceipts returns receipts userID joined as a guest,
	// excluding receipts they host, newest first.
	ListRequestedReceipts(ctx context.Context, userID string) ([]*models.Receipt, error)

	// ListCheckouts returns the checkouts recorded for a receipt, newest first.
	ListCheckouts(ctx context.Context, receiptID string) ([]*models.Checkout, error)
}

// UserStore is the user-profile repository.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail returns nil, nil when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns an error wrapping apperr.ErrNotFound when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	UpdateUserProfile(ctx context.Context, userID, displayName, phone string) (*models.User, error)
	UpdatePaymentHandles(ctx context.Context, userID string, handles models.PaymentHandles) (*models.User, error)
}

// Store combines the receipt and user repositories.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	ReceiptStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
