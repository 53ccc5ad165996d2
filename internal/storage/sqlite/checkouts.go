package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmynk/tabshare/internal/models"
)

// insertCheckout records a checkout. It runs inside the transaction that
// marks the items paid.
func insertCheckout(ctx context.Context, q querier, checkout *models.Checkout) error {
	if checkout.ID == "" {
		checkout.ID = uuid.New().String()
	}
	if checkout.CreatedAt == 0 {
		checkout.CreatedAt = time.Now().Unix()
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO checkouts (id, receipt_id, user_id, item_ids, amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		checkout.ID, checkout.ReceiptID, checkout.UserID,
		strings.Join(checkout.ItemIDs, ","), checkout.Amount, checkout.CreatedAt,
	)
	if err != nil {
		return writeErr("insert checkout", err)
	}
	return nil
}

// ListCheckouts retrieves all checkouts for a receipt, newest first.
func (s *SQLiteStore) ListCheckouts(ctx context.Context, receiptID string) ([]*models.Checkout, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, receipt_id, user_id, item_ids, amount, created_at
		 FROM checkouts WHERE receipt_id = ? ORDER BY created_at DESC, rowid DESC`,
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkouts: %w", err)
	}
	defer rows.Close()

	checkouts := []*models.Checkout{}
	for rows.Next() {
		checkout := &models.Checkout{}
		var itemIDs string

		if err := rows.Scan(&checkout.ID, &checkout.ReceiptID, &checkout.UserID,
			&itemIDs, &checkout.Amount, &checkout.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan checkout: %w", err)
		}

		if itemIDs != "" {
			checkout.ItemIDs = strings.Split(itemIDs, ",")
		}
		checkouts = append(checkouts, checkout)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate checkouts: %w", err)
	}

	return checkouts, nil
}
