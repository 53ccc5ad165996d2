package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/calculator"
	"github.com/mmynk/tabshare/internal/joincode"
	"github.com/mmynk/tabshare/internal/models"
	"github.com/mmynk/tabshare/internal/storage"
)

// maxJoinCodeAttempts bounds ID regeneration when a derived join code is taken.
const maxJoinCodeAttempts = 5

const receiptColumns = `id, join_code, name, vendor, host_id, subtotal, tax, total, version, created_at`

// CreateReceipt persists a new receipt with its items.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return writeErr("begin transaction", err)
	}
	defer tx.Rollback()

	if err := assignJoinCode(ctx, tx, receipt); err != nil {
		return err
	}
	for i := range receipt.Items {
		if receipt.Items[i].ID == "" {
			receipt.Items[i].ID = uuid.New().String()
		}
		if receipt.Items[i].Purchasers == nil {
			receipt.Items[i].Purchasers = []string{}
		}
	}
	if receipt.Guests == nil {
		receipt.Guests = []string{}
	}
	receipt.Version = 1
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO receipts (`+receiptColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.JoinCode, receipt.Name, receipt.Vendor, receipt.HostID,
		receipt.Subtotal, receipt.Tax, receipt.Total, receipt.Version, receipt.CreatedAt,
	)
	if err != nil {
		return writeErr("insert receipt", err)
	}

	if err := insertItems(ctx, tx, receipt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return writeErr("commit transaction", err)
	}
	return nil
}

// assignJoinCode derives the join code from the receipt ID. A generated ID
// whose code is already taken is replaced; a caller-supplied one is rejected.
func assignJoinCode(ctx context.Context, q querier, receipt *models.Receipt) error {
	generated := receipt.ID == ""
	for attempt := 0; attempt < maxJoinCodeAttempts; attempt++ {
		if generated {
			receipt.ID = uuid.New().String()
		}
		code := joincode.FromID(receipt.ID)

		var exists int
		err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts WHERE join_code = ?`, code).Scan(&exists)
		if err != nil {
			return writeErr("check join code", err)
		}
		if exists == 0 {
			receipt.JoinCode = code
			return nil
		}
		if !generated {
			return writeErr("assign join code", fmt.Errorf("join code %s already in use", code))
		}
	}
	return writeErr("assign join code", errors.New("no free join code after retries"))
}

// GetReceipt retrieves a receipt by ID.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	return loadReceipt(ctx, s.db, "id", receiptID)
}

// GetReceiptByJoinCode retrieves a receipt by its canonical join code.
func (s *SQLiteStore) GetReceiptByJoinCode(ctx context.Context, code string) (*models.Receipt, error) {
	return loadReceipt(ctx, s.db, "join_code", code)
}

// loadReceipt reads a receipt and its children. Each query's rows are
// closed before the next one starts; the pool has a single connection.
func loadReceipt(ctx context.Context, q querier, column, key string) (*models.Receipt, error) {
	r := &models.Receipt{}
	err := q.QueryRowContext(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE `+column+` = ?`, key,
	).Scan(&r.ID, &r.JoinCode, &r.Name, &r.Vendor, &r.HostID,
		&r.Subtotal, &r.Tax, &r.Total, &r.Version, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if column == "join_code" {
			return nil, apperr.NotFound("receipt with join code", key)
		}
		return nil, apperr.NotFound("receipt", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	guests, err := loadGuests(ctx, q, r.ID)
	if err != nil {
		return nil, err
	}
	r.Guests = guests

	items, err := loadItems(ctx, q, r.ID)
	if err != nil {
		return nil, err
	}
	r.Items = items

	if err := loadPurchasers(ctx, q, r); err != nil {
		return nil, err
	}
	return r, nil
}

func loadGuests(ctx context.Context, q querier, receiptID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT user_id FROM receipt_guests WHERE receipt_id = ? ORDER BY joined_at, rowid`,
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query guests: %w", err)
	}
	defer rows.Close()

	guests := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		guests = append(guests, userID)
	}
	return guests, rows.Err()
}

func loadItems(ctx context.Context, q querier, receiptID string) ([]models.ReceiptItem, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, price, paid FROM receipt_items WHERE receipt_id = ? ORDER BY position`,
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.ReceiptItem{}
	for rows.Next() {
		item := models.ReceiptItem{Purchasers: []string{}}
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func loadPurchasers(ctx context.Context, q querier, r *models.Receipt) error {
	rows, err := q.QueryContext(ctx,
		`SELECT p.item_id, p.user_id
		 FROM item_purchasers p
		 JOIN receipt_items i ON i.id = p.item_id
		 WHERE i.receipt_id = ?
		 ORDER BY i.position, p.position`,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query purchasers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID, userID string
		if err := rows.Scan(&itemID, &userID); err != nil {
			return fmt.Errorf("failed to scan purchaser: %w", err)
		}
		if item := r.Item(itemID); item != nil {
			item.Purchasers = append(item.Purchasers, userID)
		}
	}
	return rows.Err()
}

// insertItems writes every item of the receipt with its purchasers.
func insertItems(ctx context.Context, q querier, r *models.Receipt) error {
	for pos, item := range r.Items {
		_, err := q.ExecContext(ctx,
			`INSERT INTO receipt_items (id, receipt_id, position, name, price, paid) VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, r.ID, pos, item.Name, item.Price, item.Paid,
		)
		if err != nil {
			return writeErr("insert item", err)
		}
		for ppos, userID := range item.Purchasers {
			_, err := q.ExecContext(ctx,
				`INSERT INTO item_purchasers (item_id, user_id, position) VALUES (?, ?, ?)`,
				item.ID, userID, ppos,
			)
			if err != nil {
				return writeErr("insert purchaser", err)
			}
		}
	}
	return nil
}

// replaceItems rewrites the receipt's item rows from the in-memory copy.
func replaceItems(ctx context.Context, q querier, r *models.Receipt) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM item_purchasers WHERE item_id IN (SELECT id FROM receipt_items WHERE receipt_id = ?)`,
		r.ID,
	)
	if err != nil {
		return writeErr("delete purchasers", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM receipt_items WHERE receipt_id = ?`, r.ID); err != nil {
		return writeErr("delete items", err)
	}
	return insertItems(ctx, q, r)
}

// mutate runs a read-modify-write of one receipt inside a transaction.
// The host, join code, and creation time survive fn unchanged.
func (s *SQLiteStore) mutate(ctx context.Context, receiptID string, expectedVersion int64,
	fn func(tx *sql.Tx, r *models.Receipt) error) (*models.Receipt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, writeErr("begin transaction", err)
	}
	defer tx.Rollback()

	r, err := loadReceipt(ctx, tx, "id", receiptID)
	if err != nil {
		return nil, err
	}
	if expectedVersion != 0 && r.Version != expectedVersion {
		return nil, fmt.Errorf("receipt %q at version %d, expected %d: %w",
			receiptID, r.Version, expectedVersion, apperr.ErrVersionConflict)
	}

	loadedVersion := r.Version
	hostID, code, createdAt := r.HostID, r.JoinCode, r.CreatedAt
	if err := fn(tx, r); err != nil {
		return nil, err
	}
	r.ID, r.HostID, r.JoinCode, r.CreatedAt = receiptID, hostID, code, createdAt

	if err := replaceItems(ctx, tx, r); err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE receipts SET name = ?, vendor = ?, subtotal = ?, tax = ?, total = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		r.Name, r.Vendor, r.Subtotal, r.Tax, r.Total, receiptID, loadedVersion,
	)
	if err != nil {
		return nil, writeErr("update receipt", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, writeErr("update receipt", err)
	} else if n == 0 {
		return nil, fmt.Errorf("receipt %q changed during update: %w", receiptID, apperr.ErrVersionConflict)
	}
	r.Version = loadedVersion + 1

	if err := tx.Commit(); err != nil {
		return nil, writeErr("commit transaction", err)
	}
	return r, nil
}

// UpdateReceipt applies fn to the stored receipt in one transaction.
func (s *SQLiteStore) UpdateReceipt(ctx context.Context, receiptID string, expectedVersion int64, fn storage.MutateFunc) (*models.Receipt, error) {
	return s.mutate(ctx, receiptID, expectedVersion, func(_ *sql.Tx, r *models.Receipt) error {
		return fn(r)
	})
}

// MarkItemsPaid marks the items paid with userID as purchaser and records
// the checkout in the same transaction.
func (s *SQLiteStore) MarkItemsPaid(ctx context.Context, receiptID, userID string, itemIDs []string) (*models.Checkout, error) {
	var checkout *models.Checkout
	_, err := s.mutate(ctx, receiptID, 0, func(tx *sql.Tx, r *models.Receipt) error {
		amount, err := calculator.MarkItemsPaid(r, userID, itemIDs)
		if err != nil {
			return err
		}
		checkout = &models.Checkout{
			ReceiptID: receiptID,
			UserID:    userID,
			ItemIDs:   dedupe(itemIDs),
			Amount:    amount,
		}
		return insertCheckout(ctx, tx, checkout)
	})
	if err != nil {
		return nil, err
	}
	return checkout, nil
}

// AddGuest adds userID to the receipt's guests. Adding an existing guest or
// the host is a no-op.
func (s *SQLiteStore) AddGuest(ctx context.Context, receiptID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return writeErr("begin transaction", err)
	}
	defer tx.Rollback()

	var hostID string
	err = tx.QueryRowContext(ctx, `SELECT host_id FROM receipts WHERE id = ?`, receiptID).Scan(&hostID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("receipt", receiptID)
	}
	if err != nil {
		return fmt.Errorf("failed to get receipt: %w", err)
	}
	if hostID == userID {
		return nil
	}

	res, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO receipt_guests (receipt_id, user_id, joined_at) VALUES (?, ?, ?)`,
		receiptID, userID, time.Now().Unix(),
	)
	if err != nil {
		return writeErr("add guest", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE receipts SET version = version + 1 WHERE id = ?`, receiptID); err != nil {
			return writeErr("bump receipt version", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return writeErr("commit transaction", err)
	}
	return nil
}

// ListHostedReceipts returns receipts hosted by userID, newest first.
func (s *SQLiteStore) ListHostedReceipts(ctx context.Context, userID string) ([]*models.Receipt, error) {
	return s.listReceipts(ctx,
		`SELECT id FROM receipts WHERE host_id = ? ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
}

// ListRequestedReceipts returns receipts userID joined as a guest, newest first.
func (s *SQLiteStore) ListRequestedReceipts(ctx context.Context, userID string) ([]*models.Receipt, error) {
	return s.listReceipts(ctx,
		`SELECT r.id FROM receipt_guests g
		 JOIN receipts r ON r.id = g.receipt_id
		 WHERE g.user_id = ? AND r.host_id <> g.user_id
		 ORDER BY r.created_at DESC, r.rowid DESC`,
		userID,
	)
}

func (s *SQLiteStore) listReceipts(ctx context.Context, query string, args ...any) ([]*models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan receipt id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}

	receipts := make([]*models.Receipt, 0, len(ids))
	for _, id := range ids {
		r, err := loadReceipt(ctx, s.db, "id", id)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, r)
	}
	return receipts, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
