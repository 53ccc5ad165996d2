package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/tabshare/internal/apperr"
	"github.com/mmynk/tabshare/internal/models"
)

const userColumns = `id, email, display_name, phone, password_hash, has_account,
	venmo, cash_app, paypal_email, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var email sql.NullString
	err := row.Scan(
		&user.ID,
		&email,
		&user.DisplayName,
		&user.Phone,
		&user.PasswordHash,
		&user.HasAccount,
		&user.Payments.Venmo,
		&user.Payments.CashApp,
		&user.Payments.PayPalEmail,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	return user, nil
}

// CreateUser inserts a new user into the database.
// Placeholder users without an email are stored with a NULL email so the
// unique constraint only applies to registered accounts.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	var email any
	if user.Email != "" {
		email = user.Email
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		email,
		user.DisplayName,
		user.Phone,
		user.PasswordHash,
		user.HasAccount,
		user.Payments.Venmo,
		user.Payments.CashApp,
		user.Payments.PayPalEmail,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return writeErr("create user", err)
	}

	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return getUserByID(ctx, s.db, id)
}

func getUserByID(ctx context.Context, q querier, id string) (*models.User, error) {
	user, err := scanUser(q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUsersByIDs retrieves multiple users by their IDs.
// Returns a map of user ID to User object.
// Users that don't exist are omitted from the result.
func (s *SQLiteStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	if len(ids) == 0 {
		return make(map[string]*models.User), nil
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id IN (?` + repeatPlaceholder(len(ids)-1) + `)`

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	defer rows.Close()

	users := make(map[string]*models.User)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users[user.ID] = user
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// UpdateUserProfile changes the display name and phone number.
func (s *SQLiteStore) UpdateUserProfile(ctx context.Context, userID, displayName, phone string) (*models.User, error) {
	return s.updateUser(ctx, userID,
		`UPDATE users SET display_name = ?, phone = ?, updated_at = ? WHERE id = ?`,
		displayName, phone, time.Now().Unix(), userID,
	)
}

// UpdatePaymentHandles replaces all three payment handles.
func (s *SQLiteStore) UpdatePaymentHandles(ctx context.Context, userID string, handles models.PaymentHandles) (*models.User, error) {
	return s.updateUser(ctx, userID,
		`UPDATE users SET venmo = ?, cash_app = ?, paypal_email = ?, updated_at = ? WHERE id = ?`,
		handles.Venmo, handles.CashApp, handles.PayPalEmail, time.Now().Unix(), userID,
	)
}

func (s *SQLiteStore) updateUser(ctx context.Context, userID, query string, args ...any) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, writeErr("begin transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, writeErr("update user", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, writeErr("update user", err)
	} else if n == 0 {
		return nil, apperr.NotFound("user", userID)
	}

	user, err := getUserByID(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, writeErr("commit transaction", err)
	}
	return user, nil
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(", ?", n)
}
