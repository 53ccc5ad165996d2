package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a person who can host or join receipts.
//
// Users created through registration have an account. A host can also add
// a guest by name and phone number; such placeholder users have no
// credentials and HasAccount is false.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Empty for placeholders.
	Email string

	// DisplayName is the name shown to other participants.
	DisplayName string

	// Phone is an optional contact number.
	Phone string

	// PasswordHash is the bcrypt hash. Empty for placeholders.
	PasswordHash string

	// HasAccount is false for guests added by a host without signing up.
	HasAccount bool

	// Payments holds the handles other participants pay this user with.
	Payments PaymentHandles

	// CreatedAt is the Unix timestamp when the user was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a registered user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		HasAccount:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewPlaceholderUser creates a user without an account.
func NewPlaceholderUser(displayName, phone string) *User {
	now := time.Now().Unix()
	return &User{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		Phone:       phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
