// Package auth registers accounts, checks credentials, and issues the
// bearer tokens that identify a session.
package auth

import (
	"context"

	"github.com/mmynk/tabshare/internal/models"
)

// Account is the data collected when someone signs up.
type Account struct {
	Email       string
	DisplayName string
	Phone       string
	Password    string

	// Payments must contain at least one handle: guests pay the host
	// through one of them.
	Payments models.PaymentHandles
}

// Authenticator defines the interface for authentication implementations.
// The service layer depends only on this, so the credential mechanism can
// change without touching it.
type Authenticator interface {
	// Register creates a new user account.
	Register(ctx context.Context, account Account) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
