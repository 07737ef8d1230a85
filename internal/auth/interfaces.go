package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/ivkov/toolshelf/internal/database/models"
)

// Notifier delivers a one-time code to a user out-of-band. The auth flow only
// needs "reliably get this code to this address"; transport lives elsewhere.
type Notifier interface {
	SendTwoFactorCode(ctx context.Context, email, name, code string) error
}

// Authenticator defines the interface for user authentication operations.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*Challenge, error)
	Verify(ctx context.Context, input VerifyInput) (*AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Compile-time interface satisfaction check
var _ Authenticator = (*Service)(nil)
