// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"cliphub/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// LoginInput carries the credentials for establishing a session. Username and
// Email are alternative identifiers; at least one must be set.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// RefreshInput carries the refresh token presented for rotation.
type RefreshInput struct {
	RefreshToken string
}

// ChangePasswordInput carries a password change for an authenticated user.
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// --- Output DTOs ---

// LoginOutput returns the generated token pair after a successful login.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

// RefreshOutput returns the replacement token pair after a successful rotation.
type RefreshOutput struct {
	AccessToken  string
	RefreshToken string
}

// SessionUsecase defines the interface for session lifecycle operations.
type SessionUsecase interface {
	// Login verifies credentials and starts a session, replacing any
	// previously stored refresh token.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Refresh rotates the presented refresh token for a fresh pair. A token
	// that verifies but no longer matches the stored one invalidates nothing
	// and fails as a stale session.
	Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)

	// Logout ends the user's session by clearing the stored refresh token.
	Logout(ctx context.Context, userID uuid.UUID) error

	// ChangePassword verifies the old password and replaces the stored hash.
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
}
