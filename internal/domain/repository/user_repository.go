// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"cliphub/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for user persistence. The application layer handles
// these without depending on database-specific errors.
var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrRefreshTokenStale is returned by RotateRefreshToken when the presented
	// token no longer matches the stored one. This is the reuse-detection and
	// concurrent-rotation serialization point: of two racing rotations only one
	// can match, the loser observes this error.
	ErrRefreshTokenStale = errors.New("refresh token stale or revoked")
)

// UserRepository defines the standard operations for user persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUsernameOrEmail retrieves the user matching either identifier.
	// Both arguments are expected lower-cased and trimmed.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)

	// Create persists a new user entity. The store enforces username/email
	// uniqueness; violations surface as a conflict error.
	Create(ctx context.Context, user *entity.User) error

	// UpdateRefreshToken unconditionally sets the stored refresh token,
	// starting a new session. Used by login.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error

	// RotateRefreshToken atomically replaces the stored refresh token with
	// next, but only if the stored value still equals presented. Returns
	// ErrRefreshTokenStale when no row matched.
	RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error

	// ClearRefreshToken removes the stored refresh token, ending the session.
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error

	// UpdatePasswordHash overwrites the stored credential digest.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}
