// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"cliphub/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileUsecase defines read-side operations on user profiles.
type ProfileUsecase interface {
	// GetCurrentUser returns the sanitized user for an authenticated session.
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// GenerateProfileQR renders a PNG QR code linking to the public profile
	// page of the given username. The username must belong to an existing user.
	GenerateProfileQR(ctx context.Context, username string) ([]byte, error)
}
