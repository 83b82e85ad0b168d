// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"cliphub/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user account.
// AvatarPath and CoverImagePath point at request-spooled local files; the
// workflow uploads them to the asset store and deletes the local copies.
type RegisterInput struct {
	Username       string
	Email          string
	FullName       string
	Password       string
	AvatarPath     string
	CoverImagePath string // optional
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user, stripped of credential fields.
type RegisterOutput struct {
	User *entity.User
}

// UserUsecase defines the interface for account registration operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type UserUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
}
