// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"cliphub/internal/domain/entity"
	domainerrors "cliphub/internal/domain/errors"
	"cliphub/internal/domain/repository"
	"cliphub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the repository.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&userM).Error; err != nil {
		// If the error is 'record not found', return a domain-specific error.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByUsernameOrEmail retrieves the user matching either identifier.
func (repo *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by username or email")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new user entity. The unique constraints on username and
// email surface duplicates as a conflict error.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("username or email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Update the user entity with the generated ID and timestamps
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// UpdateRefreshToken unconditionally sets the stored refresh token, starting a new session.
func (repo *userRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("refresh_token", token)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update refresh token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// RotateRefreshToken atomically replaces the stored refresh token, but only
// if the stored value still equals presented. The conditional WHERE clause is
// the serialization point for concurrent rotations: only one writer can match
// the old value, the loser sees zero rows affected.
func (repo *userRepository) RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ? AND refresh_token = ?", id, presented).
		Update("refresh_token", next)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to rotate refresh token")
	}
	if result.RowsAffected == 0 {
		return repository.ErrRefreshTokenStale
	}

	return nil
}

// ClearRefreshToken removes the stored refresh token, ending the session.
// Clearing an already-empty token is not an error.
func (repo *userRepository) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("refresh_token", "")
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to clear refresh token")
	}

	return nil
}

// UpdatePasswordHash overwrites the stored credential digest.
func (repo *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update password hash")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:            data.ID,
		Username:      data.Username,
		Email:         data.Email,
		FullName:      data.FullName,
		AvatarURL:     data.AvatarURL,
		CoverImageURL: data.CoverImageURL,
		PasswordHash:  data.PasswordHash,
		RefreshToken:  data.RefreshToken,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:            data.ID,
		Username:      data.Username,
		Email:         data.Email,
		FullName:      data.FullName,
		AvatarURL:     data.AvatarURL,
		CoverImageURL: data.CoverImageURL,
		PasswordHash:  data.PasswordHash,
		RefreshToken:  data.RefreshToken,
	}
}
