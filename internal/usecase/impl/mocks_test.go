package impl

import (
	"context"
	"io"
	"log/slog"
	"time"

	"cliphub/internal/domain/entity"
	"cliphub/internal/domain/repository"
	"cliphub/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error) {
	args := m.Called(ctx, username, email)
	if user, ok := args.Get(0).(*entity.User); ok {
		return user, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *mockUserRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)

	return args.Error(0)
}

func (m *mockUserRepository) RotateRefreshToken(ctx context.Context, id uuid.UUID, presented, next string) error {
	args := m.Called(ctx, id, presented, next)

	return args.Error(0)
}

func (m *mockUserRepository) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

func (m *mockUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	args := m.Called(ctx, id, hash)

	return args.Error(0)
}

type mockRepositoryFactory struct {
	mock.Mock
}

func (m *mockRepositoryFactory) UserRepo() repository.UserRepository {
	args := m.Called()

	return args.Get(0).(repository.UserRepository)
}

type mockTransactionManager struct {
	mock.Mock
}

func (m *mockTransactionManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	args := m.Called(ctx, fn)

	return args.Error(0)
}

type mockPasswordHasher struct {
	mock.Mock
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Check(password, hash string) bool {
	args := m.Called(password, hash)

	return args.Bool(0)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) IssuePair(user *entity.User) (string, string, error) {
	args := m.Called(user)

	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokenService) VerifyAccess(tokenString string) (*service.AccessClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*service.AccessClaims); ok {
		return claims, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockTokenService) VerifyRefresh(tokenString string) (*service.RefreshClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(*service.RefreshClaims); ok {
		return claims, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockTokenService) RefreshTokenTTL() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}

type mockMediaStorage struct {
	mock.Mock
}

func (m *mockMediaStorage) Upload(ctx context.Context, localPath string) (*service.StoredAsset, error) {
	args := m.Called(ctx, localPath)
	if asset, ok := args.Get(0).(*service.StoredAsset); ok {
		return asset, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *mockMediaStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)

	return args.Error(0)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishAccountEvent(ctx context.Context, event *service.AccountEvent) error {
	args := m.Called(ctx, event)

	return args.Error(0)
}

func (m *mockEventPublisher) Close() error {
	args := m.Called()

	return args.Error(0)
}

type mockQRCodeService struct {
	mock.Mock
}

func (m *mockQRCodeService) GenerateProfileQR(username string) ([]byte, error) {
	args := m.Called(username)
	if png, ok := args.Get(0).([]byte); ok {
		return png, args.Error(1)
	}

	return nil, args.Error(1)
}
