package impl

import (
	"context"
	"testing"

	"cliphub/internal/domain/entity"
	domainerrors "cliphub/internal/domain/errors"
	"cliphub/internal/domain/repository"
	"cliphub/internal/domain/service"
	"cliphub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// registrationFixtures holds all test dependencies for registration tests.
type registrationFixtures struct {
	service   usecase.UserUsecase
	txManager *mockTransactionManager
	userRepo  *mockUserRepository
	hasher    *mockPasswordHasher
	storage   *mockMediaStorage
	publisher *mockEventPublisher
}

func createTestRegistrationService() registrationFixtures {
	txManager := &mockTransactionManager{}
	userRepo := &mockUserRepository{}
	hasher := &mockPasswordHasher{}
	storage := &mockMediaStorage{}
	publisher := &mockEventPublisher{}

	service := NewRegistrationService(RegistrationServiceParams{
		TxManager: txManager,
		UserRepo:  userRepo,
		Hasher:    hasher,
		Storage:   storage,
		Publisher: publisher,
		Logger:    newDiscardLogger(),
	})

	return registrationFixtures{
		service:   service,
		txManager: txManager,
		userRepo:  userRepo,
		hasher:    hasher,
		storage:   storage,
		publisher: publisher,
	}
}

func validRegisterInput() *usecase.RegisterInput {
	return &usecase.RegisterInput{
		Username:       "Alice",
		Email:          "Alice@Example.com",
		FullName:       "Alice Doe",
		Password:       "secret123",
		AvatarPath:     "/tmp/spool/avatar.png",
		CoverImagePath: "/tmp/spool/cover.png",
	}
}

func TestRegistrationService_Register_Success(t *testing.T) {
	fx := createTestRegistrationService()
	ctx := context.Background()
	input := validRegisterInput()
	userID := uuid.New()

	// Identifiers are normalized before the duplicate check.
	fx.userRepo.On("FindByUsernameOrEmail", ctx, "alice", "alice@example.com").
		Return(nil, repository.ErrUserNotFound)
	fx.hasher.On("Hash", "secret123").Return("hashed_password", nil)
	fx.storage.On("Upload", mock.Anything, input.AvatarPath).
		Return(&service.StoredAsset{URL: "https://cdn.example.com/avatar.png", Key: "avatar.png"}, nil)
	fx.storage.On("Upload", mock.Anything, input.CoverImagePath).
		Return(&service.StoredAsset{URL: "https://cdn.example.com/cover.png", Key: "cover.png"}, nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(repository.RepositoryFactory) error)

			innerRepo := &mockUserRepository{}
			factory := &mockRepositoryFactory{}
			factory.On("UserRepo").Return(innerRepo)

			innerRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).
				Run(func(args mock.Arguments) {
					args.Get(1).(*entity.User).ID = userID
				}).
				Return(nil)
			innerRepo.On("FindByID", ctx, userID).
				Return(&entity.User{
					ID:            userID,
					Username:      "alice",
					Email:         "alice@example.com",
					FullName:      "Alice Doe",
					AvatarURL:     "https://cdn.example.com/avatar.png",
					CoverImageURL: "https://cdn.example.com/cover.png",
					PasswordHash:  "hashed_password",
				}, nil)

			_ = fn(factory)
		}).
		Return(nil)

	fx.publisher.On("PublishAccountEvent", mock.Anything, mock.AnythingOfType("*service.AccountEvent")).
		Return(nil)

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, userID, output.User.ID)
	assert.Equal(t, "alice", output.User.Username)
	assert.Equal(t, "https://cdn.example.com/avatar.png", output.User.AvatarURL)
	// Credential fields never leave the workflow.
	assert.Empty(t, output.User.PasswordHash)
	assert.Empty(t, output.User.RefreshToken)
	fx.storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*usecase.RegisterInput)
	}{
		{"missing username", func(in *usecase.RegisterInput) { in.Username = " " }},
		{"missing email", func(in *usecase.RegisterInput) { in.Email = "" }},
		{"missing fullname", func(in *usecase.RegisterInput) { in.FullName = "" }},
		{"missing password", func(in *usecase.RegisterInput) { in.Password = "" }},
		{"whitespace password", func(in *usecase.RegisterInput) { in.Password = "   " }},
		{"missing avatar", func(in *usecase.RegisterInput) { in.AvatarPath = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := createTestRegistrationService()
			input := validRegisterInput()
			tt.mutate(input)

			output, err := fx.service.Register(context.Background(), input)

			assert.Nil(t, output)
			assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
			fx.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}
}

func TestRegistrationService_Register_WhitespacePasswordRejectedBeforeSideEffects(t *testing.T) {
	fx := createTestRegistrationService()
	input := validRegisterInput()
	input.Password = " \t "

	output, err := fx.service.Register(context.Background(), input)

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	// A blank-after-trim password stops the workflow before anything is
	// hashed, uploaded or written.
	fx.hasher.AssertNotCalled(t, "Hash", mock.Anything)
	fx.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	fx.txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_PasswordHashedAsProvided(t *testing.T) {
	fx := createTestRegistrationService()
	ctx := context.Background()
	input := validRegisterInput()
	input.Password = "  secret123  "
	input.CoverImagePath = ""
	userID := uuid.New()

	fx.userRepo.On("FindByUsernameOrEmail", ctx, "alice", "alice@example.com").
		Return(nil, repository.ErrUserNotFound)
	// Surrounding whitespace is part of the credential; only the blank
	// check trims.
	fx.hasher.On("Hash", "  secret123  ").Return("hashed_password", nil)
	fx.storage.On("Upload", mock.Anything, input.AvatarPath).
		Return(&service.StoredAsset{URL: "https://cdn.example.com/avatar.png", Key: "avatar.png"}, nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(repository.RepositoryFactory) error)

			innerRepo := &mockUserRepository{}
			factory := &mockRepositoryFactory{}
			factory.On("UserRepo").Return(innerRepo)

			innerRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).
				Run(func(args mock.Arguments) {
					args.Get(1).(*entity.User).ID = userID
				}).
				Return(nil)
			innerRepo.On("FindByID", ctx, userID).
				Return(&entity.User{ID: userID, Username: "alice"}, nil)

			_ = fn(factory)
		}).
		Return(nil)

	fx.publisher.On("PublishAccountEvent", mock.Anything, mock.Anything).Return(nil)

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.NotNil(t, output)
	fx.hasher.AssertCalled(t, "Hash", "  secret123  ")
}

func TestRegistrationService_Register_DuplicateUser(t *testing.T) {
	fx := createTestRegistrationService()
	ctx := context.Background()
	input := validRegisterInput()

	fx.userRepo.On("FindByUsernameOrEmail", ctx, "alice", "alice@example.com").
		Return(&entity.User{ID: uuid.New(), Username: "alice"}, nil)

	output, err := fx.service.Register(ctx, input)

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
	// Nothing was uploaded for a rejected registration.
	fx.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_AvatarUploadFails_CompensatesCover(t *testing.T) {
	fx := createTestRegistrationService()
	ctx := context.Background()
	input := validRegisterInput()

	fx.userRepo.On("FindByUsernameOrEmail", ctx, "alice", "alice@example.com").
		Return(nil, repository.ErrUserNotFound)
	fx.hasher.On("Hash", "secret123").Return("hashed_password", nil)
	fx.storage.On("Upload", mock.Anything, input.AvatarPath).
		Return(nil, errors.New("bucket write refused"))
	fx.storage.On("Upload", mock.Anything, input.CoverImagePath).
		Return(&service.StoredAsset{URL: "https://cdn.example.com/cover.png", Key: "cover.png"}, nil)
	fx.storage.On("Delete", mock.Anything, "cover.png").Return(nil)

	output, err := fx.service.Register(ctx, input)

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUploadFailed))
	// The cover that did land gets deleted; no record was ever written.
	fx.storage.AssertCalled(t, "Delete", mock.Anything, "cover.png")
	fx.txManager.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_CreationFails_CompensatesUploads(t *testing.T) {
	fx := createTestRegistrationService()
	ctx := context.Background()
	input := validRegisterInput()

	fx.userRepo.On("FindByUsernameOrEmail", ctx, "alice", "alice@example.com").
		Return(nil, repository.ErrUserNotFound)
	fx.hasher.On("Hash", "secret123").Return("hashed_password", nil)
	fx.storage.On("Upload", mock.Anything, input.AvatarPath).
		Return(&service.StoredAsset{URL: "https://cdn.example.com/avatar.png", Key: "avatar.png"}, nil)
	fx.storage.On("Upload", mock.Anything, input.CoverImagePath).
		Return(&service.StoredAsset{URL: "https://cdn.example.com/cover.png", Key: "cover.png"}, nil)
	fx.storage.On("Delete", mock.Anything, "avatar.png").Return(nil)
	fx.storage.On("Delete", mock.Anything, "cover.png").Return(nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Return(errors.New("connection reset"))

	output, err := fx.service.Register(ctx, input)

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserCreationFailed))
	fx.storage.AssertCalled(t, "Delete", mock.Anything, "avatar.png")
	fx.storage.AssertCalled(t, "Delete", mock.Anything, "cover.png")
	fx.publisher.AssertNotCalled(t, "PublishAccountEvent", mock.Anything, mock.Anything)
}

func TestRegistrationService_Register_ConstraintRaceStaysConflict(t *testing.T) {
	fx := createTestRegistrationService()
	ctx := context.Background()
	input := validRegisterInput()

	fx.userRepo.On("FindByUsernameOrEmail", ctx, "alice", "alice@example.com").
		Return(nil, repository.ErrUserNotFound)
	fx.hasher.On("Hash", "secret123").Return("hashed_password", nil)
	fx.storage.On("Upload", mock.Anything, input.AvatarPath).
		Return(&service.StoredAsset{URL: "https://cdn.example.com/avatar.png", Key: "avatar.png"}, nil)
	fx.storage.On("Upload", mock.Anything, input.CoverImagePath).
		Return(&service.StoredAsset{URL: "https://cdn.example.com/cover.png", Key: "cover.png"}, nil)
	fx.storage.On("Delete", mock.Anything, mock.Anything).Return(nil)

	// A concurrent registration won the unique constraint race inside the
	// transaction; the duplicate check above saw nothing.
	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Return(domainerrors.ErrUserAlreadyExists.WrapMessage("unique constraint violated"))

	output, err := fx.service.Register(ctx, input)

	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
	assert.False(t, errors.Is(err, domainerrors.ErrUserCreationFailed))
	fx.storage.AssertCalled(t, "Delete", mock.Anything, "avatar.png")
}

func TestRegistrationService_Register_PublishFailureDoesNotFail(t *testing.T) {
	fx := createTestRegistrationService()
	ctx := context.Background()
	input := validRegisterInput()
	input.CoverImagePath = ""
	userID := uuid.New()

	fx.userRepo.On("FindByUsernameOrEmail", ctx, "alice", "alice@example.com").
		Return(nil, repository.ErrUserNotFound)
	fx.hasher.On("Hash", "secret123").Return("hashed_password", nil)
	fx.storage.On("Upload", mock.Anything, input.AvatarPath).
		Return(&service.StoredAsset{URL: "https://cdn.example.com/avatar.png", Key: "avatar.png"}, nil)

	fx.txManager.On("Execute", ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(args mock.Arguments) {
			fn := args.Get(1).(func(repository.RepositoryFactory) error)

			innerRepo := &mockUserRepository{}
			factory := &mockRepositoryFactory{}
			factory.On("UserRepo").Return(innerRepo)

			innerRepo.On("Create", ctx, mock.AnythingOfType("*entity.User")).
				Run(func(args mock.Arguments) {
					args.Get(1).(*entity.User).ID = userID
				}).
				Return(nil)
			innerRepo.On("FindByID", ctx, userID).
				Return(&entity.User{ID: userID, Username: "alice"}, nil)

			_ = fn(factory)
		}).
		Return(nil)

	fx.publisher.On("PublishAccountEvent", mock.Anything, mock.Anything).
		Return(errors.New("broker unavailable"))

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	assert.NotNil(t, output)
}
