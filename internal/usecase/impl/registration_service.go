package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "cliphub/internal/delivery/context"
	"cliphub/internal/domain/entity"
	domainerrors "cliphub/internal/domain/errors"
	"cliphub/internal/domain/repository"
	"cliphub/internal/domain/service"
	"cliphub/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

// registrationService implements the UserUsecase interface.
type registrationService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	hasher    service.PasswordHasher
	storage   service.MediaStorage
	publisher service.EventPublisher
	logger    *slog.Logger
}

// RegistrationServiceParams holds dependencies for registrationService, injected by Fx.
type RegistrationServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Storage   service.MediaStorage
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewRegistrationService is the constructor for registrationService. It receives all dependencies as interfaces.
func NewRegistrationService(params RegistrationServiceParams) usecase.UserUsecase {
	return &registrationService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		hasher:    params.Hasher,
		storage:   params.Storage,
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *registrationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete account creation workflow: validate,
// reject duplicates, upload profile assets, persist the record, and undo the
// uploads if persistence fails so no orphaned assets remain in the store.
func (srv *registrationService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	normalizeRegisterInput(input)

	srv.log(ctx).Info("Starting registration",
		slog.String("username", input.Username),
		slog.String("email", input.Email),
	)

	if err := validateRegisterInput(input); err != nil {
		srv.log(ctx).Warn("Registration validation failed", slog.String("username", input.Username), slog.Any("error", err))

		return nil, err
	}

	if err := srv.checkDuplicate(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	comp := &compensator{}

	avatar, coverImage, err := srv.uploadProfileAssets(ctx, comp, input)
	if err != nil {
		comp.Run(ctx, srv.log(ctx))

		return nil, err
	}

	createdUser, err := srv.createUserRecord(ctx, input, hashedPassword, avatar, coverImage)
	if err != nil {
		srv.log(ctx).Error("Failed to create user record, compensating uploads",
			slog.String("username", input.Username),
			slog.Any("error", err),
		)
		comp.Run(ctx, srv.log(ctx))

		return nil, err
	}

	publishAccountEvent(ctx, srv.log(ctx), srv.publisher, service.EventUserRegistered, createdUser.ID, createdUser.Username)

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", createdUser.ID))

	return &usecase.RegisterOutput{User: createdUser.Sanitized()}, nil
}

func normalizeRegisterInput(input *usecase.RegisterInput) {
	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
}

func validateRegisterInput(input *usecase.RegisterInput) error {
	// The password is checked blank-after-trim but hashed as provided;
	// surrounding whitespace is significant credential material.
	for field, value := range map[string]string{
		"username": input.Username,
		"email":    input.Email,
		"fullname": input.FullName,
		"password": input.Password,
	} {
		if strings.TrimSpace(value) == "" {
			return domainerrors.ErrValidationFailed.WithDetails(field + " is required")
		}
	}

	if input.AvatarPath == "" {
		return domainerrors.ErrValidationFailed.WithDetails("avatar file is required")
	}

	return nil
}

// checkDuplicate rejects the registration early when either identifier is
// already taken. The unique constraints on the store remain the authority;
// this check just produces a friendlier conflict before any upload happens.
func (srv *registrationService) checkDuplicate(ctx context.Context, username, email string) error {
	_, err := srv.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err == nil {
		srv.log(ctx).Warn("Registration rejected, identifier already taken", slog.String("username", username))

		return domainerrors.ErrUserAlreadyExists.WrapMessage("registration rejected")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(err, "failed to check for existing user")
	}

	return nil
}

// uploadProfileAssets pushes the avatar (required) and cover image (optional)
// to the asset store concurrently. Each successful upload registers an undo so
// a later failure leaves no orphaned objects behind.
func (srv *registrationService) uploadProfileAssets(ctx context.Context, comp *compensator, input *usecase.RegisterInput) (*service.StoredAsset, *service.StoredAsset, error) {
	var avatar, coverImage *service.StoredAsset

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		asset, err := srv.storage.Upload(groupCtx, input.AvatarPath)
		if err != nil {
			return errors.Wrap(err, "failed to upload avatar")
		}
		avatar = asset
		comp.Push("delete uploaded avatar", func(ctx context.Context) error {
			return srv.storage.Delete(ctx, asset.Key)
		})

		return nil
	})

	if input.CoverImagePath != "" {
		group.Go(func() error {
			asset, err := srv.storage.Upload(groupCtx, input.CoverImagePath)
			if err != nil {
				return errors.Wrap(err, "failed to upload cover image")
			}
			coverImage = asset
			comp.Push("delete uploaded cover image", func(ctx context.Context) error {
				return srv.storage.Delete(ctx, asset.Key)
			})

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		srv.log(ctx).Error("Profile asset upload failed", slog.String("username", input.Username), slog.Any("error", err))

		return nil, nil, domainerrors.ErrUploadFailed.WrapMessage(err.Error())
	}

	return avatar, coverImage, nil
}

// createUserRecord persists the new user and re-reads the stored row inside
// one transaction. Any failure here surfaces as a creation error; the caller
// compensates the already-uploaded assets.
func (srv *registrationService) createUserRecord(ctx context.Context, input *usecase.RegisterInput, hashedPassword string, avatar, coverImage *service.StoredAsset) (*entity.User, error) {
	newUser := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hashedPassword,
		AvatarURL:    avatar.URL,
	}
	if coverImage != nil {
		newUser.CoverImageURL = coverImage.URL
	}

	var createdUser *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if err := userRepo.Create(ctx, newUser); err != nil {
			if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
				return err
			}

			return errors.Wrap(err, "failed to create user record")
		}

		// Confirm the row landed and pick up store-generated fields.
		stored, err := userRepo.FindByID(ctx, newUser.ID)
		if err != nil {
			return errors.Wrap(err, "failed to read back created user")
		}
		createdUser = stored

		return nil
	})
	if err != nil {
		// A constraint race with a concurrent registration stays a conflict.
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			return nil, err
		}

		return nil, domainerrors.ErrUserCreationFailed.WrapMessage(err.Error())
	}

	return createdUser, nil
}
