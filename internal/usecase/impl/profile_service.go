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

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	userRepo repository.UserRepository
	qrcode   service.QRCodeService
	logger   *slog.Logger
}

// ProfileServiceParams holds dependencies for profileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	QRCode   service.QRCodeService
	Logger   *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		userRepo: params.UserRepo,
		qrcode:   params.QRCode,
		logger:   params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetCurrentUser returns the sanitized user for an authenticated session.
func (srv *profileService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("current user lookup failed")
		}

		return nil, errors.Wrap(err, "failed to load current user")
	}

	return user.Sanitized(), nil
}

// GenerateProfileQR renders a shareable QR code for an existing user's
// public profile page.
func (srv *profileService) GenerateProfileQR(ctx context.Context, username string) ([]byte, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("username is required")
	}

	if _, err := srv.userRepo.FindByUsernameOrEmail(ctx, username, ""); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("profile QR generation failed")
		}

		return nil, errors.Wrap(err, "failed to look up user for profile QR")
	}

	png, err := srv.qrcode.GenerateProfileQR(username)
	if err != nil {
		srv.log(ctx).Error("Failed to generate profile QR code", slog.String("username", username), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to generate profile QR code")
	}

	return png, nil
}
