package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "cliphub/internal/delivery/context"
	domainerrors "cliphub/internal/domain/errors"
	"cliphub/internal/domain/repository"
	"cliphub/internal/domain/service"
	"cliphub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	publisher    service.EventPublisher
	logger       *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Publisher    service.EventPublisher
	Logger       *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		publisher:    params.Publisher,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login verifies credentials and starts a fresh session. Storing the new
// refresh token overwrites whatever was there before, so at most one refresh
// token per user is ever valid.
func (srv *sessionService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if username == "" && email == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("username or email is required")
	}
	if input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("password is required")
	}

	srv.log(ctx).Debug("Starting login", slog.String("username", username), slog.String("email", email))

	user, err := srv.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed, user does not exist", slog.String("username", username))

			return nil, domainerrors.ErrUserNotFound.WrapMessage("login failed")
		}

		return nil, errors.Wrap(err, "failed to look up user for login")
	}

	// bcrypt comparison is CPU-bound, keep it outside any transaction.
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed, password mismatch", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}

	accessToken, refreshToken, err := srv.tokenService.IssuePair(user)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token pair", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue token pair")
	}

	if err := srv.userRepo.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		srv.log(ctx).Error("Failed to store refresh token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store refresh token during login")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Sanitized(),
	}, nil
}

// Refresh rotates the presented refresh token for a fresh pair. The swap in
// the store is atomic: of two concurrent rotations with the same token only
// one succeeds, the other observes a stale session. A token that verifies
// cryptographically but no longer matches the stored one means it was already
// rotated or revoked, and the session is rejected.
func (srv *sessionService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	if input.RefreshToken == "" {
		return nil, domainerrors.ErrRefreshTokenMissing.WrapMessage("refresh rejected")
	}

	claims, err := srv.tokenService.VerifyRefresh(input.RefreshToken)
	if err != nil {
		srv.log(ctx).Warn("Refresh failed, token did not verify", slog.Any("error", err))

		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh rejected")
	}

	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Refresh failed, user no longer exists", slog.Any("userID", claims.UserID))

			return nil, domainerrors.ErrSessionInvalid.WrapMessage("refresh rejected")
		}

		return nil, errors.Wrap(err, "failed to load user for refresh")
	}

	accessToken, refreshToken, err := srv.tokenService.IssuePair(user)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token pair during refresh", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue token pair during refresh")
	}

	if err := srv.userRepo.RotateRefreshToken(ctx, user.ID, input.RefreshToken, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenStale) {
			srv.log(ctx).Warn("Refresh failed, presented token is stale", slog.Any("userID", user.ID))

			return nil, domainerrors.ErrSessionInvalid.WrapMessage("refresh token already rotated or revoked")
		}

		return nil, errors.Wrap(err, "failed to rotate refresh token")
	}

	srv.log(ctx).Debug("Refresh token rotated", slog.Any("userID", user.ID))

	return &usecase.RefreshOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout ends the user's session by clearing the stored refresh token. Access
// tokens already issued stay valid until expiry; only refresh stops working.
func (srv *sessionService) Logout(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Logging out", slog.Any("userID", userID))

	if err := srv.userRepo.ClearRefreshToken(ctx, userID); err != nil {
		srv.log(ctx).Error("Failed to clear refresh token", slog.Any("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to clear refresh token")
	}

	publishAccountEvent(ctx, srv.log(ctx), srv.publisher, service.EventSessionRevoked, userID, "")

	return nil
}

// ChangePassword verifies the current password before replacing the stored
// hash. The active session survives the change.
func (srv *sessionService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	// Blank-after-trim passwords are rejected; the hash below still receives
	// the new password exactly as provided.
	if strings.TrimSpace(input.OldPassword) == "" || strings.TrimSpace(input.NewPassword) == "" {
		return domainerrors.ErrValidationFailed.WithDetails("old and new password are required")
	}

	user, err := srv.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrUserNotFound.WrapMessage("password change failed")
		}

		return errors.Wrap(err, "failed to load user for password change")
	}

	if !srv.hasher.Check(input.OldPassword, user.PasswordHash) {
		srv.log(ctx).Warn("Password change rejected, old password mismatch", slog.Any("userID", user.ID))

		return domainerrors.ErrInvalidCredentials.WrapMessage("old password is incorrect")
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		srv.log(ctx).Error("Failed to hash new password", slog.Any("userID", user.ID), slog.Any("error", err))

		return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash new password")
	}

	if err := srv.userRepo.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
		srv.log(ctx).Error("Failed to store new password hash", slog.Any("userID", user.ID), slog.Any("error", err))

		return errors.Wrap(err, "failed to store new password hash")
	}

	publishAccountEvent(ctx, srv.log(ctx), srv.publisher, service.EventUserPasswordChanged, user.ID, user.Username)

	srv.log(ctx).Info("Password changed", slog.Any("userID", user.ID))

	return nil
}
