// Package handler contains the HTTP handlers for the application.
package handler

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cliphub/config"
	"cliphub/internal/delivery/http/response"
	"cliphub/internal/domain/constants"
	domainerrors "cliphub/internal/domain/errors"
	"cliphub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	defaultAccessCookieTTL  = 15 * time.Minute
	defaultRefreshCookieTTL = 7 * 24 * time.Hour
)

// AuthHandler holds dependencies for registration and session handlers.
type AuthHandler struct {
	userUC    usecase.UserUsecase
	sessionUC usecase.SessionUsecase
	logger    *slog.Logger

	accessCookieTTL  time.Duration
	refreshCookieTTL time.Duration
	secureCookies    bool
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx. Cookie
// lifetimes are resolved here with the same defaults the token service uses,
// so a config without an auth section still serves logins.
func NewAuthHandler(userUC usecase.UserUsecase, sessionUC usecase.SessionUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	handler := &AuthHandler{
		userUC:           userUC,
		sessionUC:        sessionUC,
		logger:           logger,
		accessCookieTTL:  defaultAccessCookieTTL,
		refreshCookieTTL: defaultRefreshCookieTTL,
	}
	if cfg.Auth != nil {
		if cfg.Auth.AccessTokenTTL > 0 {
			handler.accessCookieTTL = cfg.Auth.AccessTokenTTL
		}
		if cfg.Auth.RefreshTokenTTL > 0 {
			handler.refreshCookieTTL = cfg.Auth.RefreshTokenTTL
		}
		handler.secureCookies = cfg.Auth.SecureCookies
	}

	return handler
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// Register handles the multipart account registration request. Uploaded files
// are spooled to disk first; the registration workflow moves them to the asset
// store and cleans them up.
func (h *AuthHandler) Register(c echo.Context) error {
	input := &usecase.RegisterInput{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		FullName: c.FormValue("fullname"),
		Password: c.FormValue("password"),
	}

	// Spooled files are normally consumed by the upload step; the deferred
	// cleanup removes whatever is left when spooling or the workflow bails
	// out earlier. Registered before the first spool so a failure on the
	// second file still cleans up the first.
	var spooled []string
	defer func() { removeSpooled(spooled...) }()

	avatarPath, err := h.spoolFormFile(c, "avatar")
	if err != nil {
		return err
	}
	spooled = append(spooled, avatarPath)

	coverPath, err := h.spoolFormFile(c, "coverImage")
	if err != nil {
		return err
	}
	spooled = append(spooled, coverPath)

	input.AvatarPath = avatarPath
	input.CoverImagePath = coverPath

	output, err := h.userUC.Register(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output.User, "User registered successfully")
}

// Login handles the credential login request and sets session cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.sessionUC.Login(c.Request().Context(), &usecase.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, map[string]any{
		"user":         output.User,
		"accessToken":  output.AccessToken,
		"refreshToken": output.RefreshToken,
	}, "Login successful")
}

// Refresh rotates the refresh token. The token is read from the refreshToken
// cookie first, then from the JSON body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := ""
	if cookie, err := c.Cookie(constants.CookieRefreshToken); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := c.Bind(&req); err != nil {
			return response.BindingError(c, "INVALID_INPUT", "Invalid refresh input")
		}
		token = req.RefreshToken
	}

	output, err := h.sessionUC.Refresh(c.Request().Context(), &usecase.RefreshInput{RefreshToken: token})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setSessionCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, map[string]string{
		"accessToken":  output.AccessToken,
		"refreshToken": output.RefreshToken,
	}, "Token refreshed successfully")
}

// Logout ends the authenticated user's session and clears session cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	if err := h.sessionUC.Logout(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	h.clearSessionCookies(c)

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// ChangePassword replaces the authenticated user's password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password change input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.sessionUC.ChangePassword(c.Request().Context(), &usecase.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password changed successfully")
}

// spoolFormFile copies an uploaded form file to a temp file and returns its
// path. A missing file is not an error here; required files are enforced by
// the registration workflow.
func (h *AuthHandler) spoolFormFile(c echo.Context, field string) (string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil
	}

	path, err := spoolToTemp(fileHeader)
	if err != nil {
		h.logger.Error("Failed to spool uploaded file", slog.String("field", field), slog.Any("error", err))

		return "", domainerrors.ErrUploadFailed.WithDetails("failed to store uploaded " + field)
	}

	return path, nil
}

func spoolToTemp(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", errors.Wrap(err, "failed to open uploaded file")
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "cliphub-upload-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		return "", errors.Wrap(err, "failed to create spool file")
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		os.Remove(tmp.Name())

		return "", errors.Wrap(err, "failed to write spool file")
	}

	return tmp.Name(), nil
}

func removeSpooled(paths ...string) {
	for _, path := range paths {
		if path != "" {
			os.Remove(path)
		}
	}
}

// currentUserID reads the authenticated user's ID set by the auth middleware.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get("userID").(uuid.UUID)
	if !ok {
		return uuid.Nil, domainerrors.ErrUnauthorized.WithDetails("authentication required")
	}

	return userID, nil
}

func (h *AuthHandler) setSessionCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(h.sessionCookie(constants.CookieAccessToken, accessToken, h.accessCookieTTL))
	c.SetCookie(h.sessionCookie(constants.CookieRefreshToken, refreshToken, h.refreshCookieTTL))
}

func (h *AuthHandler) clearSessionCookies(c echo.Context) {
	c.SetCookie(h.sessionCookie(constants.CookieAccessToken, "", -time.Hour))
	c.SetCookie(h.sessionCookie(constants.CookieRefreshToken, "", -time.Hour))
}

func (h *AuthHandler) sessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
