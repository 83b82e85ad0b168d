package handler

import (
	"log/slog"
	"net/http"

	"cliphub/internal/delivery/http/response"
	"cliphub/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for profile-related handlers.
type UserHandler struct {
	profileUC usecase.ProfileUsecase
	logger    *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(profileUC usecase.ProfileUsecase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		profileUC: profileUC,
		logger:    logger,
	}
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := h.profileUC.GetCurrentUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user, "Current user retrieved successfully")
}

// ProfileQR renders a PNG QR code linking to a user's public profile page.
func (h *UserHandler) ProfileQR(c echo.Context) error {
	png, err := h.profileUC.GenerateProfileQR(c.Request().Context(), c.Param("username"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
