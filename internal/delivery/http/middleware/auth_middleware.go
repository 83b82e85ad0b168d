package middleware

import (
	"strings"

	"cliphub/internal/domain/constants"
	domainerrors "cliphub/internal/domain/errors"
	"cliphub/internal/domain/repository"
	"cliphub/internal/domain/service"
	"cliphub/internal/errors"

	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID = "userID"
	ContextKeyUser   = "user"
)

// AuthMiddleware guards protected routes. It accepts the access token from
// the accessToken cookie first, then from the Authorization bearer header,
// verifies it statelessly, and attaches the sanitized user to the context.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	userRepo repository.UserRepository
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, userRepo: userRepo}
}

// Authenticate is the core middleware function that validates the JWT access token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			return domainerrors.ErrUnauthorized.WithDetails("access token missing")
		}

		claims, err := m.tokenSvc.VerifyAccess(tokenString)
		if err != nil {
			return domainerrors.ErrUnauthorized.WithDetails("invalid or expired access token")
		}

		// The token is stateless but the account behind it must still exist.
		user, err := m.userRepo.FindByID(c.Request().Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUnauthorized.WithDetails("account no longer exists")
			}

			return errors.Wrap(err, "failed to load user for access token")
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user.Sanitized())

		return next(c)
	}
}

// extractAccessToken returns the token from the accessToken cookie when
// present, otherwise from the Authorization bearer header.
func extractAccessToken(c echo.Context) string {
	if cookie, err := c.Cookie(constants.CookieAccessToken); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}

	return strings.TrimSpace(token)
}
