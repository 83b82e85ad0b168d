package service

import (
	"time"

	"cliphub/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the claim set carried by short-lived access tokens.
// Access tokens are stateless: validity is determined purely by signature
// and expiry, never by a server-side store.
type AccessClaims struct {
	UserID   uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	FullName string    `json:"fullname"`
	jwt.RegisteredClaims
}

// RefreshClaims is the minimal claim set carried by long-lived refresh tokens.
type RefreshClaims struct {
	UserID uuid.UUID `json:"id"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for generating and validating the two
// token classes. The service itself is stateless; persisting the refresh
// token on the user record is the caller's responsibility.
type TokenService interface {
	// IssuePair creates a new access/refresh token pair for the user,
	// signed with distinct secrets and distinct expiries.
	IssuePair(user *entity.User) (accessToken string, refreshToken string, err error)

	// VerifyAccess checks signature and expiry of an access token and
	// returns its claims. It never consults the store.
	VerifyAccess(tokenString string) (*AccessClaims, error)

	// VerifyRefresh checks signature and expiry of a refresh token and
	// returns its claims.
	VerifyRefresh(tokenString string) (*RefreshClaims, error)

	// RefreshTokenTTL returns the configured refresh token lifetime.
	RefreshTokenTTL() time.Duration
}
