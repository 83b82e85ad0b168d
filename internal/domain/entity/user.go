// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core identity entity of the platform. Username and email are
// stored lower-cased and trimmed; the persistence layer enforces their
// uniqueness. PasswordHash and RefreshToken are never serialized and must be
// stripped via Sanitized before the entity leaves the core.
type User struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullname"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	PasswordHash  string    `json:"-"`
	RefreshToken  string    `json:"-"` // the single currently-valid refresh token; empty means no active session
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Sanitized returns a copy of the user with credential material cleared.
// Handlers and the request guard only ever expose sanitized users.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}

	clone := *u
	clone.PasswordHash = ""
	clone.RefreshToken = ""

	return &clone
}

// HasActiveSession reports whether the user currently holds a valid session.
func (u *User) HasActiveSession() bool {
	return u.RefreshToken != ""
}
