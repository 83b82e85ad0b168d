package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Account lifecycle event types published to downstream services
// (feed, notifications, analytics).
const (
	EventUserRegistered      = "user.registered"
	EventUserPasswordChanged = "user.password_changed"
	EventSessionRevoked      = "session.revoked"
)

// AccountEvent describes a change to a user account or session.
type AccountEvent struct {
	Type       string    `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	RequestID  string    `json:"request_id,omitempty"`
}

// EventPublisher publishes account lifecycle events. Publishing is
// best-effort: callers log failures and never let them mask the primary
// operation's result.
type EventPublisher interface {
	PublishAccountEvent(ctx context.Context, event *AccountEvent) error

	// Close releases publisher resources.
	Close() error
}
