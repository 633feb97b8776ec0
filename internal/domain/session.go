package domain

import (
	"context"
	"time"
)

// Session is a read-only snapshot of the signed-in operator. The core
// only needs a display name for report branding; everything else is
// carried for the review pages.
type Session struct {
	UserID     string    `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	SignedInAt time.Time `json:"signedInAt"`
}

// SessionStore owns the operator session lifecycle: load-on-start,
// replace-on-sign-in, clear-on-sign-out. Consumers read snapshots and
// never hold the store itself.
type SessionStore interface {
	// Load restores the persisted session, if any. Called once at start.
	Load(ctx context.Context) error

	// SignIn replaces the current session wholesale.
	SignIn(ctx context.Context, name, email, role string) (*Session, error)

	// SignOut clears the current session.
	SignOut(ctx context.Context) error

	// Current returns a copy of the active session, or nil when signed out.
	Current() *Session
}
