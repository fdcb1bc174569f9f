// Package session implements cookie- and token-based sessions for the care
// dashboard: sign-in, per-request resolution, revocation, and a change feed
// that lets open pages react when their session disappears.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careconnect/careconnect/internal/domain/identity"
)

// ErrNoSession means the presented token does not resolve to a live
// session. Callers treat it exactly like an absent token.
var ErrNoSession = errors.New("no active session")

// Session is a resolved sign-in. Token is the opaque client-held secret and
// is never serialized back out except at sign-in time.
type Session struct {
	Token     string            `json:"-"`
	UserID    uuid.UUID         `json:"user_id"`
	Profile   *identity.Profile `json:"profile"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Provider resolves and mutates sessions against the backing store.
type Provider interface {
	// SignIn verifies credentials and mints a new session.
	SignIn(ctx context.Context, email, password string) (*Session, error)
	// Current resolves a token to its live session. Absent or expired
	// tokens return ErrNoSession; store failures return their own error.
	Current(ctx context.Context, token string) (*Session, error)
	// SignOut revokes the session for a token. Revoking an already-dead
	// token is not an error.
	SignOut(ctx context.Context, token string) error
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a context carrying the resolved session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext retrieves the session placed on the request context by the
// guard. It is nil on unguarded routes.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// ProfileFromContext is a convenience for handlers that only need the
// signed-in profile.
func ProfileFromContext(ctx context.Context) *identity.Profile {
	if s := FromContext(ctx); s != nil {
		return s.Profile
	}
	return nil
}

// FromEcho retrieves the session from an echo context.
func FromEcho(c echo.Context) *Session {
	return FromContext(c.Request().Context())
}
