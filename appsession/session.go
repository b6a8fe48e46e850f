package appsession

import "time"

// Session is the platform's own session material kept after a successful
// sign-in. The enrichment call authenticates with this token when present.
type Session struct {
	// Core identity
	UserID string
	Email  string
	Name   string

	// Tokens (refresh is essential, access is convenience)
	RefreshToken string
	AccessToken  string

	// Session management
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Repo stores the current app session. The app holds at most one session at
// a time, so this is a single-slot store like the pending-auth state.
type Repo interface {
	Set(session Session) error
	// Current returns the active session, or nil when signed out.
	Current() (*Session, error)
	Clear() error
}
