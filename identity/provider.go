package identity

import (
	"context"
	"encoding/json"
	"time"
)

// Session holds the provider session material returned by a code exchange.
type Session struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	TokenType    string    `json:"tokenType,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
	UserID       string    `json:"userId,omitempty"`
}

// Profile is the normalized identity-provider profile. Raw carries the
// provider's original payload for callers that need fields beyond the
// normalized set.
type Profile struct {
	ID        string          `json:"id"`
	Email     string          `json:"email,omitempty"`
	Name      string          `json:"name,omitempty"`
	AvatarURL string          `json:"avatarUrl,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// Provider is the capability interface the coordinator drives. It covers the
// two network steps of the callback flow plus authorization URL construction,
// so alternate identity providers can be substituted without touching the
// state-machine logic.
type Provider interface {
	// AuthCodeURL returns the provider authorization URL embedding the given
	// state parameter.
	AuthCodeURL(state string) string

	// ExchangeCode exchanges the authorization code for a session.
	ExchangeCode(ctx context.Context, code string) (*Session, error)

	// FetchProfile retrieves the provider profile for an access token.
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}
