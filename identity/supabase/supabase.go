// Package supabase implements the identity.Provider capability against a
// Supabase (GoTrue) project configured with the linkedin_oidc provider.
// LinkedIn client registration lives in the Supabase dashboard; this client
// only needs the project URL and the anon key.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/aikuplatform/authbridge/identity"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultProvider = "linkedin_oidc"
	defaultScopes   = "openid profile email"
)

// Client talks to the GoTrue auth endpoints of a Supabase project.
type Client struct {
	baseURL     string // e.g. "https://xyzcompany.supabase.co"
	anonKey     string
	redirectURL string
	provider    string
	scopes      string
	httpClient  *http.Client

	verify *tokenVerifier // nil unless WithTokenVerification is set
}

// Option modifies the Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets an explicit timeout on the exchange and profile calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithProvider overrides the GoTrue provider name (default linkedin_oidc).
func WithProvider(name string) Option {
	return func(c *Client) {
		c.provider = name
	}
}

// WithScopes overrides the space-delimited scope list.
func WithScopes(scopes string) Option {
	return func(c *Client) {
		c.scopes = scopes
	}
}

// WithTokenVerification enables OIDC signature verification of the session
// access token against the given issuer (normally "<project url>/auth/v1").
func WithTokenVerification(issuer string) Option {
	return func(c *Client) {
		c.verify = newTokenVerifier(issuer)
	}
}

// New creates a Supabase identity provider client. redirectURL is the
// callback-redirector endpoint registered with Supabase as an allowed
// redirect target.
func New(baseURL, anonKey, redirectURL string, options ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		anonKey:     anonKey,
		redirectURL: redirectURL,
		provider:    defaultProvider,
		scopes:      defaultScopes,
		httpClient:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

var _ identity.Provider = (*Client)(nil)

// AuthCodeURL builds the GoTrue authorization URL for the consent screen.
// GoTrue identifies the application by the redirect_to target rather than a
// client_id query parameter, so the oauth2 config carries the anon key there
// only for completeness.
func (c *Client) AuthCodeURL(state string) string {
	conf := &oauth2.Config{
		ClientID: c.anonKey,
		Endpoint: oauth2.Endpoint{
			AuthURL: c.baseURL + "/auth/v1/authorize",
		},
		Scopes: strings.Fields(c.scopes),
	}
	return conf.AuthCodeURL(state,
		oauth2.SetAuthURLParam("provider", c.provider),
		oauth2.SetAuthURLParam("redirect_to", c.redirectURL),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// gotrueSession is the session payload returned by the GoTrue token endpoint.
type gotrueSession struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    int64       `json:"expires_at"`
	User         *gotrueUser `json:"user"`
}

type gotrueUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Metadata struct {
		FullName  string `json:"full_name"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

// ExchangeCode exchanges the authorization code for a GoTrue session.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*identity.Session, error) {
	body, err := json.Marshal(map[string]string{"auth_code": code})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ExchangeCode] marshal request")
	}

	url := c.baseURL + "/auth/v1/token?grant_type=authorization_code"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ExchangeCode] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.ExchangeCode] token request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(fmt.Sprintf("[Client.ExchangeCode] token endpoint returned %d: %s", resp.StatusCode, readErrorBody(resp.Body)))
	}

	var session gotrueSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, errors.Wrap(err, "[Client.ExchangeCode] decode session")
	}
	if session.AccessToken == "" {
		return nil, errors.New("[Client.ExchangeCode] session response missing access token")
	}

	if c.verify != nil {
		if err := c.verify.verifyToken(ctx, session.AccessToken); err != nil {
			return nil, errors.Wrap(err, "[Client.ExchangeCode] access token verification")
		}
	}

	return c.toSession(&session), nil
}

// FetchProfile retrieves the authenticated user from the GoTrue user endpoint.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*identity.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile] build request")
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile] user request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(fmt.Sprintf("[Client.FetchProfile] user endpoint returned %d: %s", resp.StatusCode, readErrorBody(resp.Body)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile] read body")
	}

	var user gotrueUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, errors.Wrap(err, "[Client.FetchProfile] decode user")
	}
	if user.ID == "" {
		return nil, errors.New("[Client.FetchProfile] user response missing id")
	}

	name := user.Metadata.FullName
	if name == "" {
		name = user.Metadata.Name
	}

	return &identity.Profile{
		ID:        user.ID,
		Email:     user.Email,
		Name:      name,
		AvatarURL: user.Metadata.AvatarURL,
		Raw:       raw,
	}, nil
}

func (c *Client) toSession(gs *gotrueSession) *identity.Session {
	session := &identity.Session{
		AccessToken:  gs.AccessToken,
		RefreshToken: gs.RefreshToken,
		TokenType:    gs.TokenType,
	}

	switch {
	case gs.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(gs.ExpiresAt, 0)
	case gs.ExpiresIn > 0:
		session.ExpiresAt = time.Now().Add(time.Duration(gs.ExpiresIn) * time.Second)
	}

	if gs.User != nil {
		session.UserID = gs.User.ID
	}

	// The access token is a JWT; fall back to its claims for anything the
	// session envelope did not carry.
	claims, err := parseSessionClaims(gs.AccessToken)
	if err == nil {
		if session.UserID == "" {
			session.UserID = claims.Subject
		}
		if session.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
			session.ExpiresAt = claims.ExpiresAt.Time
		}
	}

	return session
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
