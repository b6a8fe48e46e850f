// Package enrich posts the provider profile to the platform API, which
// computes a server-side analysis of the new user (matching startups,
// investor fit and similar marketplace signals). The payload is opaque to
// the auth flow and handed back to the caller as raw JSON.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/aikuplatform/authbridge/identity"
)

const defaultTimeout = 30 * time.Second

// Analyzer computes the post-sign-in profile analysis. appToken is the
// platform's own session token and may be empty for first-time users.
type Analyzer interface {
	Analyze(ctx context.Context, profile *identity.Profile, appToken string) (json.RawMessage, error)
}

// Client is the HTTP implementation of Analyzer.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option modifies the Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets an explicit timeout on the analysis call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates an enrichment client posting to the given endpoint.
func New(endpoint string, options ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

var _ Analyzer = (*Client)(nil)

// Analyze posts the profile to the analysis endpoint and returns the
// response payload verbatim.
func (c *Client) Analyze(ctx context.Context, profile *identity.Profile, appToken string) (json.RawMessage, error) {
	body, err := json.Marshal(profile)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Analyze] marshal profile")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Analyze] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if appToken != "" {
		req.Header.Set("Authorization", "Bearer "+appToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Analyze] analysis request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(fmt.Sprintf("[Client.Analyze] analysis endpoint returned %d: %s", resp.StatusCode, readErrorBody(resp.Body)))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Analyze] read body")
	}
	return json.RawMessage(payload), nil
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
