// Package authflow drives the LinkedIn sign-in handshake: state token
// generation and persistence, authorization URL construction, callback
// validation, code-for-session exchange, profile fetch and enrichment, and
// one-shot resolution of the pending attempt.
package authflow

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/aikuplatform/authbridge/appsession"
	"github.com/aikuplatform/authbridge/authstate"
	"github.com/aikuplatform/authbridge/enrich"
	"github.com/aikuplatform/authbridge/identity"
	"github.com/aikuplatform/authbridge/internal/utils"
)

const (
	// StateTTL bounds how long a callback may arrive after BeginSignIn.
	StateTTL = 15 * time.Minute

	stateTokenBytes = 32
)

// EnrichmentPolicy decides whether an enrichment failure fails the whole
// sign-in or resolves it with partial data.
type EnrichmentPolicy int

const (
	// EnrichmentRequired treats an analysis failure as fatal to the
	// callback. This matches the platform's historical behavior.
	EnrichmentRequired EnrichmentPolicy = iota
	// EnrichmentBestEffort resolves the sign-in on profile fetch success and
	// returns a nil analysis when the enrichment call fails.
	EnrichmentBestEffort
)

// Coordinator is the single owner of the pending-auth state slot and the
// pending attempt. One Coordinator serves a process; construct it explicitly
// and hand it to both the sign-in call site and the deep-link handler.
type Coordinator struct {
	store    authstate.Store
	provider identity.Provider
	analyzer enrich.Analyzer // optional
	sessions appsession.Repo // optional
	policy   EnrichmentPolicy
	ttl      time.Duration
	nowTime  func() time.Time
	logger   zerolog.Logger

	mu      sync.Mutex
	pending *Attempt
}

// Option defines a function type to modify the Coordinator instance.
type Option func(*Coordinator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Coordinator) {
		c.nowTime = nowFunc
	}
}

// WithTTL overrides the pending-state TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Coordinator) {
		c.ttl = ttl
	}
}

// WithAnalyzer enables the post-profile enrichment step.
func WithAnalyzer(analyzer enrich.Analyzer) Option {
	return func(c *Coordinator) {
		c.analyzer = analyzer
	}
}

// WithSessionRepo records the resolved session in the app session store and
// lets the enrichment call authenticate with the current app token.
func WithSessionRepo(sessions appsession.Repo) Option {
	return func(c *Coordinator) {
		c.sessions = sessions
	}
}

// WithEnrichmentPolicy sets how an enrichment failure is handled.
func WithEnrichmentPolicy(policy EnrichmentPolicy) Option {
	return func(c *Coordinator) {
		c.policy = policy
	}
}

// WithLogger sets the coordinator logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// New initializes a Coordinator with its required dependencies. Optional
// collaborators and tuning are provided via options.
func New(store authstate.Store, provider identity.Provider, options ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("[authflow.New] state store is required")
	}
	if provider == nil {
		return nil, errors.New("[authflow.New] identity provider is required")
	}

	c := &Coordinator{
		store:    store,
		provider: provider,
		policy:   EnrichmentRequired,
		ttl:      StateTTL,
		nowTime:  time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// BeginSignIn starts a new sign-in attempt for the given platform. It
// persists the pending state before returning, so a callback arriving
// immediately after is guaranteed to observe it. Any unresolved prior
// attempt is settled with ErrAttemptSuperseded rather than abandoned.
func (c *Coordinator) BeginSignIn(platform authstate.Platform) (string, error) {
	if !platform.Valid() {
		return "", errors.Errorf("[BeginSignIn] unknown platform %q", platform)
	}

	token := utils.RandomToken(stateTokenBytes)
	record := authstate.PendingState{
		State:    token,
		IssuedAt: c.nowTime(),
		Platform: platform,
	}
	if err := c.store.Save(record); err != nil {
		return "", errors.Wrap(err, "[BeginSignIn] store.Save")
	}

	authURL := c.provider.AuthCodeURL(EncodeState(token, platform))

	attempt := newAttempt()
	c.mu.Lock()
	prior := c.pending
	c.pending = attempt
	c.mu.Unlock()

	if prior != nil {
		prior.settle(nil, errors.Wrap(ErrAttemptSuperseded, "a newer sign-in attempt was started"))
		c.logger.Warn().Str("attempt", prior.ID.String()).Msg("superseded unresolved sign-in attempt")
	}

	c.logger.Info().
		Str("attempt", attempt.ID.String()).
		Str("platform", string(platform)).
		Msg("sign-in started")

	return authURL, nil
}

// SignIn returns the pending attempt to await, creating one if none exists.
// It never starts a flow itself; URL generation stays with BeginSignIn so a
// caller can hand the URL to a browser and await the result elsewhere.
func (c *Coordinator) SignIn() *Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		c.pending = newAttempt()
	}
	return c.pending
}

// HandleCallback is the programmatic entry point for the deep-link handler.
// It validates the callback against the stored pending state, exchanges the
// code for a session, fetches the profile, and runs the enrichment step.
// Whatever the outcome, the stored state is cleared and the pending attempt
// is settled, so the coordinator is immediately ready for a new BeginSignIn.
func (c *Coordinator) HandleCallback(ctx context.Context, code, state string) (*Result, error) {
	result, err := c.processCallback(ctx, code, state)

	if clearErr := c.store.Clear(); clearErr != nil {
		c.logger.Error().Err(clearErr).Msg("failed to clear pending auth state")
	}

	c.settlePending(result, err)

	if err != nil {
		c.logger.Warn().Err(err).Msg("sign-in callback failed")
		return nil, err
	}
	c.logger.Info().Str("user", result.Profile.ID).Msg("sign-in completed")
	return result, nil
}

// HandleCallbackError consumes a provider-side failure forwarded on the deep
// link (the error=<reason> variant). It clears the pending state and rejects
// the pending attempt.
func (c *Coordinator) HandleCallbackError(reason string) error {
	err := errors.Wrap(ErrExchangeFailed, reason)

	if clearErr := c.store.Clear(); clearErr != nil {
		c.logger.Error().Err(clearErr).Msg("failed to clear pending auth state")
	}
	c.settlePending(nil, err)

	c.logger.Warn().Str("reason", reason).Msg("provider reported authorization error")
	return err
}

func (c *Coordinator) processCallback(ctx context.Context, code, state string) (*Result, error) {
	token, _, err := ParseState(state)
	if err != nil {
		return nil, errors.Wrap(ErrStateMismatch, err.Error())
	}

	stored, err := c.store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "[HandleCallback] store.Load")
	}
	if stored == nil {
		return nil, errors.Wrap(ErrNoPendingState, "callback without a stored sign-in attempt")
	}

	if age := c.nowTime().Sub(stored.IssuedAt); age > c.ttl {
		return nil, errors.Wrapf(ErrStateExpired, "state issued %s ago", age)
	}

	// Exact string equality; no normalization.
	if token != stored.State {
		return nil, errors.Wrap(ErrStateMismatch, "callback state does not match stored state")
	}

	if code == "" {
		return nil, errors.Wrap(ErrExchangeFailed, "authorization code missing")
	}

	session, err := c.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, errors.Wrap(ErrExchangeFailed, err.Error())
	}

	profile, err := c.provider.FetchProfile(ctx, session.AccessToken)
	if err != nil {
		return nil, errors.Wrap(ErrProfileFetchFailed, err.Error())
	}

	result := &Result{Session: session, Profile: profile}

	if c.analyzer != nil {
		analysis, err := c.analyzer.Analyze(ctx, profile, c.currentAppToken())
		switch {
		case err == nil:
			result.Analysis = analysis
		case c.policy == EnrichmentRequired:
			return nil, errors.Wrap(ErrAnalysisFailed, err.Error())
		default:
			c.logger.Warn().Err(err).Msg("profile analysis failed, resolving without it")
		}
	}

	c.recordAppSession(session, profile)

	return result, nil
}

// settlePending resolves or rejects the outstanding attempt and empties the
// slot so a subsequent sign-in creates a fresh one.
func (c *Coordinator) settlePending(result *Result, err error) {
	c.mu.Lock()
	attempt := c.pending
	c.pending = nil
	c.mu.Unlock()

	if attempt != nil {
		attempt.settle(result, err)
	}
}

func (c *Coordinator) currentAppToken() string {
	if c.sessions == nil {
		return ""
	}
	session, err := c.sessions.Current()
	if err != nil || session == nil {
		return ""
	}
	return session.AccessToken
}

func (c *Coordinator) recordAppSession(session *identity.Session, profile *identity.Profile) {
	if c.sessions == nil {
		return
	}

	userID := session.UserID
	if userID == "" {
		userID = profile.ID
	}

	err := c.sessions.Set(appsession.Session{
		UserID:       userID,
		Email:        profile.Email,
		Name:         profile.Name,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
		CreatedAt:    c.nowTime(),
	})
	if err != nil {
		// The sign-in already succeeded; a session-store hiccup should not
		// unwind it.
		c.logger.Error().Err(err).Msg("failed to record app session")
	}
}
