package authflow

import "github.com/pkg/errors"

// Failure taxonomy for the callback flow. Callers match with errors.Is; the
// wrapped message carries the upstream detail.
var (
	// ErrNoPendingState means the callback arrived with no matching local
	// state: the app restarted mid-flow, or the callback is a replay.
	ErrNoPendingState = errors.New("no pending authentication state")

	// ErrStateExpired means the pending state outlived its TTL.
	ErrStateExpired = errors.New("authentication state expired")

	// ErrStateMismatch means the anti-forgery check failed: a possible CSRF
	// attempt, or a stale or duplicate callback.
	ErrStateMismatch = errors.New("authentication state mismatch")

	// ErrExchangeFailed means the identity provider rejected or could not
	// process the authorization code.
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrProfileFetchFailed means the provider profile endpoint was
	// unreachable or returned an error.
	ErrProfileFetchFailed = errors.New("provider profile fetch failed")

	// ErrAnalysisFailed means the internal enrichment call failed.
	ErrAnalysisFailed = errors.New("profile analysis failed")

	// ErrAttemptSuperseded settles a pending attempt that was replaced by a
	// newer BeginSignIn before its callback arrived.
	ErrAttemptSuperseded = errors.New("authentication attempt superseded")
)
