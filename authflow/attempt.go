package authflow

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/aikuplatform/authbridge/identity"
)

// Result is the outcome of a successful sign-in: the provider session, the
// normalized profile, and the optional server-side analysis payload.
type Result struct {
	Session  *identity.Session
	Profile  *identity.Profile
	Analysis json.RawMessage
}

// Attempt is the pending result of one sign-in flow. It settles exactly
// once: with a Result when the callback succeeds, or with an error from the
// flow taxonomy when it fails or is superseded by a newer attempt.
type Attempt struct {
	// ID distinguishes attempts across the supersede path.
	ID uuid.UUID

	once   sync.Once
	done   chan struct{}
	result *Result
	err    error
}

func newAttempt() *Attempt {
	return &Attempt{
		ID:   uuid.New(),
		done: make(chan struct{}),
	}
}

func (a *Attempt) settle(result *Result, err error) {
	a.once.Do(func() {
		a.result = result
		a.err = err
		close(a.done)
	})
}

// Done is closed when the attempt has settled.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the attempt settles or ctx is cancelled.
func (a *Attempt) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-a.done:
		return a.result, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
