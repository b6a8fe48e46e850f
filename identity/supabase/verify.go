package supabase

import (
	"context"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

// tokenVerifier verifies session access tokens against the GoTrue issuer's
// published signing keys. The OIDC provider is discovered lazily on first use
// and cached for the lifetime of the client.
type tokenVerifier struct {
	issuer string

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

func newTokenVerifier(issuer string) *tokenVerifier {
	return &tokenVerifier{issuer: issuer}
}

func (v *tokenVerifier) verifyToken(ctx context.Context, rawToken string) error {
	verifier, err := v.getVerifier(ctx)
	if err != nil {
		return errors.Wrap(err, "[tokenVerifier.verifyToken] getVerifier")
	}
	if _, err := verifier.Verify(ctx, rawToken); err != nil {
		return errors.Wrap(err, "[tokenVerifier.verifyToken] Verify")
	}
	return nil
}

func (v *tokenVerifier) getVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.verifier != nil {
		return v.verifier, nil
	}

	provider, err := oidc.NewProvider(ctx, v.issuer)
	if err != nil {
		return nil, errors.Wrap(err, "[tokenVerifier.getVerifier] NewProvider")
	}

	// GoTrue access tokens carry the project audience, not an OAuth client
	// ID, so the client ID check does not apply here.
	v.verifier = provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	return v.verifier, nil
}
