package supabase

import (
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// sessionClaims are the GoTrue access-token claims we care about.
type sessionClaims struct {
	jwtlib.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// parseSessionClaims extracts claims from the access token without verifying
// the signature. Signature verification is a separate, optional step
// (WithTokenVerification); these claims are only used to backfill session
// fields, never to make trust decisions.
func parseSessionClaims(rawToken string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims)
	if err != nil {
		return nil, errors.Wrap(err, "[parseSessionClaims] ParseUnverified")
	}
	return claims, nil
}
