package authflow

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/aikuplatform/authbridge/authstate"
)

// The state parameter travels through the provider round trip as
// "<token>|<platform>" so the originating platform survives without any
// server-side storage on the redirector. The token is base64url and can
// never contain the separator.
const stateSeparator = "|"

// EncodeState builds the composite state parameter.
func EncodeState(token string, platform authstate.Platform) string {
	return token + stateSeparator + string(platform)
}

// ParseState splits a composite state parameter into its token and platform
// parts. The token portion is compared verbatim against the stored record;
// no normalization is applied.
func ParseState(state string) (string, authstate.Platform, error) {
	parts := strings.SplitN(state, stateSeparator, 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", errors.Errorf("[ParseState] malformed state parameter %q", state)
	}

	platform := authstate.Platform(parts[1])
	if !platform.Valid() {
		return "", "", errors.Errorf("[ParseState] unknown platform tag %q", parts[1])
	}
	return parts[0], platform, nil
}
