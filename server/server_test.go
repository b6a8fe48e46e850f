package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aikuplatform/authbridge/authflow"
	"github.com/aikuplatform/authbridge/authstate"
	"github.com/aikuplatform/authbridge/identity"
	fakeprovider "github.com/aikuplatform/authbridge/identity/providerfakes"
	"github.com/aikuplatform/authbridge/internal/config"
	"github.com/aikuplatform/authbridge/server"
)

func newTestServer(t *testing.T) (*server.Server, *fakeprovider.FakeProvider) {
	t.Helper()

	provider := fakeprovider.NewFakeProvider()
	s, err := server.New(config.New(), provider)
	require.NoError(t, err)
	return s, provider
}

func newWebTestServer(t *testing.T) (*server.Server, *fakeprovider.FakeProvider) {
	t.Helper()

	provider := fakeprovider.NewFakeProvider()
	coordinator, err := authflow.New(authstate.NewMemoryStore(), provider)
	require.NoError(t, err)

	s, err := server.New(config.New(), provider, server.WithCoordinator(coordinator))
	require.NoError(t, err)
	return s, provider
}

func get(t *testing.T, s *server.Server, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresProvider(t *testing.T) {
	_, err := server.New(config.New(), nil)
	require.Error(t, err)
}

func TestCallbackHandler(t *testing.T) {
	t.Run("mobile callback redirects to deep link with code and state", func(t *testing.T) {
		s, _ := newTestServer(t)

		rec := get(t, s, "/auth/linkedin/callback?code=auth-code-xyz&state=abc123%7Cmobile")
		require.Equal(t, http.StatusFound, rec.Code)

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "aiku", location.Scheme)
		require.Equal(t, "auth", location.Host)
		require.Equal(t, "/callback", location.Path)
		require.Equal(t, "auth-code-xyz", location.Query().Get("code"))

		// The composite state survives the round trip unchanged.
		require.Equal(t, "abc123|mobile", location.Query().Get("state"))
		token, platform, err := authflow.ParseState(location.Query().Get("state"))
		require.NoError(t, err)
		require.Equal(t, "abc123", token)
		require.Equal(t, authstate.PlatformMobile, platform)
	})

	t.Run("provider error is forwarded on the error deep link", func(t *testing.T) {
		s, _ := newTestServer(t)

		rec := get(t, s, "/auth/linkedin/callback?error=access_denied&error_description=user+cancelled")
		require.Equal(t, http.StatusFound, rec.Code)

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(location.Scheme, "aiku"))
		require.Equal(t, "access_denied", location.Query().Get("error"))
		require.Equal(t, "user cancelled", location.Query().Get("error_description"))
		require.Empty(t, location.Query().Get("code"))
	})

	t.Run("missing code is a bad request", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := get(t, s, "/auth/linkedin/callback?state=abc123%7Cmobile")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing state is a bad request", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := get(t, s, "/auth/linkedin/callback?code=auth-code-xyz")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed state is a bad request", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := get(t, s, "/auth/linkedin/callback?code=auth-code-xyz&state=no-separator")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("web flows are not exchanged without a coordinator", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := get(t, s, "/auth/linkedin/callback?code=auth-code-xyz&state=abc123%7Cweb")
		require.Equal(t, http.StatusNotImplemented, rec.Code)
	})
}

func TestWebSignInCompletion(t *testing.T) {
	t.Run("web callback is exchanged server-side", func(t *testing.T) {
		s, provider := newWebTestServer(t)
		provider.Session = &identity.Session{AccessToken: "provider-access", UserID: "user-1"}
		provider.Profile = &identity.Profile{ID: "user-1", Email: "founder@example.com", Name: "Sam Founder"}

		begin := get(t, s, "/auth/linkedin?from=web")
		require.Equal(t, http.StatusFound, begin.Code)

		beginURL, err := url.Parse(begin.Header().Get("Location"))
		require.NoError(t, err)
		state := beginURL.Query().Get("state")
		require.NotEmpty(t, state)

		rec := get(t, s, "/auth/linkedin/callback?code=web-code&state="+url.QueryEscape(state))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, []string{"web-code"}, provider.ExchangedCodes)

		var resp struct {
			UserID string `json:"userId"`
			Email  string `json:"email"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "user-1", resp.UserID)
		require.Equal(t, "founder@example.com", resp.Email)
	})

	t.Run("forged state is rejected without an exchange", func(t *testing.T) {
		s, provider := newWebTestServer(t)

		begin := get(t, s, "/auth/linkedin?from=web")
		require.Equal(t, http.StatusFound, begin.Code)

		rec := get(t, s, "/auth/linkedin/callback?code=web-code&state=forged-token%7Cweb")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Empty(t, provider.ExchangedCodes)
	})

	t.Run("web callback without a begun flow is rejected", func(t *testing.T) {
		s, _ := newWebTestServer(t)
		rec := get(t, s, "/auth/linkedin/callback?code=web-code&state=abc123%7Cweb")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestBeginAuthHandler(t *testing.T) {
	t.Run("redirects to the provider with a mobile state tag", func(t *testing.T) {
		s, _ := newTestServer(t)

		rec := get(t, s, "/auth/linkedin?from=mobile")
		require.Equal(t, http.StatusFound, rec.Code)

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)

		_, platform, err := authflow.ParseState(location.Query().Get("state"))
		require.NoError(t, err)
		require.Equal(t, authstate.PlatformMobile, platform)
	})

	t.Run("defaults to the web platform", func(t *testing.T) {
		s, _ := newTestServer(t)

		rec := get(t, s, "/auth/linkedin")
		require.Equal(t, http.StatusFound, rec.Code)

		location, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)

		_, platform, err := authflow.ParseState(location.Query().Get("state"))
		require.NoError(t, err)
		require.Equal(t, authstate.PlatformWeb, platform)
	})

	t.Run("states differ across requests", func(t *testing.T) {
		s, _ := newTestServer(t)

		first, err := url.Parse(get(t, s, "/auth/linkedin").Header().Get("Location"))
		require.NoError(t, err)
		second, err := url.Parse(get(t, s, "/auth/linkedin").Header().Get("Location"))
		require.NoError(t, err)
		require.NotEqual(t, first.Query().Get("state"), second.Query().Get("state"))
	})

	t.Run("unknown platform is a bad request", func(t *testing.T) {
		s, _ := newTestServer(t)
		rec := get(t, s, "/auth/linkedin?from=desktop")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
}
