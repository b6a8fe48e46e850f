package enrich_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aikuplatform/authbridge/enrich"
	"github.com/aikuplatform/authbridge/identity"
)

func testProfile() *identity.Profile {
	return &identity.Profile{ID: "u1", Email: "a@b.com", Name: "Jane Doe"}
}

func TestAnalyze(t *testing.T) {
	t.Run("posts profile with bearer token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)

			var got identity.Profile
			require.NoError(t, json.Unmarshal(body, &got))
			require.Equal(t, "u1", got.ID)

			_, _ = w.Write([]byte(`{"segments":["startup-founder"]}`))
		}))
		defer srv.Close()

		c := enrich.New(srv.URL)
		analysis, err := c.Analyze(context.Background(), testProfile(), "app-token")
		require.NoError(t, err)
		require.JSONEq(t, `{"segments":["startup-founder"]}`, string(analysis))
	})

	t.Run("omits authorization header without token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		c := enrich.New(srv.URL)
		_, err := c.Analyze(context.Background(), testProfile(), "")
		require.NoError(t, err)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}))
		defer srv.Close()

		c := enrich.New(srv.URL)
		_, err := c.Analyze(context.Background(), testProfile(), "app-token")
		require.Error(t, err)
		require.Contains(t, err.Error(), "502")
		require.Contains(t, err.Error(), "upstream down")
	})
}
