package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/aikuplatform/authbridge/authflow"
	"github.com/aikuplatform/authbridge/authstate"
	"github.com/aikuplatform/authbridge/identity"
	"github.com/aikuplatform/authbridge/internal/utils"
)

const beginStateTokenBytes = 32

// BeginAuthHandler starts a provider consent flow for browser-initiated
// logins: it mints a composite state for the requesting platform and
// redirects to the provider authorization URL. Mobile clients normally
// construct the URL locally through their coordinator instead, so their own
// stored state token makes the round trip.
func (s *Server) BeginAuthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		platform := authstate.Platform(r.URL.Query().Get("from"))
		if platform == "" {
			platform = authstate.PlatformWeb
		}
		if !platform.Valid() {
			http.Error(w, "unknown platform", http.StatusBadRequest)
			return
		}

		var authURL string
		if s.coordinator != nil && platform == authstate.PlatformWeb {
			// Web flows complete server-side, so the coordinator must persist
			// the pending state for the callback to validate against.
			url, err := s.coordinator.BeginSignIn(platform)
			if err != nil {
				log.Error().Err(err).Msg("failed to begin web sign-in")
				http.Error(w, "could not start sign-in", http.StatusInternalServerError)
				return
			}
			authURL = url
		} else {
			authURL = s.provider.AuthCodeURL(authflow.EncodeState(utils.RandomToken(beginStateTokenBytes), platform))
		}

		log.Info().Str("platform", string(platform)).Msg("starting provider consent flow")
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// CallbackHandler receives the provider's authorization response and
// forwards it into the mobile app via a deep link. The composite state is
// passed through unchanged so the app coordinator can perform its own
// anti-forgery match; nothing is exchanged or stored here.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse form to support both GET (query params) and POST (form_post
		// response mode); r.FormValue works for both.
		code := r.FormValue("code")
		state := r.FormValue("state")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		// Provider-side failures are forwarded to the app on the error
		// variant of the deep link.
		if errorParam != "" {
			log.Warn().Str("error", errorParam).Str("description", errorDesc).Msg("provider returned authorization error")

			params := url.Values{"error": {errorParam}}
			if errorDesc != "" {
				params.Set("error_description", errorDesc)
			}
			http.Redirect(w, r, deepLinkURL(s.scheme, params), http.StatusFound)
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		_, platform, err := authflow.ParseState(state)
		if err != nil {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		if platform != authstate.PlatformMobile {
			s.completeWebSignIn(w, r, code, state)
			return
		}

		params := url.Values{
			"code":  {code},
			"state": {state},
		}
		http.Redirect(w, r, deepLinkURL(s.scheme, params), http.StatusFound)
	}
}

// completeWebSignIn exchanges the web flow's code server-side and answers
// with the sign-in result. Mobile never takes this path; its coordinator runs
// in the app and only needs the deep-link passthrough above.
func (s *Server) completeWebSignIn(w http.ResponseWriter, r *http.Request, code, state string) {
	if s.coordinator == nil {
		http.Error(w, "unsupported platform for this endpoint", http.StatusNotImplemented)
		return
	}

	result, err := s.coordinator.HandleCallback(r.Context(), code, state)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, authflow.ErrNoPendingState),
			errors.Is(err, authflow.ErrStateExpired),
			errors.Is(err, authflow.ErrStateMismatch):
			status = http.StatusUnauthorized
		}
		http.Error(w, "sign-in failed", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(webSignInResponse{
		UserID:   result.Profile.ID,
		Email:    result.Profile.Email,
		Name:     result.Profile.Name,
		Session:  result.Session,
		Analysis: result.Analysis,
	}); err != nil {
		log.Error().Err(err).Msg("failed to encode sign-in response")
	}
}

type webSignInResponse struct {
	UserID   string            `json:"userId"`
	Email    string            `json:"email,omitempty"`
	Name     string            `json:"name,omitempty"`
	Session  *identity.Session `json:"session"`
	Analysis json.RawMessage   `json:"analysis,omitempty"`
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
