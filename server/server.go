// Package server implements the callback redirector: the stateless HTTP
// endpoint sitting between the identity provider and the mobile app. It
// forwards the provider's authorization response into the app via a deep
// link, carrying the original composite state through unchanged so the
// client coordinator can perform its own anti-forgery match.
package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/aikuplatform/authbridge/authflow"
	"github.com/aikuplatform/authbridge/identity"
	"github.com/aikuplatform/authbridge/internal/config"
)

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	provider    identity.Provider
	coordinator *authflow.Coordinator // optional; enables server-side web completion
	scheme      string                // deep-link scheme of the mobile app
}

// Option modifies the Server.
type Option func(*Server)

// WithCoordinator enables server-side completion of web sign-ins: the begin
// route persists the pending state through the coordinator and the callback
// route exchanges the code instead of answering 501.
func WithCoordinator(coordinator *authflow.Coordinator) Option {
	return func(s *Server) {
		s.coordinator = coordinator
	}
}

func New(config config.Config, provider identity.Provider, options ...Option) (*Server, error) {
	if provider == nil {
		return nil, errors.New("[server.New] identity provider is required")
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		provider: provider,
		scheme:   config.GetDeepLinkScheme(),
	}
	s.env = config.GetEnv()
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		log.Info().Str("route", route).Msg("registered")
	}
}
