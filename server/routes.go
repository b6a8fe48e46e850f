package server

func (s *Server) initRoutes() {
	// LINKEDIN AUTH
	s.RegisterRouteHandler("GET "+RouteAuthLinkedIn, ChainMiddleware(s.BeginAuthHandler(), s.StdMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthLinkedInCallback, ChainMiddleware(s.CallbackHandler(), s.StdMiddleware()...))

	// OPS
	s.RegisterRouteFunc("GET "+RouteHealthz, s.HealthzHandler())
}
