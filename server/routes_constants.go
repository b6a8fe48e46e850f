package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLinkedIn         = "/auth/linkedin"
	RouteAuthLinkedInCallback = "/auth/linkedin/callback"

	// Operational Routes
	RouteHealthz = "/healthz"
)
