package server

import "net/url"

// deepLinkPath mirrors the route the mobile app's link handler listens on.
const deepLinkPath = "://auth/callback"

// deepLinkURL builds the app deep link, e.g.
// aiku://auth/callback?code=...&state=...
func deepLinkURL(scheme string, params url.Values) string {
	return scheme + deepLinkPath + "?" + params.Encode()
}
