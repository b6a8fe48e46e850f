package config

import "time"

// FlowConfig holds the settings for the callback redirect flow.
type FlowConfig interface {
	GetDeepLinkScheme() string
	GetEnrichmentURL() string
	GetStateFilePath() string
	GetStateTTL() time.Duration
}

type Flow struct{}

var _ FlowConfig = Flow{}

// GetDeepLinkScheme returns the mobile app URL scheme used for the
// callback deep link (e.g. "aiku" -> aiku://auth/callback).
func (Flow) GetDeepLinkScheme() string {
	return GetEnv("DEEP_LINK_SCHEME", "aiku")
}

func (Flow) GetEnrichmentURL() string {
	return GetEnv("ENRICHMENT_URL", "https://api.aikuaiplatform.com/api/auth/analysis")
}

func (Flow) GetStateFilePath() string {
	return GetEnv("STATE_FILE", "./data/linkedin_auth_state.json")
}

func (Flow) GetStateTTL() time.Duration {
	ttl, err := time.ParseDuration(GetEnv("STATE_TTL", "15m"))
	if err != nil {
		return 15 * time.Minute
	}
	return ttl
}
