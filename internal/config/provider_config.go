package config

// ProviderConfig holds the identity-provider (Supabase GoTrue) settings.
// Client registration with LinkedIn itself is configured out-of-band in the
// Supabase dashboard and is not part of the runtime contract.
type ProviderConfig interface {
	GetSupabaseURL() string
	GetSupabaseAnonKey() string
	GetRedirectURL() string
	GetScopes() string
}

type Provider struct{}

var _ ProviderConfig = Provider{}

// GetSupabaseURL returns the base URL of the Supabase project
// (e.g. "https://xyzcompany.supabase.co")
func (Provider) GetSupabaseURL() string {
	return GetEnv("SUPABASE_URL", "http://localhost:54321")
}

func (Provider) GetSupabaseAnonKey() string {
	return GetEnv("SUPABASE_ANON_KEY", "")
}

// GetRedirectURL returns the provider-side callback endpoint, i.e. the URL of
// this service's /auth/linkedin/callback route as registered with Supabase.
func (Provider) GetRedirectURL() string {
	return GetEnv("AUTH_REDIRECT_URL", "https://aikuaiplatform.com/auth/linkedin/callback")
}

func (Provider) GetScopes() string {
	return GetEnv("AUTH_SCOPES", "openid profile email")
}
