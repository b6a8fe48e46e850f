package config

type Config interface {
	EnvConfig
	ProviderConfig
	FlowConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Provider
	Flow
}

func New() Config {
	return mainConfig{}
}
