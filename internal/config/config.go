package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	MockAPIConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetPageSize() int
	GetSalesPageSize() int
}

type MockAPIConfig interface {
	GetMockAPIPort() string
	GetMockAPISecret() string
	GetMockAPILatency() time.Duration
}

type StorageConfig interface {
	GetSessionDBPath() string
	GetSessionKey() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	MockAPI
}

func New() Config {
	return mainConfig{}
}
