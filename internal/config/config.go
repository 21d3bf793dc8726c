package config

import "time"

type Config interface {
	EnvConfig
	GatewayConfig
	StorageConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type GatewayConfig interface {
	GetSessionTimeout() time.Duration
}

type StorageConfig interface {
	GetDatabasePath() string
	SampleDataEnabled() bool
}

type SecurityConfig interface {
	GetTokenSigningSecret() []byte
	GetBootstrapAccounts() []BootstrapAccount
}

// BootstrapAccount seeds the credential store at startup. The store carries
// no user-management operations, so accounts exist only through bootstrap.
type BootstrapAccount struct {
	Identity     string
	Password     string
	Capabilities []string
}

type mainConfig struct {
	EnvVars
	Gateway
	Storage
	Security
}

func New() Config {
	loadDotEnv()
	return mainConfig{}
}
