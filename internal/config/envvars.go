package config

import (
	"fmt"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	dbPathEnvVar  = "DATABASE_PATH"
	logLevelVar   = "LOG_LEVEL"
	timeoutVar    = "SESSION_TIMEOUT"
	sampleDataVar = "ENABLE_SAMPLE_DATA"
	signingKeyVar = "TOKEN_SIGNING_SECRET"
)

// loadDotEnv loads a .env file if one exists; missing files are fine.
func loadDotEnv() {
	_ = godotenv.Load()
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := env.GetString(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return env.GetString(appNameVar, "Go DB Gate")
}

func (EnvVars) GetEnv() string {
	return env.GetString("ENV", "DEV")
}

func (EnvVars) GetLogLevel() string {
	return env.GetString(logLevelVar, "info")
}

type Gateway struct{}

var _ GatewayConfig = Gateway{}

// GetSessionTimeout returns the idle timeout after which a session expires.
func (Gateway) GetSessionTimeout() time.Duration {
	return env.GetDuration(timeoutVar, 3600, time.Second)
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetDatabasePath() string {
	return env.GetString(dbPathEnvVar, "./production.db")
}

func (Storage) SampleDataEnabled() bool {
	return env.GetBool(sampleDataVar, true)
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetTokenSigningSecret() []byte {
	return []byte(env.GetString(signingKeyVar, "dev-only-signing-secret"))
}

// GetBootstrapAccounts returns the static accounts seeded into the
// credential store at startup.
func (Security) GetBootstrapAccounts() []BootstrapAccount {
	return []BootstrapAccount{
		{
			Identity:     env.GetString("ADMIN_IDENTITY", "admin"),
			Password:     env.GetString("ADMIN_PASSWORD", "admin123"),
			Capabilities: []string{"read", "write", "create", "delete", "admin"},
		},
		{
			Identity:     env.GetString("READONLY_IDENTITY", "readonly"),
			Password:     env.GetString("READONLY_PASSWORD", "readonly123"),
			Capabilities: []string{"read"},
		},
	}
}
