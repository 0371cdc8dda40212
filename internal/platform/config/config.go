package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the client gateway. Backend base
// URLs are split because the deployed campus backends run the auth service
// and the marketplace service on different ports.
type Config struct {
	Addr      string `envconfig:"UNIMART_ADDR" default:":3000"`
	LogFormat string `envconfig:"UNIMART_LOG_FORMAT" default:"text"`

	AuthBaseURL   string `envconfig:"UNIMART_AUTH_BASE_URL" default:"http://localhost:8181/api"`
	MarketBaseURL string `envconfig:"UNIMART_MARKET_BASE_URL" default:"http://localhost:8080/api"`

	// StatePath is the session state file; empty resolves under the user
	// config dir. Ignored when RedisURL is set.
	StatePath string `envconfig:"UNIMART_STATE_PATH"`
	RedisURL  string `envconfig:"UNIMART_REDIS_URL"`

	SessionTTL     time.Duration `envconfig:"UNIMART_SESSION_TTL" default:"720h"`
	RequestTimeout time.Duration `envconfig:"UNIMART_REQUEST_TIMEOUT" default:"30s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// StateFile resolves the session state file path, defaulting under the user
// config dir and falling back to the working directory when that is unknown.
func (c *Config) StateFile() string {
	if c.StatePath != "" {
		return c.StatePath
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".unimart/session.json"
	}
	return filepath.Join(base, "unimart", "session.json")
}
