// Package finora assembles the client-side authorization subsystem: the auth
// service, the session manager with its stores, the component access table
// and the guards, configured from the environment.
package finora

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the client.
type Config struct {
	APIBaseURL string `envconfig:"FINORA_API_URL" default:"http://localhost:3000"`

	LogFormat string `envconfig:"FINORA_LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"FINORA_REDIS_ADDR" default:"127.0.0.1:6379"`
	StoragePrefix string        `envconfig:"FINORA_STORAGE_PREFIX" default:"finora:session:"`
	SessionTTL    time.Duration `envconfig:"FINORA_SESSION_TTL" default:"720h"`

	LoginPath string `envconfig:"FINORA_LOGIN_PATH" default:"/"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.APIBaseURL == "" {
		return nil, errors.New("api base url must be provided")
	}
	return &cfg, nil
}
