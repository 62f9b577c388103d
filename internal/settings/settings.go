// Package settings loads the HTTP service configuration from the
// environment. Pipeline runs stay configured through pipeline JSON files;
// envconfig covers only the service surface.
package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings is the service configuration, populated from ORDERETL_* variables.
type Settings struct {
	AppName    string `envconfig:"APP_NAME" default:"orderetl"`
	AppVersion string `envconfig:"APP_VERSION" default:"dev"`
	APIPrefix  string `envconfig:"API_PREFIX" default:"/api"`
	Port       int    `envconfig:"PORT" default:"8080"`

	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"2m"`
	IdleTimeout     time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// RunTimeout bounds one synchronous pipeline run started over HTTP.
	RunTimeout time.Duration `envconfig:"RUN_TIMEOUT" default:"5m"`
}

// Load reads settings from the environment using the ORDERETL prefix and
// validates them.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process("ORDERETL", &s); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port: %d", s.Port)
	}
	if !strings.HasPrefix(s.APIPrefix, "/") {
		return fmt.Errorf("api prefix must start with '/': %q", s.APIPrefix)
	}
	if s.RunTimeout <= 0 {
		return fmt.Errorf("run timeout must be positive: %s", s.RunTimeout)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (s Settings) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
