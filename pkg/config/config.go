// Package config loads the admin API configuration.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML file,
// CPAAS_ environment variables, then command line flags applied by the CLI.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/adfharrison1/cpaas-admin/pkg/auth"
	"github.com/adfharrison1/cpaas-admin/pkg/resource"
)

// EnvPrefix is stripped from environment variables before mapping them to keys
const EnvPrefix = "CPAAS_"

// Config holds the complete service configuration
type Config struct {
	Server    ServerConfig                 `koanf:"server"`
	Log       LogConfig                    `koanf:"log"`
	Auth      auth.Config                  `koanf:"auth"`
	Storage   StorageConfig                `koanf:"storage"`
	Seed      SeedConfig                   `koanf:"seed"`
	Resources map[string]resource.Override `koanf:"resources"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	// Requests per second allowed per client; 0 disables limiting
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
	RateBurst int     `koanf:"rate_burst" validate:"min=0"`
	// Proxies (IPs or CIDRs) whose X-Forwarded-For header is believed; empty
	// means clients are identified by their socket address only
	TrustedProxies []string `koanf:"trusted_proxies" validate:"dive,cidr|ip"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// StorageConfig controls optional snapshot persistence. With no snapshot
// file the collections are rebuilt from seed data on every start.
type StorageConfig struct {
	SnapshotFile string        `koanf:"snapshot_file"`
	SaveInterval time.Duration `koanf:"save_interval" validate:"min=0"`
}

// SeedConfig controls mock data generation
type SeedConfig struct {
	Enabled bool  `koanf:"enabled"`
	Value   int64 `koanf:"value"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000"},
			RateLimit:       50,
			RateBurst:       100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: auth.Config{
			Secret: "dev-secret-change-me-please",
			Issuer: "cpaas-admin",
			TTL:    24 * time.Hour,
		},
		Seed: SeedConfig{
			Enabled: true,
			Value:   42,
		},
		Resources: map[string]resource.Override{},
	}
}

var validate = validator.New()

// Validate checks field constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			msgs := make([]string, 0, len(errs))
			for _, e := range errs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %s", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("invalid configuration: server.rate_burst must be at least 1 when rate limiting is on")
	}
	return nil
}
