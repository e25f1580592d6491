// Package config provides configuration for the marketplace.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the marketplace configuration.
type Config struct {
	// Server settings
	Host            string
	Port            int
	BaseURL         string
	ShutdownTimeout time.Duration

	// Credentials override, a JSON object of token -> {user_id, role}
	APIKeys string

	// Storage
	StoreDriver string
	DatabaseURL string

	// Invocation
	InvokeMode    string
	InvokeTimeout time.Duration

	// Authorization
	PolicyFile string

	// Logging
	Debug     bool
	LogLevel  string
	LogFormat string
}

// Store drivers.
const (
	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
)

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 9091)
	v.SetDefault("base_url", "http://localhost:9091")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("api_keys", "")
	v.SetDefault("store_driver", StoreDriverMemory)
	v.SetDefault("database_url", ":memory:")
	v.SetDefault("invoke_mode", "simulated")
	v.SetDefault("invoke_timeout", "30s")
	v.SetDefault("policy_file", "")
	v.SetDefault("debug", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads configuration from v. Environment variables named after the
// upper-cased keys (PORT, API_KEYS, ...) override file values and defaults.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Host:            v.GetString("host"),
		Port:            v.GetInt("port"),
		BaseURL:         strings.TrimSuffix(v.GetString("base_url"), "/"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		APIKeys:         v.GetString("api_keys"),
		StoreDriver:     strings.ToLower(v.GetString("store_driver")),
		DatabaseURL:     v.GetString("database_url"),
		InvokeMode:      strings.ToLower(v.GetString("invoke_mode")),
		InvokeTimeout:   v.GetDuration("invoke_timeout"),
		PolicyFile:      v.GetString("policy_file"),
		Debug:           v.GetBool("debug"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		LogFormat:       strings.ToLower(v.GetString("log_format")),
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.StoreDriver {
	case StoreDriverMemory, StoreDriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.InvokeTimeout <= 0 {
		return fmt.Errorf("invoke_timeout must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
