// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when one exists), loads them into structured Go types, and validates
// them so the rest of the application can rely on a complete config.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Accept the bare DATABASE_URL and PORT variables used by most
//     hosting platforms, plus FLAVORS_-prefixed keys for everything else.
//   - Map env vars into structured config and validate them.
//   - Provide defaults for every optional block.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read twice:

	1. Bare aliases. DATABASE_URL -> database.url and PORT -> server.port.
	   Every other unprefixed variable is ignored.
	2. Prefixed keys. FLAVORS_ is stripped and the rest is lowercased, so
	   FLAVORS_VALIDATION.POLICY -> validation.policy. Nesting uses "." in
	   the variable name itself; "_" is kept as part of the key
	   (FLAVORS_DATABASE.RESET_ON_START -> database.reset_on_start).

	The second load overrides the first.
*/

const (
	// EnvPrefix is the prefix of every application-specific env var.
	EnvPrefix = "FLAVORS_"

	// ServiceName tags logs and APM data.
	ServiceName = "flavors"

	// DefaultDatabaseURL is used when neither DATABASE_URL nor
	// FLAVORS_DATABASE.URL is set.
	DefaultDatabaseURL = "postgres://localhost/the_acme_notes_db"

	// DefaultPort is used when neither PORT nor FLAVORS_SERVER.PORT is set.
	DefaultPort = "3000"
)

// aliases maps the unprefixed variables we honor onto koanf keys.
var aliases = map[string]string{
	"DATABASE_URL": "database.url",
	"PORT":         "server.port",
}

// Config is the root configuration object for the application.
//
// Observability is a pointer so an existing value is decoded into rather
// than replaced, which keeps the defaults for keys that were not set.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Validation    ValidationConfig     `koanf:"validation" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=local development staging production"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are in seconds. Zero disables the timeout; read and write
// timeouts default to zero so a slow database call is never cut off by
// the HTTP server.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimitPerSecond caps requests per client IP. Zero means unlimited.
	RateLimitPerSecond float64 `koanf:"rate_limit_per_second" validate:"min=0"`
}

// DatabaseConfig contains the PostgreSQL connection string and bootstrap
// behavior.
type DatabaseConfig struct {
	URL string `koanf:"url" validate:"required"`

	// MaxConns overrides the pool size. Zero keeps the pgxpool default.
	MaxConns int32 `koanf:"max_conns" validate:"min=0"`

	// ResetOnStart drops the flavors table before migrating, which
	// re-seeds it on every start.
	ResetOnStart bool `koanf:"reset_on_start"`
}

// RedisConfig contains Redis connection details.
// An empty Address disables Redis and everything built on it.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// ValidationPolicy decides how create and update treat missing fields.
type ValidationPolicy string

const (
	// ValidationPassthrough forwards missing fields to the store as NULL.
	ValidationPassthrough ValidationPolicy = "passthrough"

	// ValidationStrict rejects missing fields with 400 before the store is hit.
	ValidationStrict ValidationPolicy = "strict"
)

// ValidationConfig holds the request validation policy.
type ValidationConfig struct {
	Policy ValidationPolicy `koanf:"policy" validate:"required,oneof=passthrough strict"`
}

// RequireFields reports whether payload fields are mandatory.
func (v ValidationConfig) RequireFields() bool {
	return v.Policy == ValidationStrict
}

// DefaultConfig returns a Config with every default filled in. Values
// loaded from the environment are unmarshalled on top of it.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               DefaultPort,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			URL:          DefaultDatabaseURL,
			ResetOnStart: true,
		},
		Validation:    ValidationConfig{Policy: ValidationPassthrough},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it
// on top of DefaultConfig, validates it and returns the result.
func LoadConfig() (*Config, error) {
	// "." is the key-path delimiter: "server.port" means Config.Server.Port.
	k := koanf.New(".")

	// Bare aliases first. Returning "" from the callback drops the variable,
	// which is also how empty values are kept from wiping out a default.
	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return aliases[key], value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env aliases: %w", err)
	}

	err = k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Keys that are absent from koanf leave the defaults untouched.
	mainConfig := DefaultConfig()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed and environment always follows primary.env so
	// logs and traces agree with each other.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
