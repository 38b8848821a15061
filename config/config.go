// Package config loads service configuration from a YAML file with
// CALC_* environment variable overrides layered on top.
package config

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "CALC_"

type Server struct {
	Addr string `koanf:"addr"`
}

type Database struct {
	DSN string `koanf:"dsn"`
}

type Auth struct {
	SigningKey      string `koanf:"signing_key"`
	Issuer          string `koanf:"issuer"`
	TokenTTLMinutes int    `koanf:"token_ttl_minutes"`
}

type Config struct {
	Server   Server   `koanf:"server"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
}

// TokenTTL returns the configured token lifetime.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
}

// GetSigningKey returns the process-wide signing secret.
func (c *Config) GetSigningKey() string {
	return c.Auth.SigningKey
}

// Default returns the baseline configuration before file and env layers.
func Default() *Config {
	return &Config{
		Server:   Server{Addr: ":8000"},
		Database: Database{DSN: "file:calc.db"},
		Auth: Auth{
			Issuer:          "go-calc",
			TokenTTLMinutes: 30,
		},
	}
}

// Load reads configuration with priority Env > File > Default. The path is
// optional. The signing key has no default on purpose: rotating it
// invalidates all outstanding tokens, so it must be deliberate.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to load config file")
		}
	}

	// CALC_SERVER_ADDR -> server.addr. Multi-word keys use a double
	// underscore: CALC_AUTH_SIGNING__KEY -> auth.signing_key.
	transformer := func(s string) string {
		s = strings.TrimPrefix(s, DefaultEnvPrefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", "-")
		s = strings.ReplaceAll(s, "_", ".")
		return strings.ReplaceAll(s, "-", "_")
	}

	if err := k.Load(env.Provider(DefaultEnvPrefix, ".", transformer), nil); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load environment")
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded configuration is usable.
func (c *Config) Validate() error {
	if c.Auth.SigningKey == "" {
		return errors.New("auth.signing_key is required", errors.CategoryValidation)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return errors.New("auth.token_ttl_minutes must be positive", errors.CategoryValidation)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required", errors.CategoryValidation)
	}
	return nil
}
