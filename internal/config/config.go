// Package config loads server settings from defaults, an optional YAML
// file, an optional .env file, and the environment, in that order of
// increasing precedence. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DevJWTSecret is the default signing secret. It is only suitable for
// local development.
const DevJWTSecret = "tabshare-dev-secret-change-me"

// Config holds the server settings.
type Config struct {
	Port           int           `yaml:"port" validate:"min=1,max=65535"`
	DBPath         string        `yaml:"db_path" validate:"required"`
	JWTSecret      string        `yaml:"jwt_secret" validate:"required,min=16"`
	TokenTTL       time.Duration `yaml:"token_ttl" validate:"min=1m"`
	LogLevel       string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	CORSOrigin     string        `yaml:"cors_origin" validate:"required"`
	MetricsEnabled bool          `yaml:"metrics_enabled"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:           8080,
		DBPath:         "./data/tabshare.db",
		JWTSecret:      DevJWTSecret,
		TokenTTL:       24 * time.Hour,
		LogLevel:       "info",
		CORSOrigin:     "*",
		MetricsEnabled: true,
	}
}

// Load builds the configuration. Empty paths are skipped; a missing .env
// file is not an error, a missing YAML file is.
func Load(yamlPath, envPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", yamlPath, err)
		}
	}

	if envPath != "" {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v, ok := os.LookupEnv("DB_PATH"); ok {
		c.DBPath = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		c.JWTSecret = v
	}
	if v, ok := os.LookupEnv("TOKEN_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		c.TokenTTL = ttl
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("CORS_ORIGIN"); ok {
		c.CORSOrigin = v
	}
	if v, ok := os.LookupEnv("METRICS_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid METRICS_ENABLED %q: %w", v, err)
		}
		c.MetricsEnabled = enabled
	}
	return nil
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (%s)", fe.Field(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// UsesDevSecret reports whether tokens are signed with DevJWTSecret.
func (c Config) UsesDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}
