// Package config loads application configuration from the environment.
//
// All runtime knobs live on one struct with `env:` tags, parsed once at
// startup by caarlos0/env. There are no module-level globals — the secret
// key, the database path, and the token TTL are injected into the token
// service and the store at construction time, which is what makes isolated
// parallel test instances possible.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// minSecretLen is the shortest JWT secret we accept. HS256 with a short
// secret is brute-forceable, so a weak secret is a startup error, not a
// warning.
const minSecretLen = 16

// Config holds every runtime setting for the server.
type Config struct {
	Port      int           `env:"PORT" envDefault:"8080"`
	DBPath    string        `env:"DB_PATH" envDefault:"data/datavault.db"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"60m"`
	// BcryptCost tunes password hashing. 0 means bcrypt's default cost.
	// Tests lower it to the minimum so hashing doesn't dominate runtime.
	BcryptCost int    `env:"BCRYPT_COST" envDefault:"0"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.JWTSecret) < minSecretLen {
		return errors.New("config: JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	return nil
}
