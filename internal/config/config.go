package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"sidecoach/internal/limiter"
)

// #region config

// Config is the process configuration, loaded from SIDECOACH_* environment
// variables.
type Config struct {
	ListenAddr string `env:"SIDECOACH_LISTEN_ADDR" envDefault:"127.0.0.1:3100"`
	DBPath     string `env:"SIDECOACH_DB" envDefault:"sidecoach.db"`
	RulesPath  string `env:"SIDECOACH_RULES" envDefault:""`

	// Spacing knobs, in seconds. Deployments tune the critical cooldown
	// independently of the other spacings.
	CriticalCooldownSeconds int `env:"SIDECOACH_CRITICAL_COOLDOWN_SECONDS" envDefault:"10"`
	HighSpacingSeconds      int `env:"SIDECOACH_HIGH_SPACING_SECONDS" envDefault:"30"`
	MediumSpacingSeconds    int `env:"SIDECOACH_MEDIUM_SPACING_SECONDS" envDefault:"60"`
	LowSpacingSeconds       int `env:"SIDECOACH_LOW_SPACING_SECONDS" envDefault:"120"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LimiterConfig maps the spacing knobs onto the rate limiter's config.
func (c Config) LimiterConfig() limiter.Config {
	lc := limiter.DefaultConfig()
	lc.CriticalCooldown = time.Duration(c.CriticalCooldownSeconds) * time.Second
	lc.HighSpacing = time.Duration(c.HighSpacingSeconds) * time.Second
	lc.MediumSpacing = time.Duration(c.MediumSpacingSeconds) * time.Second
	lc.LowSpacing = time.Duration(c.LowSpacingSeconds) * time.Second
	return lc
}

// #endregion config
