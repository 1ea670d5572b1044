// Package app wires configuration, the budget client and the bot handlers
// into a runnable Telegram application.
package app

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/familybudget/core/config"
)

// APIConfig points the bot at the budgeting API.
type APIConfig struct {
	BaseURL            string `yaml:"base_url" envconfig:"API_BASE_URL"`
	ServiceToken       string `yaml:"service_token" envconfig:"API_TOKEN"`
	TimeoutSeconds     int    `yaml:"timeout_seconds" envconfig:"API_TIMEOUT_SECONDS"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" envconfig:"API_INSECURE_SKIP_VERIFY"`
}

// SessionConfig sets conversation expiry.
type SessionConfig struct {
	DraftTTLMinutes      int `yaml:"draft_ttl_minutes" envconfig:"SESSION_DRAFT_TTL_MINUTES"`
	IdleTTLHours         int `yaml:"idle_ttl_hours" envconfig:"SESSION_IDLE_TTL_HOURS"`
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" envconfig:"SESSION_SWEEP_INTERVAL_SECONDS"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session"`
}

const (
	defaultAPITimeoutSeconds = 10
	defaultDraftTTLMinutes   = 30
	defaultIdleTTLHours      = 24
	defaultSweepSeconds      = 60
)

// CoreConfig returns the embedded runtime configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if strings.TrimSpace(c.API.ServiceToken) == "" {
		return fmt.Errorf("api.service_token is required")
	}
	if c.API.TimeoutSeconds < 0 || c.Session.DraftTTLMinutes < 0 || c.Session.IdleTTLHours < 0 || c.Session.SweepIntervalSeconds < 0 {
		return fmt.Errorf("api and session durations must be >= 0")
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = defaultAPITimeoutSeconds
	}
	if c.Session.DraftTTLMinutes == 0 {
		c.Session.DraftTTLMinutes = defaultDraftTTLMinutes
	}
	if c.Session.IdleTTLHours == 0 {
		c.Session.IdleTTLHours = defaultIdleTTLHours
	}
	if c.Session.SweepIntervalSeconds == 0 {
		c.Session.SweepIntervalSeconds = defaultSweepSeconds
	}
	return nil
}

func (c *Config) apiTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) draftTTL() time.Duration {
	return time.Duration(c.Session.DraftTTLMinutes) * time.Minute
}

func (c *Config) idleTTL() time.Duration {
	return time.Duration(c.Session.IdleTTLHours) * time.Hour
}

func (c *Config) sweepInterval() time.Duration {
	return time.Duration(c.Session.SweepIntervalSeconds) * time.Second
}
