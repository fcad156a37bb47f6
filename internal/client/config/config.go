package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dmitrijs2005/tripplanner/internal/flagx"
)

// Config holds runtime settings for the trip planner CLI.
type Config struct {
	// APIBaseURL is the backend root, e.g. http://localhost:8000.
	APIBaseURL string
	// RequestTimeout bounds each backend request. Plan generation is slow,
	// so the default is long.
	RequestTimeout time.Duration
	// OnlineCheckInterval is how often the CLI probes /health.
	OnlineCheckInterval time.Duration
	// DatabasePath is the local SQLite file holding the session and plan
	// history.
	DatabasePath string
	// LogLevel is a level name: debug, info, warn or error.
	LogLevel string
	// LogFormat selects human-readable "console" output or "json" lines.
	LogFormat string
}

// LoadDefaults populates c with built-in defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000"
	c.RequestTimeout = 5 * time.Minute
	c.OnlineCheckInterval = 10 * time.Second
	c.DatabasePath = "tripplanner.db"
	c.LogLevel = "info"
	c.LogFormat = "console"
}

// Validate reports settings the client cannot start with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api base url %q must be an absolute http(s) url", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.OnlineCheckInterval <= 0 {
		return errors.New("online check interval must be positive")
	}
	if c.DatabasePath == "" {
		return errors.New("database path is required")
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("log format %q must be console or json", c.LogFormat)
	}
	return nil
}

// Load builds a Config from, in increasing precedence: defaults, the
// config file named by -c/-config, .env and the process environment, and
// command-line flags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFile(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg, DotEnvFile); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
