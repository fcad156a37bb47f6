package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvFile is read, when present, before the environment is consulted.
// Variables already set in the process win over the file.
var DotEnvFile = ".env"

// envConfig lists the TRIPPLANNER_* variables. It is pre-filled from the
// current Config, so unset variables keep their value.
type envConfig struct {
	APIBaseURL          string        `env:"API_BASE_URL"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL"`
	DatabasePath        string        `env:"DATABASE_PATH"`
	LogLevel            string        `env:"LOG_LEVEL"`
	LogFormat           string        `env:"LOG_FORMAT"`
}

// viteConfig is the base url variable shared with the web frontend. The
// TRIPPLANNER_ variable wins when both are set.
type viteConfig struct {
	APIBaseURL string `env:"VITE_API_BASE_URL"`
}

func parseEnv(cfg *Config, dotenv string) error {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	vite := viteConfig{APIBaseURL: cfg.APIBaseURL}
	if err := env.Parse(&vite); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	ec := envConfig{
		APIBaseURL:          vite.APIBaseURL,
		RequestTimeout:      cfg.RequestTimeout,
		OnlineCheckInterval: cfg.OnlineCheckInterval,
		DatabasePath:        cfg.DatabasePath,
		LogLevel:            cfg.LogLevel,
		LogFormat:           cfg.LogFormat,
	}
	if err := env.ParseWithOptions(&ec, env.Options{Prefix: "TRIPPLANNER_"}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.APIBaseURL = ec.APIBaseURL
	cfg.RequestTimeout = ec.RequestTimeout
	cfg.OnlineCheckInterval = ec.OnlineCheckInterval
	cfg.DatabasePath = ec.DatabasePath
	cfg.LogLevel = ec.LogLevel
	cfg.LogFormat = ec.LogFormat
	return nil
}
