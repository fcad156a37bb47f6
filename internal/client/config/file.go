package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape shared by JSON and YAML config files.
// Absent keys leave the current value alone.
type fileConfig struct {
	APIBaseURL          string   `json:"api_base_url" yaml:"api_base_url"`
	RequestTimeout      Duration `json:"request_timeout" yaml:"request_timeout"`
	OnlineCheckInterval Duration `json:"online_check_interval" yaml:"online_check_interval"`
	DatabasePath        string   `json:"database_path" yaml:"database_path"`
	LogLevel            string   `json:"log_level" yaml:"log_level"`
	LogFormat           string   `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file at path. Files ending in .yaml or
// .yml are YAML; anything else is JSON.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	return nil
}
