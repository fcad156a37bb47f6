// Package config loads runtime configuration for the trip planner CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file named by -c or -config. Files ending in .yaml
//     or .yml are YAML, anything else JSON.
//  3. A .env file in the working directory, then the environment:
//     VITE_API_BASE_URL, and TRIPPLANNER_API_BASE_URL,
//     TRIPPLANNER_REQUEST_TIMEOUT, TRIPPLANNER_ONLINE_CHECK_INTERVAL,
//     TRIPPLANNER_DATABASE_PATH, TRIPPLANNER_LOG_LEVEL.
//  4. Command-line flags -a, -t, -i, -d, -l.
//
// # File schema
//
// Durations are strings like "90s" or integer nanoseconds:
//
//	api_base_url: http://localhost:8000
//	request_timeout: 5m
//	online_check_interval: 10s
//	database_path: tripplanner.db
//	log_level: info
package config
