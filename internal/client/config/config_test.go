package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"VITE_API_BASE_URL",
	"TRIPPLANNER_API_BASE_URL",
	"TRIPPLANNER_REQUEST_TIMEOUT",
	"TRIPPLANNER_ONLINE_CHECK_INTERVAL",
	"TRIPPLANNER_DATABASE_PATH",
	"TRIPPLANNER_LOG_LEVEL",
	"TRIPPLANNER_LOG_FORMAT",
}

// cleanEnv unsets every variable the loader reads and points DotEnvFile at
// a path that does not exist. Both are restored after the test.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	orig := DotEnvFile
	DotEnvFile = filepath.Join(t.TempDir(), "missing.env")
	t.Cleanup(func() { DotEnvFile = orig })
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:8000", c.APIBaseURL)
	assert.Equal(t, 5*time.Minute, c.RequestTimeout)
	assert.Equal(t, 10*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "tripplanner.db", c.DatabasePath)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "console", c.LogFormat)
	assert.NoError(t, c.Validate())
}

func TestLoad_NoSourcesGivesDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load(nil)

	require.NoError(t, err)
	want := defaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestLoad_JSONFile(t *testing.T) {
	cleanEnv(t)
	path := writeFile(t, "cfg.json", `{"api_base_url":"https://api.example.com","request_timeout":"90s","online_check_interval":3000000000}`)

	cfg, err := Load([]string{"-c", path})

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, "tripplanner.db", cfg.DatabasePath, "absent keys keep defaults")
}

func TestLoad_YAMLFile(t *testing.T) {
	cleanEnv(t)
	path := writeFile(t, "cfg.yaml", "api_base_url: http://yaml:9000\nrequest_timeout: 2m\ndatabase_path: /tmp/t.db\nlog_level: debug\nlog_format: json\n")

	cfg, err := Load([]string{"-config", path})

	require.NoError(t, err)
	assert.Equal(t, "http://yaml:9000", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/t.db", cfg.DatabasePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FileErrors(t *testing.T) {
	cleanEnv(t)

	_, err := Load([]string{"-c", filepath.Join(t.TempDir(), "nope.json")})
	assert.ErrorContains(t, err, "failed to read config file")

	bad := writeFile(t, "bad.json", `{"request_timeout":"soon"}`)
	_, err = Load([]string{"-c", bad})
	assert.ErrorContains(t, err, "invalid duration")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	cleanEnv(t)
	path := writeFile(t, "cfg.json", `{"api_base_url":"http://file:1"}`)
	t.Setenv("VITE_API_BASE_URL", "http://vite:2")
	t.Setenv("TRIPPLANNER_REQUEST_TIMEOUT", "45s")

	cfg, err := Load([]string{"-c", path})
	require.NoError(t, err)
	assert.Equal(t, "http://vite:2", cfg.APIBaseURL)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)

	t.Setenv("TRIPPLANNER_API_BASE_URL", "http://native:3")
	cfg, err = Load([]string{"-c", path})
	require.NoError(t, err)
	assert.Equal(t, "http://native:3", cfg.APIBaseURL, "TRIPPLANNER_ wins over VITE_")
}

func TestLoad_DotEnvFile(t *testing.T) {
	cleanEnv(t)
	DotEnvFile = writeFile(t, ".env", "TRIPPLANNER_LOG_LEVEL=warn\nTRIPPLANNER_DATABASE_PATH=from-dotenv.db\n")
	t.Setenv("TRIPPLANNER_DATABASE_PATH", "from-process.db")

	cfg, err := Load(nil)

	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "from-process.db", cfg.DatabasePath, "process environment wins over .env")
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	cleanEnv(t)
	t.Setenv("TRIPPLANNER_API_BASE_URL", "http://env:1")

	cfg, err := Load([]string{"-a", "http://flag:2", "-t", "30s", "-i", "7", "-d", "f.db", "-l", "error", "-f", "json", "positional"})

	require.NoError(t, err)
	want := Config{
		APIBaseURL:          "http://flag:2",
		RequestTimeout:      30 * time.Second,
		OnlineCheckInterval: 7 * time.Second,
		DatabasePath:        "f.db",
		LogLevel:            "error",
		LogFormat:           "json",
	}
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestLoad_RejectsInvalidResult(t *testing.T) {
	cleanEnv(t)

	_, err := Load([]string{"-a", "localhost:8000"})
	assert.ErrorContains(t, err, "invalid config")

	_, err = Load([]string{"-i", "0"})
	assert.ErrorContains(t, err, "online check interval")
}

func TestValidate(t *testing.T) {
	c := defaults()
	c.RequestTimeout = 0
	assert.Error(t, c.Validate())

	c = defaults()
	c.DatabasePath = ""
	assert.Error(t, c.Validate())

	c = defaults()
	c.LogFormat = "xml"
	assert.ErrorContains(t, c.Validate(), "log format")
}
