package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var platformEnv = []string{
	"DOCEBO_PLATFORM_DOMAIN", "DOCEBO_PLATFORM_CLIENT_ID", "DOCEBO_PLATFORM_CLIENT_SECRET",
	"DOCEBO_PLATFORM_USERNAME", "DOCEBO_PLATFORM_PASSWORD",
	"DOCEBO_DOMAIN", "DOCEBO_CLIENT_ID", "DOCEBO_CLIENT_SECRET", "DOCEBO_USERNAME", "DOCEBO_PASSWORD",
	"DOCEBO_BULK_BATCH_SIZE", "DOCEBO_LOGGING_LEVEL",
}

// clearEnv unsets the variables Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range platformEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validYAML = `
platform:
  domain: acme.docebosaas.com
  client_id: cid
  client_secret: secret
  username: admin
  password: pw
`

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", validYAML+`
bulk:
  batch_size: 5
  batch_pause: 2s
logging:
  level: debug
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "acme.docebosaas.com", cfg.Platform.Domain)
	assert.Equal(t, "cid", cfg.Platform.ClientID)
	assert.Equal(t, 5, cfg.Bulk.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Bulk.BatchPause)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// defaults
	assert.Equal(t, 30*time.Second, cfg.Client.CallTimeout)
	assert.Equal(t, 3, cfg.Client.RetryMax)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Bulk.AllowUnconfirmed)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", validYAML)
	t.Setenv("DOCEBO_PLATFORM_PASSWORD", "from-env")
	t.Setenv("DOCEBO_BULK_BATCH_SIZE", "7")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Platform.Password)
	assert.Equal(t, 7, cfg.Bulk.BatchSize)
}

func TestLoad_ShortEnvNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("DOCEBO_DOMAIN", "acme.docebosaas.com")
	t.Setenv("DOCEBO_CLIENT_ID", "cid")
	t.Setenv("DOCEBO_CLIENT_SECRET", "secret")
	t.Setenv("DOCEBO_USERNAME", "admin")
	t.Setenv("DOCEBO_PASSWORD", "pw")

	cfg, err := Load(writeFile(t, "empty.yaml", "{}\n"), "")
	require.NoError(t, err)
	assert.Equal(t, "acme.docebosaas.com", cfg.Platform.Domain)
	assert.Equal(t, "pw", cfg.Platform.Password)
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, ".env", strings.Join([]string{
		"DOCEBO_DOMAIN=acme.docebosaas.com",
		"DOCEBO_CLIENT_ID=cid",
		"DOCEBO_CLIENT_SECRET=secret",
		"DOCEBO_USERNAME=admin",
		"DOCEBO_PASSWORD=dotenv",
	}, "\n"))

	cfg, err := Load(writeFile(t, "empty.yaml", "{}\n"), envFile)
	require.NoError(t, err)
	assert.Equal(t, "dotenv", cfg.Platform.Password)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "config.yaml", validYAML), filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading env file")
}

func TestLoad_MissingCredentials(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
platform:
  domain: acme.docebosaas.com
  username: admin
`)

	_, err := Load(path, "")
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "platform.client_id is required")
	assert.Contains(t, msg, "platform.client_secret is required")
	assert.Contains(t, msg, "platform.password is required")
	assert.Contains(t, msg, "DOCEBO_PLATFORM_PASSWORD")
	assert.NotContains(t, msg, "platform.domain is required")
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "config.yaml", "platform: [unclosed"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Platform: PlatformConfig{Domain: "d", ClientID: "c", ClientSecret: "s", Username: "u", Password: "p"},
			Client:   ClientConfig{Timeout: time.Minute, CallTimeout: time.Second, RetryMax: 3, RateBurst: 1},
			Bulk:     BulkConfig{BatchSize: 3},
			Logging:  LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"metrics addr", func(c *Config) { c.Metrics.Addr = ":9090" }, ""},
		{"bad metrics addr", func(c *Config) { c.Metrics.Addr = "nope" }, "metrics.addr must be host:port"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level must be one of debug, info, warn, error"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format must be one of"},
		{"zero batch", func(c *Config) { c.Bulk.BatchSize = 0 }, "bulk.batch_size must be at least 1"},
		{"huge batch", func(c *Config) { c.Bulk.BatchSize = 500 }, "bulk.batch_size must be at most 50"},
		{"zero retries", func(c *Config) { c.Client.RetryMax = 0 }, "client.retry_max must be at least 1"},
		{"zero call timeout", func(c *Config) { c.Client.CallTimeout = 0 }, "client.call_timeout must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
