package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ebarkhatov/unihttp/internal/transport"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadConfig(t *testing.T) {
	viper.Reset()

	path := writeTempConfig(t, `
base_url: "https://api.example.com"
default_headers:
  Accept: "application/json"
timeout: "2s"
retries: 3
credentials: "include"
log_level: "debug"
download_speed_limit: "1MB"
response_cache_size: 64
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.BaseURL)
	assert.Equal(t, map[string]string{"Accept": "application/json"}, cfg.DefaultHeaders)
	assert.Equal(t, "2s", cfg.Timeout)
	assert.Equal(t, int64(3), cfg.Retries)
	assert.Equal(t, "include", cfg.Credentials)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, int64(64), cfg.ResponseCacheSize)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	viper.Reset()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	viper.Reset()

	cwd, err := os.Getwd()
	require.NoError(t, err)

	require.NoError(t, os.Chdir(t.TempDir()))

	t.Cleanup(func() {
		require.NoError(t, os.Chdir(cwd))
	})

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, int64(0), cfg.Retries)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			Timeout:  "6s",
			LogLevel: "info",
		}
	}

	tests := []struct {
		name        string
		modify      func(cfg *Config)
		expectedErr error
	}{
		{
			name:   "valid_config",
			modify: func(_ *Config) {},
		},
		{
			name: "negative_retries",
			modify: func(cfg *Config) {
				cfg.Retries = -1
			},
			expectedErr: ErrInvalidRetries,
		},
		{
			name: "negative_timeout",
			modify: func(cfg *Config) {
				cfg.Timeout = "-1s"
			},
			expectedErr: ErrInvalidTimeout,
		},
		{
			name: "unknown_credentials",
			modify: func(cfg *Config) {
				cfg.Credentials = "maybe"
			},
			expectedErr: ErrUnknownCredentials,
		},
		{
			name: "unknown_log_level",
			modify: func(cfg *Config) {
				cfg.LogLevel = "loud"
			},
			expectedErr: ErrUnknownLogLevel,
		},
		{
			name: "negative_requests_per_second",
			modify: func(cfg *Config) {
				cfg.RequestsPerSecond = -2
			},
			expectedErr: ErrInvalidRequestsPerSecond,
		},
		{
			name: "negative_cache_size",
			modify: func(cfg *Config) {
				cfg.ResponseCacheSize = -10
			},
			expectedErr: ErrInvalidCacheSize,
		},
		{
			name: "zero_min_retry_pause",
			modify: func(cfg *Config) {
				cfg.MinRetryPause = "0s"
			},
			expectedErr: ErrInvalidMinRetryPause,
		},
		{
			name: "pause_order_violation",
			modify: func(cfg *Config) {
				cfg.MinRetryPause = "2s"
				cfg.MaxRetryPause = "1s"
			},
			expectedErr: ErrRetryPauseOrder,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			test.modify(cfg)

			err := ValidateConfig(cfg)
			if test.expectedErr != nil {
				require.ErrorIs(t, err, test.expectedErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidateConfig_ParsedFields(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Timeout:            "1500ms",
		Credentials:        "omit",
		LogLevel:           "debug",
		DownloadSpeedLimit: "1MB",
		MinRetryPause:      "100ms",
		MaxRetryPause:      "500ms",
	}

	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, 1500*time.Millisecond, cfg.ParsedTimeout)
	assert.Equal(t, transport.CredentialsOmit, cfg.ParsedCredentials)
	assert.Equal(t, zapcore.DebugLevel, cfg.ParsedLogLevel)
	assert.Equal(t, int64(1000000), cfg.ParsedDownloadSpeedLimit)
	assert.Equal(t, 100*time.Millisecond, cfg.ParsedMinRetryPause)
	assert.Equal(t, 500*time.Millisecond, cfg.ParsedMaxRetryPause)
}

func TestValidateConfig_EmptyCredentialsDefaultsToSameOrigin(t *testing.T) {
	t.Parallel()

	cfg := &Config{Timeout: "6s", LogLevel: "info"}

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, transport.CredentialsSameOrigin, cfg.ParsedCredentials)
}

func TestSaveDefaultHeader(t *testing.T) {
	viper.Reset()

	path := writeTempConfig(t, `
base_url: "https://api.example.com"
timeout: "2s"
`)

	_, err := LoadConfig(path)
	require.NoError(t, err)

	require.NoError(t, SaveDefaultHeader("Authorization", "Bearer token-1"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed struct {
		BaseURL        string            `yaml:"base_url"`
		Timeout        string            `yaml:"timeout"`
		DefaultHeaders map[string]string `yaml:"default_headers"`
	}

	require.NoError(t, yaml.Unmarshal(content, &parsed))

	assert.Equal(t, "https://api.example.com", parsed.BaseURL)
	assert.Equal(t, "2s", parsed.Timeout)
	assert.Equal(t, "Bearer token-1", parsed.DefaultHeaders["Authorization"])

	// Updating an existing key replaces the value in place.
	require.NoError(t, SaveDefaultHeader("Authorization", "Bearer token-2"))

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(content, &parsed))

	assert.Equal(t, "Bearer token-2", parsed.DefaultHeaders["Authorization"])
}
