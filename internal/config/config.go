// Package config loads, validates, and persists the client configuration.
// Settings come from a YAML file read through viper; validation derives the
// typed Parsed* fields the rest of the system consumes. The configuration is
// immutable once a client has been constructed from it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ebarkhatov/unihttp/internal/constants"
	"github.com/ebarkhatov/unihttp/internal/logger"
	"github.com/ebarkhatov/unihttp/internal/transport"
	"github.com/ebarkhatov/unihttp/internal/utils"
)

// Config holds all configuration settings.
type Config struct {
	// BaseURL is prefixed to every relative request path.
	BaseURL string `mapstructure:"base_url"`
	// DefaultHeaders are merged into every request; per-call headers win.
	DefaultHeaders map[string]string `mapstructure:"default_headers"`
	// Timeout bounds each request attempt (e.g. "6s", "1500ms").
	Timeout string `mapstructure:"timeout"`
	// Retries is the default number of re-attempts after a failure.
	Retries int64 `mapstructure:"retries"`
	// Credentials selects the credential policy: omit, same-origin, or include.
	Credentials string `mapstructure:"credentials"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// UserAgent is injected into requests that carry no User-Agent header.
	UserAgent string `mapstructure:"user_agent"`
	// DownloadSpeedLimit paces progress downloads (e.g. "1MB", "500KB").
	// Empty or "0" disables pacing.
	DownloadSpeedLimit string `mapstructure:"download_speed_limit"`
	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	// Burst is the throttle's token bucket size.
	Burst int64 `mapstructure:"burst"`
	// ResponseCacheSize bounds the GET response cache. Zero disables caching.
	ResponseCacheSize int64 `mapstructure:"response_cache_size"`
	// MinRetryPause is the minimum pause duration before retrying.
	MinRetryPause string `mapstructure:"min_retry_pause"`
	// MaxRetryPause is the maximum pause duration before retrying.
	MaxRetryPause string `mapstructure:"max_retry_pause"`
	// RetryClientErrors re-attempts 4xx failures too when true.
	// The default policy treats them as permanent.
	RetryClientErrors bool `mapstructure:"retry_client_errors"`
	// MaxLogLength is the maximum length of logged request/response data.
	MaxLogLength uint64 `mapstructure:"max_log_length"`

	// ParsedTimeout is the parsed per-attempt timeout.
	ParsedTimeout time.Duration
	// ParsedCredentials is the parsed credentials policy.
	ParsedCredentials transport.CredentialsPolicy
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedDownloadSpeedLimit is the parsed download pace in bytes per second.
	ParsedDownloadSpeedLimit int64
	// ParsedMinRetryPause is the parsed minimum retry pause duration.
	ParsedMinRetryPause time.Duration
	// ParsedMaxRetryPause is the parsed maximum retry pause duration.
	ParsedMaxRetryPause time.Duration
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".unihttp.yaml"

	// DefaultTimeout bounds a request attempt unless configured otherwise.
	DefaultTimeout = "6s"

	// DefaultUserAgent identifies the client on the wire.
	DefaultUserAgent = "unihttp/1.0"
)

// Static error definitions for better error handling.
var (
	// ErrInvalidRetries indicates that the retries setting is negative.
	ErrInvalidRetries = errors.New("retries must be zero or a positive integer")
	// ErrInvalidTimeout indicates that the timeout setting is negative.
	ErrInvalidTimeout = errors.New("timeout must not be negative")
	// ErrUnknownCredentials indicates an unrecognized credentials policy.
	ErrUnknownCredentials = errors.New("unknown credentials policy")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidRequestsPerSecond indicates a negative throttle rate.
	ErrInvalidRequestsPerSecond = errors.New("requests_per_second must not be negative")
	// ErrInvalidCacheSize indicates a negative response cache size.
	ErrInvalidCacheSize = errors.New("response_cache_size must not be negative")
	// ErrInvalidMinRetryPause indicates that the min retry pause duration is invalid.
	ErrInvalidMinRetryPause = errors.New("min_retry_pause must be positive")
	// ErrInvalidMaxRetryPause indicates that the max retry pause duration is invalid.
	ErrInvalidMaxRetryPause = errors.New("max_retry_pause must be positive")
	// ErrRetryPauseOrder indicates that max_retry_pause is below min_retry_pause.
	ErrRetryPauseOrder = errors.New("max_retry_pause must not be less than min_retry_pause")
)

// LoadConfig loads configuration settings from a YAML file.
// When configFilename is empty, the default file is used and its absence is
// not an error: the defaults alone form a valid configuration.
func LoadConfig(configFilename string) (*Config, error) {
	optional := configFilename == ""
	if optional {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)

	viper.SetDefault("timeout", DefaultTimeout)
	viper.SetDefault("retries", 0)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("user_agent", DefaultUserAgent)

	if err := viper.ReadInConfig(); err != nil {
		if !(optional && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("failed to read config from file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:cyclop // Validation functions naturally have high complexity due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	timeout := strings.TrimSpace(cfg.Timeout)
	if timeout != "" {
		cfg.ParsedTimeout, err = time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("failed to parse timeout: %w", err)
		}

		if cfg.ParsedTimeout < 0 {
			return ErrInvalidTimeout
		}
	}

	if cfg.Retries < 0 {
		return ErrInvalidRetries
	}

	parsedCredentials, isCredentialsCorrect := transport.ParseCredentialsPolicy(strings.TrimSpace(cfg.Credentials))
	if !isCredentialsCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownCredentials, cfg.Credentials)
	}

	cfg.ParsedCredentials = parsedCredentials

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	downloadSpeedLimit := strings.TrimSpace(cfg.DownloadSpeedLimit)
	if downloadSpeedLimit != "" && downloadSpeedLimit != "0" {
		var parsedDownloadSpeedLimit uint64

		parsedDownloadSpeedLimit, err = humanize.ParseBytes(downloadSpeedLimit)
		if err != nil {
			return fmt.Errorf("failed to parse download speed limit: %w", err)
		}

		// The rate limiter takes int64, so transform it safely here.
		cfg.ParsedDownloadSpeedLimit = utils.SafeUint64ToInt64(parsedDownloadSpeedLimit)
	}

	if cfg.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}

	if cfg.ResponseCacheSize < 0 {
		return ErrInvalidCacheSize
	}

	if cfg.MinRetryPause != "" {
		cfg.ParsedMinRetryPause, err = time.ParseDuration(cfg.MinRetryPause)
		if err != nil {
			return fmt.Errorf("failed to parse min retry pause: %w", err)
		}

		if cfg.ParsedMinRetryPause <= 0 {
			return ErrInvalidMinRetryPause
		}
	}

	if cfg.MaxRetryPause != "" {
		cfg.ParsedMaxRetryPause, err = time.ParseDuration(cfg.MaxRetryPause)
		if err != nil {
			return fmt.Errorf("failed to parse max retry pause: %w", err)
		}

		if cfg.ParsedMaxRetryPause <= 0 {
			return ErrInvalidMaxRetryPause
		}

		if cfg.ParsedMaxRetryPause < cfg.ParsedMinRetryPause {
			return ErrRetryPauseOrder
		}
	}

	return nil
}

// SaveDefaultHeader persists one default header into the configuration file
// while preserving the original format and order of all other settings.
func SaveDefaultHeader(key, value string) error {
	configFile := getConfigFilePath()

	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, key, value, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	updateDefaultHeaderInNode(&node, key, value)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err = os.WriteFile(configFile, newContent, constants.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile, key, value string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	viper.Set("default_headers", map[string]string{key: value})

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// updateDefaultHeaderInNode updates one key under default_headers in the
// YAML node tree, creating the section when it is missing.
func updateDefaultHeaderInNode(node *yaml.Node, key, value string) {
	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	var headersNode *yaml.Node

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		if mapNode.Content[i].Value == "default_headers" {
			headersNode = mapNode.Content[i+1]
			break
		}
	}

	if headersNode == nil {
		mapNode.Content = append(mapNode.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "default_headers"},
			&yaml.Node{Kind: yaml.MappingNode},
		)
		headersNode = mapNode.Content[len(mapNode.Content)-1]
	}

	if headersNode.Kind != yaml.MappingNode {
		headersNode.Kind = yaml.MappingNode
		headersNode.Tag = ""
		headersNode.Value = ""
		headersNode.Content = nil
	}

	for i := 0; i+1 < len(headersNode.Content); i += 2 {
		if headersNode.Content[i].Value == key {
			valueNode := headersNode.Content[i+1]
			valueNode.Value = value

			// Ensure it's quoted if it contains special characters.
			if valueNode.Style == 0 {
				valueNode.Style = yaml.DoubleQuotedStyle
			}

			return
		}
	}

	headersNode.Content = append(headersNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value, Style: yaml.DoubleQuotedStyle},
	)
}
