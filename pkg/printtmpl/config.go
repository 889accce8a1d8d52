package printtmpl

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultMaxInputSize is the size ceiling for template XML (1 MiB).
const DefaultMaxInputSize = 1 << 20

// DefaultMaxDepth is the deepest element nesting accepted by default.
const DefaultMaxDepth = 64

// Config contains all configuration options for the template engine
type Config struct {
	// MaxInputSize is the largest template accepted, in bytes.
	MaxInputSize int `yaml:"maxInputSize"`
	// MaxDepth is the deepest element nesting accepted by the parser.
	MaxDepth int `yaml:"maxDepth"`
	// CacheMaxSize is the maximum number of parsed templates to cache. 0 disables caching.
	CacheMaxSize int `yaml:"cacheMaxSize"`
	// CacheTTL is the time-to-live for cached templates. 0 means no expiration.
	CacheTTL time.Duration `yaml:"cacheTTL"`
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"logLevel"`
	// LogFormat selects text or json log lines.
	LogFormat string `yaml:"logFormat"`
	// Locale is the BCP 47 tag used by the number and case formatters.
	Locale string `yaml:"locale"`
	// CurrencySymbol is appended (or prepended) by the currency formatter.
	CurrencySymbol string `yaml:"currencySymbol"`
	// CurrencyPrefix puts the symbol before the amount instead of after it.
	CurrencyPrefix bool `yaml:"currencyPrefix"`
	// Timezone is the IANA zone dates are shown in.
	Timezone string `yaml:"timezone"`
	// MinifyHTML strips insignificant whitespace from rendered HTML.
	MinifyHTML bool `yaml:"minifyHTML"`
	// SanitizeHTML removes scripts and event handlers from rendered HTML.
	SanitizeHTML bool `yaml:"sanitizeHTML"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	ensureGlobalConfig()
}

// ensureGlobalConfig loads the global config from the environment on first use.
// Package-level variables may need it before init runs.
func ensureGlobalConfig() {
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxInputSize:   DefaultMaxInputSize,
		MaxDepth:       DefaultMaxDepth,
		CacheMaxSize:   100,
		CacheTTL:       0,
		LogLevel:       "info",
		LogFormat:      "text",
		Locale:         "it",
		CurrencySymbol: "€",
		CurrencyPrefix: false,
		Timezone:       "Europe/Rome",
		MinifyHTML:     false,
		SanitizeHTML:   false,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	applyEnvironment(config)
	return config
}

func applyEnvironment(config *Config) {
	if val := os.Getenv("PRINTTMPL_MAX_INPUT_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.MaxInputSize = size
		}
	}

	if val := os.Getenv("PRINTTMPL_MAX_DEPTH"); val != "" {
		if depth, err := strconv.Atoi(val); err == nil {
			config.MaxDepth = depth
		}
	}

	if val := os.Getenv("PRINTTMPL_CACHE_MAX_SIZE"); val != "" {
		if size, err := strconv.Atoi(val); err == nil {
			config.CacheMaxSize = size
		}
	}

	if val := os.Getenv("PRINTTMPL_CACHE_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			config.CacheTTL = duration
		}
	}

	if val := os.Getenv("PRINTTMPL_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	if val := os.Getenv("PRINTTMPL_LOG_FORMAT"); val != "" {
		config.LogFormat = val
	}

	if val := os.Getenv("PRINTTMPL_LOCALE"); val != "" {
		config.Locale = val
	}

	if val := os.Getenv("PRINTTMPL_CURRENCY_SYMBOL"); val != "" {
		config.CurrencySymbol = val
	}

	if val := os.Getenv("PRINTTMPL_CURRENCY_PREFIX"); val != "" {
		config.CurrencyPrefix = parseBool(val)
	}

	if val := os.Getenv("PRINTTMPL_TIMEZONE"); val != "" {
		config.Timezone = val
	}

	if val := os.Getenv("PRINTTMPL_MINIFY_HTML"); val != "" {
		config.MinifyHTML = parseBool(val)
	}

	if val := os.Getenv("PRINTTMPL_SANITIZE_HTML"); val != "" {
		config.SanitizeHTML = parseBool(val)
	}
}

// LoadConfigFile reads a YAML configuration file. Unset keys keep their
// defaults and environment variables override the file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	applyEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

// NewConfigWithDefaults creates a new configuration with defaults applied to unset fields
func NewConfigWithDefaults(overrides *Config) *Config {
	defaults := DefaultConfig()

	if overrides == nil {
		return defaults
	}

	config := *overrides

	if config.MaxInputSize == 0 {
		config.MaxInputSize = defaults.MaxInputSize
	}

	if config.MaxDepth == 0 {
		config.MaxDepth = defaults.MaxDepth
	}

	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}

	if config.LogFormat == "" {
		config.LogFormat = defaults.LogFormat
	}

	if config.Locale == "" {
		config.Locale = defaults.Locale
	}

	if config.CurrencySymbol == "" {
		config.CurrencySymbol = defaults.CurrencySymbol
	}

	if config.Timezone == "" {
		config.Timezone = defaults.Timezone
	}

	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.MaxInputSize <= 0 {
		return errors.New("max input size must be positive")
	}

	if c.MaxDepth <= 0 {
		return errors.New("max depth must be positive")
	}

	if c.CacheMaxSize < 0 {
		return errors.New("cache max size cannot be negative")
	}

	if c.CacheTTL < 0 {
		return errors.New("cache TTL cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[c.LogLevel] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.New("invalid log format: " + c.LogFormat)
	}

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	ensureGlobalConfig()

	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	ensureGlobalConfig()

	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
