package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (GEMINI_API_KEY is
//   accepted as a fallback; required unless the completion call is
//   disabled)
// - LLM_API_URL: API endpoint URL (default: Gemini's OpenAI-compatible
//   endpoint)
// - LLM_MODEL: Model name to use (default: gemini-2.0-flash)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 8000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.7)
// - LLM_TIMEOUT: Request timeout in seconds (default: 30)
// - LLM_SITE_URL: Site URL for HTTP referer header (optional)
// - LLM_APP_NAME: Application name for X-Title header (optional)
//
// Cache Configuration:
// - YTPREP_CACHE_DIR: Root of the per-video artifact cache (default: cache)
//
// Fetch Configuration:
// - YTPREP_FETCH_TIMEOUT: Timeout in seconds for metadata and caption
//   downloads (default: 60)
//
// System Configuration:
// - LOG_LEVEL: Minimum log level (default: info)

type Config struct {
	// LLM Configuration
	LLM LLMConfig `json:"llm"`

	// Cache Configuration
	Cache CacheConfig `json:"cache"`

	// Fetch Configuration
	Fetch FetchConfig `json:"fetch"`

	// System Configuration
	System SystemConfig `json:"system"`
}

// LLMConfig holds the configuration for the LLM client
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
	SiteURL     string  `json:"site_url"`
	AppName     string  `json:"app_name"`
}

// Configured reports whether an API key is present
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

// CacheConfig holds the configuration for the artifact cache
type CacheConfig struct {
	Dir string `json:"dir"`
}

// FetchConfig holds the configuration for the video fetcher
type FetchConfig struct {
	TimeoutSeconds int `json:"timeout_seconds"`
}

// SystemConfig holds the system configuration
type SystemConfig struct {
	LogLevel string `json:"log_level"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// WithCacheDir overrides the cache root directory
func WithCacheDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.Cache.Dir = dir
		}
	}
}

// NewFromEnv creates a new Config instance with values from environment
// variables and options.
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		LLM: LLMConfig{
			APIKey:      getEnvString("LLM_API_KEY", getEnvString("GEMINI_API_KEY", "")),
			APIURL:      getEnvString("LLM_API_URL", "https://generativelanguage.googleapis.com/v1beta/openai"),
			Model:       getEnvString("LLM_MODEL", "gemini-2.0-flash"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvInt("LLM_TIMEOUT", 30),
			SiteURL:     getEnvString("LLM_SITE_URL", ""),
			AppName:     getEnvString("LLM_APP_NAME", ""),
		},
		Cache: CacheConfig{
			Dir: getEnvString("YTPREP_CACHE_DIR", "cache"),
		},
		Fetch: FetchConfig{
			TimeoutSeconds: getEnvInt("YTPREP_FETCH_TIMEOUT", 60),
		},
		System: SystemConfig{
			LogLevel: getEnvString("LOG_LEVEL", "info"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.Cache.Dir == "" {
		return fmt.Errorf("cache directory must not be empty")
	}
	if c.Fetch.TimeoutSeconds < 1 {
		return fmt.Errorf("fetch timeout must be greater than 0")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
