// Package config provides application configuration from command-line flags, environment variables, and .env files.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Store     StoreConfig
	Search    SearchConfig
	Catalog   CatalogConfig
	Challenge ChallengeConfig
	Auth      AuthConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StoreConfig holds document store configuration.
type StoreConfig struct {
	// DataPath is the base directory for the Badger database and search index.
	DataPath string
}

// SearchConfig holds library search index configuration.
type SearchConfig struct {
	// Enabled allows disabling the bleve index entirely.
	Enabled bool
}

// CatalogConfig holds external catalog provider configuration.
type CatalogConfig struct {
	// BaseURL of the Google Books volumes endpoint.
	BaseURL string
	// APIKey is appended to catalog requests when set.
	APIKey string
	// Timeout bounds every catalog HTTP call.
	Timeout time.Duration
	// RequestsPerSecond and Burst limit outbound catalog traffic.
	RequestsPerSecond float64
	Burst             int
	// CacheSize is the maximum number of cached catalog records (0 disables).
	CacheSize int
}

// ChallengeConfig holds reading challenge configuration.
type ChallengeConfig struct {
	// DefaultTarget is the yearly book target used when a challenge is created lazily.
	DefaultTarget int
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// TokenKeyHex is the PASETO v4 symmetric key as 64 hex characters.
	// Generated and persisted under the data path when empty.
	TokenKeyHex   string
	TokenDuration time.Duration
}

// defaultCatalogBaseURL is the Google Books volumes endpoint.
const defaultCatalogBaseURL = "https://www.googleapis.com/books/v1/volumes"

// Options controls how LoadConfig resolves values. Flags are handled by the
// caller (cmd/api) so tests can load config without touching the global flag set.
type Options struct {
	EnvFile string
	// Overrides take highest precedence; keys match environment variable names.
	Overrides map[string]string
}

// LoadConfig loads configuration with precedence:
// 1. Explicit overrides (command-line flags, highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(envFile)

	get := func(key, fallback string) string {
		if v, ok := opts.Overrides[key]; ok && v != "" {
			return v
		}
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		App: AppConfig{
			Environment: get("ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: get("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name: get("SERVER_NAME", "Shelfmark Server"),
			Port: get("SERVER_PORT", "8080"),
		},
		Store: StoreConfig{
			DataPath: get("DATA_PATH", "./data"),
		},
		Search: SearchConfig{
			Enabled: true,
		},
		Catalog: CatalogConfig{
			BaseURL: get("CATALOG_BASE_URL", defaultCatalogBaseURL),
			APIKey:  get("CATALOG_API_KEY", ""),
		},
		Auth: AuthConfig{
			TokenKeyHex: get("AUTH_TOKEN_KEY", ""),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = parseDuration(get("SERVER_READ_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}
	if cfg.Server.WriteTimeout, err = parseDuration(get("SERVER_WRITE_TIMEOUT", "15s")); err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}
	if cfg.Server.IdleTimeout, err = parseDuration(get("SERVER_IDLE_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("invalid SERVER_IDLE_TIMEOUT: %w", err)
	}
	if cfg.Catalog.Timeout, err = parseDuration(get("CATALOG_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_TIMEOUT: %w", err)
	}
	if cfg.Auth.TokenDuration, err = parseDuration(get("AUTH_TOKEN_DURATION", "720h")); err != nil {
		return nil, fmt.Errorf("invalid AUTH_TOKEN_DURATION: %w", err)
	}
	if cfg.Search.Enabled, err = parseBool(get("SEARCH_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("invalid SEARCH_ENABLED: %w", err)
	}
	if cfg.Catalog.RequestsPerSecond, err = parseFloat(get("CATALOG_RATE_RPS", "5")); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_RATE_RPS: %w", err)
	}
	if cfg.Catalog.Burst, err = parseInt(get("CATALOG_RATE_BURST", "5")); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_RATE_BURST: %w", err)
	}
	if cfg.Catalog.CacheSize, err = parseInt(get("CATALOG_CACHE_SIZE", "512")); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_SIZE: %w", err)
	}
	if cfg.Challenge.DefaultTarget, err = parseInt(get("CHALLENGE_DEFAULT_TARGET", "12")); err != nil {
		return nil, fmt.Errorf("invalid CHALLENGE_DEFAULT_TARGET: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Store.DataPath == "" {
		return errors.New("data path must not be empty")
	}
	if c.Challenge.DefaultTarget <= 0 {
		return errors.New("challenge default target must be positive")
	}
	if c.Catalog.BaseURL == "" {
		return errors.New("catalog base URL must not be empty")
	}
	if c.Catalog.RequestsPerSecond <= 0 || c.Catalog.Burst <= 0 {
		return errors.New("catalog rate limit must be positive")
	}
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	return time.ParseDuration(s)
}

func parseBool(s string) (bool, error) {
	return strconv.ParseBool(s)
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(s)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// loadEnvFile reads KEY=VALUE pairs into the process environment.
// Existing environment variables win over file values.
func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}
