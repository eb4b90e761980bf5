// Package config loads star-coach settings from the environment and an
// optional JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Environment variables read by FromEnv and NewTokenConfig.
const (
	EnvAPIKey          = "GEMINI_API_KEY"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvServerURL       = "STAR_COACH_SERVER"
	EnvDBPath          = "STAR_COACH_DB"
	EnvPort            = "PORT"
	EnvJWTSecret       = "JWT_SECRET"
	EnvJWTExpiration   = "JWT_EXPIRATION_HOURS"
	defaultPort        = 8080
	defaultExpiryHours = 24
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL (server)
	ServerURL   string `json:"server_url,omitempty"`   // Proxy base URL; empty calls the model directly
	DBPath      string `json:"db_path,omitempty"`      // Local SQLite snapshot file
	Port        int    `json:"port,omitempty"`

	UseBrowser bool `json:"use_browser,omitempty"` // Render SPA job postings with headless Chrome
	Verbose    bool `json:"verbose,omitempty"`
}

// FromEnv reads the configuration from environment variables. Call
// godotenv.Load first to pick up a .env file.
func FromEnv() Config {
	return Config{
		APIKey:      os.Getenv(EnvAPIKey),
		DatabaseURL: os.Getenv(EnvDatabaseURL),
		ServerURL:   os.Getenv(EnvServerURL),
		DBPath:      os.Getenv(EnvDBPath),
		Port:        getEnvInt(EnvPort, 0),
	}
}

// Defaults returns the built-in values used when neither flags, file nor
// environment set a field.
func Defaults() Config {
	return Config{
		Port:   defaultPort,
		DBPath: DefaultDBPath(),
	}
}

// DefaultDBPath is ~/.star-coach/sessions.db, or a relative path when the
// home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".star-coach", "sessions.db")
	}
	return filepath.Join(home, ".star-coach", "sessions.db")
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the command that needs them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	if c.ServerURL != "" {
		u, err := url.Parse(c.ServerURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: 'server_url' must be an http(s) URL: %s", c.ServerURL)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ServerURL == "" {
		result.ServerURL = defaults.ServerURL
	}
	if result.DBPath == "" {
		result.DBPath = defaults.DBPath
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// TokenConfig holds the signing settings for session tokens.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

// NewTokenConfig reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default: 24).
func NewTokenConfig() (*TokenConfig, error) {
	secret := os.Getenv(EnvJWTSecret)
	if secret == "" {
		return nil, fmt.Errorf("%s is required but not set", EnvJWTSecret)
	}

	hours := defaultExpiryHours
	if v := os.Getenv(EnvJWTExpiration); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %v", EnvJWTExpiration, err)
		}
		hours = n
	}
	if hours < 1 {
		return nil, fmt.Errorf("%s must be at least 1 hour, got: %d", EnvJWTExpiration, hours)
	}

	return &TokenConfig{Secret: secret, TTL: time.Duration(hours) * time.Hour}, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
