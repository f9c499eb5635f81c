package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the inventory backend.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig    `yaml:"cors"`
}

// TimeoutConfig contains HTTP timeout settings in seconds.
type TimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
// The frontend sends credentialed requests, so origins must be listed
// explicitly; a wildcard origin cannot be combined with cookies.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// AuthConfig contains session and token settings.
type AuthConfig struct {
	// JWTSecret signs session tokens. Required; the process refuses to
	// start without it. Set via INVENTORY_JWT_SECRET in production.
	JWTSecret string `yaml:"jwt_secret"`

	// SessionTokenTTLHours is the signed validity window of a session token.
	SessionTokenTTLHours int `yaml:"session_token_ttl_hours"`

	// SessionCookieMaxAgeMinutes is the client-side lifetime of the session
	// cookie. Kept shorter than the token's signed expiry so the browser
	// drops the cookie well before the signature would stop verifying.
	SessionCookieMaxAgeMinutes int `yaml:"session_cookie_max_age_minutes"`

	// CSRFCookieMaxAgeMinutes is the client-side lifetime of the CSRF cookie.
	CSRFCookieMaxAgeMinutes int `yaml:"csrf_cookie_max_age_minutes"`

	// SecureCookies marks both cookies Secure (HTTPS only). Enable in production.
	SecureCookies bool `yaml:"secure_cookies"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: INVENTORY_SECTION_KEY
// For example: INVENTORY_DATABASE_PATH, INVENTORY_JWT_SECRET
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
			Timeouts: TimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:3000"},
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/inventory.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Auth: AuthConfig{
			SessionTokenTTLHours:       24,
			SessionCookieMaxAgeMinutes: 15,
			CSRFCookieMaxAgeMinutes:    60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: INVENTORY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INVENTORY_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("INVENTORY_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("INVENTORY_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// Auth - JWT secret (IMPORTANT: always set via environment in production)
	if v := os.Getenv("INVENTORY_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("INVENTORY_SECURE_COOKIES"); v != "" {
		cfg.Auth.SecureCookies = v == "true" || v == "1"
	}

	if v := os.Getenv("INVENTORY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// minJWTSecretLength is the minimum accepted signing secret length.
// A short secret makes HS256 session tokens brute-forceable offline.
const minJWTSecretLength = 32

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	// The signing secret is the root of session integrity: anyone holding it
	// can mint a valid token for any user. Refuse to start without one.
	if c.Auth.JWTSecret == "" {
		errs = append(errs, "auth.jwt_secret is required (set INVENTORY_JWT_SECRET environment variable)")
	} else if len(c.Auth.JWTSecret) < minJWTSecretLength {
		errs = append(errs, "auth.jwt_secret must be at least 32 characters")
	}

	if c.Auth.SessionTokenTTLHours <= 0 {
		errs = append(errs, "auth.session_token_ttl_hours must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// SessionTokenTTL returns the signed session token lifetime as a Duration.
func (c *Config) SessionTokenTTL() time.Duration {
	return time.Duration(c.Auth.SessionTokenTTLHours) * time.Hour
}

// SessionCookieMaxAge returns the session cookie lifetime as a Duration.
func (c *Config) SessionCookieMaxAge() time.Duration {
	return time.Duration(c.Auth.SessionCookieMaxAgeMinutes) * time.Minute
}

// CSRFCookieMaxAge returns the CSRF cookie lifetime as a Duration.
func (c *Config) CSRFCookieMaxAge() time.Duration {
	return time.Duration(c.Auth.CSRFCookieMaxAgeMinutes) * time.Minute
}

// GetReadTimeout returns the server read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Server.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the server write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Server.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the server idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.Server.Timeouts.Idle) * time.Second
}
