// Package config handles configuration loading for SmartB3.
// It supports YAML config files, a .env file and environment variable
// overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/smartb3/smartb3/internal/datasource"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "SMARTB3"

// Config represents the complete application configuration.
type Config struct {
	Backend   BackendConfig   `mapstructure:"backend" yaml:"backend" json:"backend"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard" json:"dashboard"`
	News      NewsConfig      `mapstructure:"news" yaml:"news" json:"news"`
	API       APIConfig       `mapstructure:"api" yaml:"api" json:"api"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// BackendConfig points at the prediction backend.
type BackendConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	APIToken   string `mapstructure:"api_token" yaml:"api_token" json:"-"` // optional bearer token
}

// Timeout returns the per-request timeout.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSec) * time.Second
}

// DashboardConfig holds selection and search settings.
type DashboardConfig struct {
	SuggestionLimit int `mapstructure:"suggestion_limit" yaml:"suggestion_limit" json:"suggestion_limit"`    // 0 = unbounded
	CatalogCacheTTL int `mapstructure:"catalog_cache_ttl" yaml:"catalog_cache_ttl" json:"catalog_cache_ttl"` // seconds
}

// CatalogTTL returns how long the company and sector lists are cached.
func (d DashboardConfig) CatalogTTL() time.Duration {
	return time.Duration(d.CatalogCacheTTL) * time.Second
}

// NewsConfig holds the headline feed settings.
type NewsConfig struct {
	Enabled    bool                    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Feeds      []datasource.FeedSource `mapstructure:"feeds" yaml:"feeds" json:"feeds"`
	Limit      int                     `mapstructure:"limit" yaml:"limit" json:"limit"`
	CacheTTL   int                     `mapstructure:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl"` // seconds
	RatePerSec int                     `mapstructure:"rate_per_sec" yaml:"rate_per_sec" json:"rate_per_sec"`
}

// CacheDuration returns how long parsed feeds are cached.
func (n NewsConfig) CacheDuration() time.Duration {
	return time.Duration(n.CacheTTL) * time.Second
}

// APIConfig holds dashboard HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host" yaml:"host" json:"host"`
	Port        int      `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// Addr returns the listen address.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`    // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.smartb3/config.yaml (home directory)
//  3. /etc/smartb3/config.yaml (system)
//
// A .env file in the working directory is loaded first, if present.
// Environment variables override config file values.
// Format: SMARTB3_<SECTION>_<KEY>, e.g., SMARTB3_BACKEND_BASE_URL
func Load() (*Config, error) {
	loadDotEnv()
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".smartb3"))
	v.AddConfigPath("/etc/smartb3")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// loadDotEnv loads ./.env into the process environment without replacing
// variables that are already set.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Backend defaults
	v.SetDefault("backend.base_url", datasource.DefaultBaseURL)
	v.SetDefault("backend.timeout_sec", 15)
	v.SetDefault("backend.api_token", "")

	// Dashboard defaults
	v.SetDefault("dashboard.suggestion_limit", 10)
	v.SetDefault("dashboard.catalog_cache_ttl", 300) // 5 minutes

	// News defaults. Headlines come from external feeds, so they are opt-in.
	v.SetDefault("news.enabled", false)
	v.SetDefault("news.feeds", datasource.DefaultFeeds)
	v.SetDefault("news.limit", 5)
	v.SetDefault("news.cache_ttl", 600) // 10 minutes
	v.SetDefault("news.rate_per_sec", 2)

	// API defaults
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvPrefix + "_BACKEND_API_TOKEN"); key != "" {
		cfg.Backend.APIToken = key
	}
}

// Validate rejects settings the dashboard cannot run with.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url: %q is not an http(s) URL", c.Backend.BaseURL))
	}
	if c.Backend.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("backend.timeout_sec: must be positive, got %d", c.Backend.TimeoutSec))
	}
	if c.Dashboard.SuggestionLimit < 0 {
		errs = append(errs, fmt.Errorf("dashboard.suggestion_limit: must not be negative, got %d", c.Dashboard.SuggestionLimit))
	}
	if c.Dashboard.CatalogCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("dashboard.catalog_cache_ttl: must not be negative, got %d", c.Dashboard.CatalogCacheTTL))
	}
	if c.News.Enabled {
		for i, f := range c.News.Feeds {
			if f.URL == "" {
				errs = append(errs, fmt.Errorf("news.feeds[%d]: url is required", i))
			}
		}
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port: %d out of range", c.API.Port))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
