// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"tariff-duty/internal/errors"
	"tariff-duty/internal/logging"
)

// EnvPrefix prefixes environment overrides, e.g. TARIFF_SERVER_ADDR
const EnvPrefix = "TARIFF"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version" mapstructure:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Catalog contains catalog source configuration
	Catalog CatalogConfig `json:"catalog" mapstructure:"catalog"`

	// Duty contains duty schedule configuration
	Duty DutyConfig `json:"duty" mapstructure:"duty"`

	// Search contains result limits
	Search SearchConfig `json:"search" mapstructure:"search"`

	// History contains lookup history configuration
	History HistoryConfig `json:"history" mapstructure:"history"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr" mapstructure:"addr"`

	// MaxUploadMB bounds catalog uploads
	MaxUploadMB int `json:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// CatalogConfig contains catalog source settings
type CatalogConfig struct {
	// Path is a JSON catalog loaded at startup; empty starts with an empty catalog
	Path string `json:"path" mapstructure:"path"`

	// Watch reloads the catalog when Path changes
	Watch bool `json:"watch" mapstructure:"watch"`
}

// DutyConfig contains duty schedule settings
type DutyConfig struct {
	// SchedulePath is an HCL schedule file; empty uses the built-in schedule
	SchedulePath string `json:"schedule_path" mapstructure:"schedule_path"`
}

// SearchConfig contains result limits
type SearchConfig struct {
	// Limit is the default relevance search limit
	Limit int `json:"limit" mapstructure:"limit"`

	// EndpointLimit is the limit used by the search endpoint
	EndpointLimit int `json:"endpoint_limit" mapstructure:"endpoint_limit"`

	// CategoryLimit is the default category lookup limit
	CategoryLimit int `json:"category_limit" mapstructure:"category_limit"`
}

// HistoryConfig contains history settings
type HistoryConfig struct {
	// MaxItems bounds the history log
	MaxItems int `json:"max_items" mapstructure:"max_items"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Server: ServerConfig{
			Addr:        ":8080",
			MaxUploadMB: 10,
		},
		Catalog: CatalogConfig{},
		Duty:    DutyConfig{},
		Search: SearchConfig{
			Limit:         10,
			EndpointLimit: 20,
			CategoryLimit: 20,
		},
		History: HistoryConfig{
			MaxItems: 50,
		},
		Logging: logging.DefaultConfig(),
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_upload_mb", d.Server.MaxUploadMB)
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.watch", d.Catalog.Watch)
	v.SetDefault("duty.schedule_path", d.Duty.SchedulePath)
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("search.endpoint_limit", d.Search.EndpointLimit)
	v.SetDefault("search.category_limit", d.Search.CategoryLimit)
	v.SetDefault("history.max_items", d.History.MaxItems)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.development", d.Logging.Development)
}

// Load loads configuration from a file (JSON, YAML or TOML by extension), then applies
// TARIFF_* environment overrides. A missing file yields defaults plus overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, errors.Config("failed to read config", err).WithContext("path", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Config("failed to stat config", err).WithContext("path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Config("failed to decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks limits and addresses
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.Validation("server.addr", "server.addr is required")
	}
	if c.Server.MaxUploadMB <= 0 {
		return errors.Validation("server.max_upload_mb", "server.max_upload_mb must be positive")
	}
	if c.Search.Limit <= 0 || c.Search.EndpointLimit <= 0 || c.Search.CategoryLimit <= 0 {
		return errors.Validation("search", "search limits must be positive")
	}
	if c.History.MaxItems <= 0 {
		return errors.Validation("history.max_items", "history.max_items must be positive")
	}
	if c.Catalog.Watch && c.Catalog.Path == "" {
		return errors.Validation("catalog.watch", "catalog.watch requires catalog.path")
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
