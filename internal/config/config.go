// Package config provides configuration management for the news client.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"localnews/internal/request"
	"localnews/pkg/utils"
)

// Environment variables that override file settings.
const (
	EnvAPIKey     = "GUARDIAN_API_KEY"
	EnvSearchTerm = "NEWSFEED_SEARCH_TERM"
	EnvOrderBy    = "NEWSFEED_ORDER_BY"
	EnvEndpoint   = "NEWSFEED_ENDPOINT"
)

// Configuration validation errors.
var (
	ErrInvalidEndpoint       = errors.New("api.base_endpoint must be an absolute http(s) URL")
	ErrMissingAPIKey         = errors.New("api.api_key is required (or set " + EnvAPIKey + ")")
	ErrInvalidPageSize       = errors.New("api.page_size must be between 1 and 200")
	ErrInvalidOrderBy        = errors.New("query.order_by must be one of: newest, oldest, relevance")
	ErrInvalidConnectTimeout = errors.New("http.connect_timeout_ms must be at least 1")
	ErrInvalidReadTimeout    = errors.New("http.read_timeout_ms must be at least 1")
	ErrInvalidMaxBody        = errors.New("http.max_body_kb must be at least 1")
	ErrInvalidSchedule       = errors.New("refresh.schedule is not a valid cron spec")
	ErrInvalidDisplayFormat  = errors.New("display.format must be 'table' or 'json'")
	ErrInvalidTitleWidth     = errors.New("display.title_width must be non-negative")
	ErrInvalidLogLevel       = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete client configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Query   QueryConfig   `yaml:"query"`
	Refresh RefreshConfig `yaml:"refresh"`
	Display DisplayConfig `yaml:"display"`
	Logging LoggingConfig `yaml:"logging"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// APIConfig describes the content API endpoint.
type APIConfig struct {
	BaseEndpoint string `yaml:"base_endpoint"`
	APIKey       string `yaml:"api_key"`
	ShowTags     string `yaml:"show_tags"`
	PageSize     int    `yaml:"page_size"`
}

// QueryConfig holds the user's search preferences.
type QueryConfig struct {
	SearchTerm string `yaml:"search_term"`
	OrderBy    string `yaml:"order_by"`
}

// HTTPConfig defines transport behavior.
type HTTPConfig struct {
	UserAgent        string `yaml:"user_agent"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
	ReadTimeoutMs    int    `yaml:"read_timeout_ms"`
	MaxBodyKb        int    `yaml:"max_body_kb"`
}

// RefreshConfig defines the watch-mode schedule.
type RefreshConfig struct {
	Schedule string `yaml:"schedule"`
	Enabled  bool   `yaml:"enabled"`
}

// DisplayConfig defines how results are rendered.
type DisplayConfig struct {
	Format     string `yaml:"format"`
	TitleWidth int    `yaml:"title_width"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration that works without a file, given an API key.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseEndpoint: request.DefaultEndpoint,
			ShowTags:     request.DefaultShowTags,
			PageSize:     request.DefaultPageSize,
		},
		Query: QueryConfig{
			OrderBy: string(request.DefaultOrderBy),
		},
		HTTP: HTTPConfig{
			ConnectTimeoutMs: 15000,
			ReadTimeoutMs:    10000,
			MaxBodyKb:        4096,
			UserAgent:        utils.DefaultUserAgent,
		},
		Refresh: RefreshConfig{
			Schedule: "@every 5m",
		},
		Display: DisplayConfig{
			Format:     "table",
			TitleWidth: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of Default, then
// applies environment overrides and validates the result.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.ApplyEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	var existing []string

	for _, name := range filenames {
		if _, err := os.Stat(name); err == nil {
			existing = append(existing, name)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}

	return nil
}

// ApplyEnv overrides file settings with environment variables, when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.API.APIKey = v
	}

	if v := os.Getenv(EnvEndpoint); v != "" {
		c.API.BaseEndpoint = v
	}

	if v, ok := os.LookupEnv(EnvSearchTerm); ok {
		c.Query.SearchTerm = v
	}

	if v := os.Getenv(EnvOrderBy); v != "" {
		c.Query.OrderBy = v
	}
}

// SaveConfig saves configuration to YAML file. The API key is not written.
func (c *Config) SaveConfig(filepath string) error {
	out := *c
	out.API.APIKey = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !utils.NewHTTPHelper("").IsValidURL(c.API.BaseEndpoint) {
		return ErrInvalidEndpoint
	}

	if strings.TrimSpace(c.API.APIKey) == "" {
		return ErrMissingAPIKey
	}

	if c.API.PageSize < 1 || c.API.PageSize > 200 {
		return ErrInvalidPageSize
	}

	if _, err := request.ParseOrderBy(c.Query.OrderBy); err != nil {
		return ErrInvalidOrderBy
	}

	if c.HTTP.ConnectTimeoutMs < 1 {
		return ErrInvalidConnectTimeout
	}

	if c.HTTP.ReadTimeoutMs < 1 {
		return ErrInvalidReadTimeout
	}

	if c.HTTP.MaxBodyKb < 1 {
		return ErrInvalidMaxBody
	}

	if c.Refresh.Enabled {
		if _, err := cron.ParseStandard(c.Refresh.Schedule); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}
	}

	if c.Display.Format != "table" && c.Display.Format != "json" {
		return ErrInvalidDisplayFormat
	}

	if c.Display.TitleWidth < 0 {
		return ErrInvalidTitleWidth
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	return nil
}

// RequestConfig converts the query settings into a request configuration.
func (c *Config) RequestConfig() (request.Config, error) {
	orderBy, err := request.ParseOrderBy(c.Query.OrderBy)
	if err != nil {
		return request.Config{}, err
	}

	return request.Config{
		SearchTerm: c.Query.SearchTerm,
		OrderBy:    orderBy,
		APIKey:     c.API.APIKey,
		ShowTags:   c.API.ShowTags,
		PageSize:   c.API.PageSize,
	}, nil
}

// GetConnectTimeout returns the connect timeout duration.
func (h *HTTPConfig) GetConnectTimeout() time.Duration {
	return time.Duration(h.ConnectTimeoutMs) * time.Millisecond
}

// GetReadTimeout returns the read timeout duration.
func (h *HTTPConfig) GetReadTimeout() time.Duration {
	return time.Duration(h.ReadTimeoutMs) * time.Millisecond
}

// String returns a string representation of the config. The API key is omitted.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Endpoint: %s, SearchTerm: %q, OrderBy: %s, PageSize: %d}",
		c.API.BaseEndpoint,
		c.Query.SearchTerm,
		c.Query.OrderBy,
		c.API.PageSize,
	)
}
