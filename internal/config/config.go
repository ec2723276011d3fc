package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	ProviderYahoo = "yahoo"
	ProviderTable = "table"
)

// Config holds all application configuration.
type Config struct {
	WatchlistFile string `yaml:"watchlist_file" env:"WATCHLIST_FILE"`
	DefaultSymbol string `yaml:"default_symbol" env:"DEFAULT_SYMBOL"`
	OutputDir     string `yaml:"output_dir" env:"OUTPUT_DIR"`
	Metadata      struct {
		Enabled *bool  `yaml:"enabled" env:"METADATA_ENABLED"`
		Path    string `yaml:"path" env:"METADATA_PATH"`
	} `yaml:"metadata"`
	Provider struct {
		Name    string        `yaml:"name" env:"PROVIDER"`
		BaseURL string        `yaml:"base_url" env:"PROVIDER_BASE_URL"`
		APIKey  string        `yaml:"api_key" env:"PROVIDER_API_KEY"`
		Timeout time.Duration `yaml:"timeout" env:"PROVIDER_TIMEOUT"`
	} `yaml:"provider"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	} `yaml:"database"`
	Telegram struct {
		BotToken string `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
	Proxy    string `yaml:"proxy" env:"HTTPS_PROXY"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults cover every required value.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.WatchlistFile == "" {
		c.WatchlistFile = "watchlist.txt"
	}
	if c.DefaultSymbol == "" {
		c.DefaultSymbol = "2330.TW"
	}
	if c.OutputDir == "" {
		c.OutputDir = "my_stock_data"
	}
	if c.Metadata.Enabled == nil {
		enabled := true
		c.Metadata.Enabled = &enabled
	}
	if c.Metadata.Path == "" {
		c.Metadata.Path = "metadata.json"
	}
	if c.Provider.Name == "" {
		c.Provider.Name = ProviderYahoo
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 30 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// MetadataEnabled reports whether the run metadata file should be written.
func (c *Config) MetadataEnabled() bool {
	return c.Metadata.Enabled == nil || *c.Metadata.Enabled
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.WatchlistFile == "" {
		return fmt.Errorf("watchlist_file is required")
	}
	if c.DefaultSymbol == "" {
		return fmt.Errorf("default_symbol is required")
	}
	if c.MetadataEnabled() && c.Metadata.Path == "" {
		return fmt.Errorf("metadata.path is required when metadata is enabled")
	}
	switch c.Provider.Name {
	case ProviderYahoo:
	case ProviderTable:
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("provider.base_url is required for the %q provider", ProviderTable)
		}
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}
	if c.Provider.Timeout < 0 {
		return fmt.Errorf("provider.timeout must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
