package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/rewired-gh/xpgraph/internal/scale"
)

// EnvPrefix prefixes every environment override, e.g. XPGRAPH_CHART_WIDTH.
const EnvPrefix = "XPGRAPH"

// Config represents the complete application configuration
type Config struct {
	Platform PlatformConfig `mapstructure:"platform"`
	Chart    ChartConfig    `mapstructure:"chart"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// PlatformConfig holds the learning platform API configuration
type PlatformConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ChartConfig holds canvas geometry and output settings
type ChartConfig struct {
	scale.Canvas      `mapstructure:",squash"`
	SortChronological bool   `mapstructure:"sort_chronological"`
	Format            string `mapstructure:"format"`
	OutputDir         string `mapstructure:"output_dir"`
}

// StorageConfig holds session persistence configuration
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// TelegramConfig holds Telegram delivery configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. A missing
// config file is not an error: defaults and environment apply. A .env file
// in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
// Every key needs a default for AutomaticEnv to reach it during Unmarshal.
func setDefaults(v *viper.Viper) {
	canvas := scale.DefaultCanvas()

	v.SetDefault("platform.base_url", "https://learn.reboot01.com")
	v.SetDefault("platform.timeout", "30s")
	v.SetDefault("platform.max_retries", 3)
	v.SetDefault("platform.retry_delay_base", "1s")

	v.SetDefault("chart.width", canvas.Width)
	v.SetDefault("chart.height", canvas.Height)
	v.SetDefault("chart.padding", canvas.Padding)
	v.SetDefault("chart.sort_chronological", false)
	v.SetDefault("chart.format", "svg")
	v.SetDefault("chart.output_dir", "./out")

	v.SetDefault("storage.db_path", "./data/xpgraph.db")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "2s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Platform.BaseURL == "" {
		return fmt.Errorf("platform.base_url is required")
	}
	if !strings.HasPrefix(c.Platform.BaseURL, "http://") && !strings.HasPrefix(c.Platform.BaseURL, "https://") {
		return fmt.Errorf("platform.base_url must be an http or https URL")
	}
	if c.Platform.Timeout < time.Second {
		return fmt.Errorf("platform.timeout must be at least 1 second")
	}
	if c.Platform.MaxRetries < 1 {
		return fmt.Errorf("platform.max_retries must be at least 1")
	}
	if c.Platform.RetryDelayBase < 0 {
		return fmt.Errorf("platform.retry_delay_base must not be negative")
	}

	if err := c.Chart.Canvas.Validate(); err != nil {
		return fmt.Errorf("chart: %w", err)
	}
	validChartFormats := map[string]bool{"svg": true, "png": true}
	if !validChartFormats[strings.ToLower(c.Chart.Format)] {
		return fmt.Errorf("chart.format must be one of: svg, png")
	}
	if c.Chart.OutputDir == "" {
		return fmt.Errorf("chart.output_dir is required")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		if c.Telegram.MaxRetries < 1 {
			return fmt.Errorf("telegram.max_retries must be at least 1")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
