// Package config provides configuration management for the collector.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"

	apperrors "options-collector/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Collector CollectorConfig `mapstructure:"collector"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// CollectorConfig holds the collection-pipeline settings.
type CollectorConfig struct {
	UniverseFile  string        `mapstructure:"universe_file"`  // JSON ticker catalog
	DatabasePath  string        `mapstructure:"database_path"`  // SQLite database file
	Provider      string        `mapstructure:"provider"`       // "yahoo" or "static"
	RiskFreeRate  float64       `mapstructure:"risk_free_rate"` // annualized, e.g. 0.05
	PollInterval  time.Duration `mapstructure:"poll_interval"`  // wait between full cycles
	PacingDelay   time.Duration `mapstructure:"pacing_delay"`   // wait between expiration fetches
	GreeksEnabled bool          `mapstructure:"greeks_enabled"` // selects the schema generation
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-collector"
	}
	return filepath.Join(home, ".config", "options-collector")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used; if no config file exists, a
// template is written and the defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("collector.universe_file", filepath.Join(configDir, "company_tickers.json"))
	v.SetDefault("collector.database_path", filepath.Join(configDir, "options_database.db"))
	v.SetDefault("collector.provider", "yahoo")
	v.SetDefault("collector.risk_free_rate", 0.05)
	v.SetDefault("collector.poll_interval", 10*time.Minute)
	v.SetDefault("collector.pacing_delay", time.Second)
	v.SetDefault("collector.greeks_enabled", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "collector.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COLLECTOR_UNIVERSE_FILE"); v != "" {
		cfg.Collector.UniverseFile = v
	}
	if v := os.Getenv("COLLECTOR_DATABASE_PATH"); v != "" {
		cfg.Collector.DatabasePath = v
	}
	if v := os.Getenv("COLLECTOR_PROVIDER"); v != "" {
		cfg.Collector.Provider = v
	}
	if v := os.Getenv("COLLECTOR_RISK_FREE_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Collector.RiskFreeRate = rate
		}
	}
	if v := os.Getenv("COLLECTOR_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Collector.PollInterval = d
		}
	}
	if v := os.Getenv("COLLECTOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Collector.UniverseFile == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "universe_file must not be empty")
	}
	if c.Collector.DatabasePath == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "database_path must not be empty")
	}
	if c.Collector.Provider != "yahoo" && c.Collector.Provider != "static" {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "provider %q (must be 'yahoo' or 'static')", c.Collector.Provider)
	}
	if c.Collector.RiskFreeRate < 0 || c.Collector.RiskFreeRate >= 1 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "risk_free_rate must be in [0, 1)")
	}
	if c.Collector.PollInterval <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "poll_interval must be positive")
	}
	if c.Collector.PacingDelay < 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "pacing_delay must be non-negative")
	}
	return nil
}
