package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	FRED        FREDConfig     `mapstructure:"fred"`
	Storage     StorageConfig  `mapstructure:"storage"`
	Analysis    AnalysisConfig `mapstructure:"analysis"`
	Rotation    RotationConfig `mapstructure:"rotation"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type FREDConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	APIKey             string `mapstructure:"api_key" json:"-" yaml:"-"`
	MinRequestInterval string `mapstructure:"min_request_interval"`
	RequestTimeout     string `mapstructure:"request_timeout"`
	MaxRetries         int    `mapstructure:"max_retries"`
	MaxBackoff         string `mapstructure:"max_backoff"`
}

type StorageConfig struct {
	CacheDir         string `mapstructure:"cache_dir"`
	SeriesListPath   string `mapstructure:"series_list_path"`
	UsageHistoryPath string `mapstructure:"usage_history_path"`
	ExclusionPath    string `mapstructure:"exclusion_path"`
	OutputPath       string `mapstructure:"output_path"`
}

type AnalysisConfig struct {
	ReferenceSeries     string  `mapstructure:"reference_series"`
	ExclusionCategoryID int     `mapstructure:"exclusion_category_id"`
	MaxFailureRatio     float64 `mapstructure:"max_failure_ratio"`
}

type RotationConfig struct {
	LookbackDays  int `mapstructure:"lookback_days"`
	RetentionDays int `mapstructure:"retention_days"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind specific environment variables
	if err := viper.BindEnv("fred.api_key", "FRED_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind FRED_API_KEY environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	// The API key is an opaque credential passed through unchanged; it is
	// required everywhere but development so tests can load config.
	if config.Environment != "development" && config.FRED.APIKey == "" {
		return nil, errors.New("FRED_API_KEY environment variable is required in non-development environments")
	}

	for name, value := range map[string]string{
		"fred.min_request_interval": config.FRED.MinRequestInterval,
		"fred.request_timeout":      config.FRED.RequestTimeout,
		"fred.max_backoff":          config.FRED.MaxBackoff,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return nil, fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	if config.Analysis.MaxFailureRatio < 0 || config.Analysis.MaxFailureRatio > 1 {
		return nil, fmt.Errorf("analysis.max_failure_ratio must be between 0 and 1, got %v", config.Analysis.MaxFailureRatio)
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)

	// FRED provider: the published per-key limit tolerates roughly one
	// request per second sustained.
	viper.SetDefault("fred.base_url", "https://api.stlouisfed.org/fred")
	viper.SetDefault("fred.api_key", "")
	viper.SetDefault("fred.min_request_interval", "1s")
	viper.SetDefault("fred.request_timeout", "30s")
	viper.SetDefault("fred.max_retries", 6)
	viper.SetDefault("fred.max_backoff", "60s")

	// Storage
	viper.SetDefault("storage.cache_dir", "data/series")
	viper.SetDefault("storage.series_list_path", "data/curated_series.json")
	viper.SetDefault("storage.usage_history_path", "data/usage_history.json")
	viper.SetDefault("storage.exclusion_path", "data/excluded_ids.json")
	viper.SetDefault("storage.output_path", "data/selection.json")

	// Analysis
	viper.SetDefault("analysis.reference_series", "SP500")
	viper.SetDefault("analysis.exclusion_category_id", 32255)
	viper.SetDefault("analysis.max_failure_ratio", 0.2)

	// Rotation
	viper.SetDefault("rotation.lookback_days", 7)
	viper.SetDefault("rotation.retention_days", 30)
}
