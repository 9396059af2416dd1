// Package config manages application configuration from environment
// variables, an optional config file, and default values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration. Values can be set via
// environment variables prefixed with CHATFLOW_ (e.g. CHATFLOW_HTTP_ADDR)
// or through config.yaml.
type Config struct {
	// HTTP server settings
	HTTPAddr       string `mapstructure:"http_addr"        validate:"required"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"required,gt=0"`

	// Session settings
	SessionTTL    time.Duration `mapstructure:"session_ttl"    validate:"required,min=1m"`
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required,min=1m"`

	// Database settings
	DBPath              string        `mapstructure:"db_path"              validate:"required"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval" validate:"required,min=1m"`

	// Logging settings
	LogLevel  string `mapstructure:"log_level"  validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
}

// Load loads and validates configuration from:
//  1. Default values
//  2. config.yaml file (optional)
//  3. CHATFLOW_* environment variables
func Load() (*Config, error) {
	setDefaults()

	if err := readConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func readConfigFile() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("CHATFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// Config file not found is okay, defaults and env apply.
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("http_addr", ":8080")
	viper.SetDefault("max_upload_bytes", int64(16<<20))

	viper.SetDefault("session_ttl", 2*time.Hour)
	viper.SetDefault("sweep_interval", 5*time.Minute)

	viper.SetDefault("db_path", "chatflow.db")
	viper.SetDefault("maintenance_interval", 24*time.Hour)

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")
}
