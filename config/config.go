// Package config loads the command-line configuration from an optional .env
// file, an optional YAML config file and JSONREQ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. JSONREQ_STATE_Y.
	EnvPrefix = "JSONREQ"
	// DefaultEnvFile is loaded when no env file is named explicitly.
	DefaultEnvFile = ".env"
)

// Config stores all configuration of the command line.
type Config struct {
	State  StateConfig  `mapstructure:"state"`
	Input  FormatConfig `mapstructure:"input"`
	Output FormatConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

// StateConfig holds the initial values of the shared state cells.
type StateConfig struct {
	Y int `mapstructure:"y"` // initial value of the cell bound to test_request's y
}

// FormatConfig names a wire format: "json", "yaml" or "cbor".
type FormatConfig struct {
	Format string `mapstructure:"format"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Load reads configuration. envFile, if non-empty, must exist; otherwise
// DefaultEnvFile is loaded when present. configPath, if non-empty, names a
// config file that must exist; otherwise "jsonreq.yaml" is searched for in
// the working directory and its absence is not an error.
//
// Variables already set in the environment take precedence over the env file,
// and environment variables take precedence over the config file.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: load env file: %w", err)
		}
	} else if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load env file: %w", err)
	}

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("jsonreq")
		v.SetConfigType("yaml")
	}

	v.SetDefault("state.y", 123)
	v.SetDefault("input.format", "json")
	v.SetDefault("output.format", "json")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unable to decode into struct: %w", err)
	}
	return &cfg, nil
}
