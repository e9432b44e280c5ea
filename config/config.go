// Package config loads container settings from a config file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	diorite "github.com/toutaio/toutago-diorite-injector"
)

// Config represents the container configuration
type Config struct {
	// Strict rejects re-registration of an existing binding key
	Strict bool `mapstructure:"strict"`

	// Debug logs with a development logger
	Debug bool `mapstructure:"debug"`

	// LogLevel is a zap level name (debug, info, warn, error)
	LogLevel string `mapstructure:"log_level"`
}

// Load loads the configuration from path, or from diorite.yaml in the
// working directory when path is empty. A missing default file is not an
// error. Environment variables prefixed with DIORITE_ override the file.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("strict", false)
	v.SetDefault("debug", false)
	v.SetDefault("log_level", "warn")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("diorite")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix("DIORITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if _, err := zap.ParseAtomicLevel(config.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", config.LogLevel, err)
	}
	return nil
}

// Logger builds the logger described by the configuration.
func (c *Config) Logger() (*zap.Logger, error) {
	if c.Debug {
		return zap.NewDevelopment()
	}

	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = level
	return cfg.Build()
}

// Options converts the configuration into container options.
func (c *Config) Options() ([]diorite.Option, error) {
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	options := []diorite.Option{diorite.WithLogger(logger)}
	if c.Strict {
		options = append(options, diorite.WithStrict())
	}
	return options, nil
}
