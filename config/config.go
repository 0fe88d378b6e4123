// Package config loads process-level configuration for the basket engine's
// CLI and embedding binaries. It has no bearing on the engine itself:
// Stack.process takes no configuration and reads no environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Config holds process-level configuration: logging and environment name.
// The engine's own inputs (stacks, items) never flow through here.
type Config struct {
	App AppConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	LogLevel    string
}

// Load reads configuration from an optional file plus environment
// variables. The config file is optional; its absence is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("basket")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("BASKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "basket")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.loglevel", "info")
}

// Validate checks invariants on the loaded configuration.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}
	return nil
}
