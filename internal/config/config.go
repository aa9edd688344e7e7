// Package config loads application configuration from an optional YAML file
// and NEOS_-prefixed environment variables, with defaults for everything.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for neos.
type Config struct {
	Data    DataConfig    `mapstructure:"data"`
	Link    LinkConfig    `mapstructure:"link"`
	Logging LoggingConfig `mapstructure:"logging"`
	API     APIConfig     `mapstructure:"api"`
}

// DataConfig holds the source feed locations.
type DataConfig struct {
	NEOPath string `mapstructure:"neo_path"`
	CADPath string `mapstructure:"cad_path"`
}

// LinkConfig holds database construction settings.
type LinkConfig struct {
	// Strategy is "grouped" (default) or "scan".
	Strategy string `mapstructure:"strategy"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("data.neo_path", filepath.Join("data", "neos.csv"))
	v.SetDefault("data.cad_path", filepath.Join("data", "cad.json"))

	v.SetDefault("link.strategy", "grouped")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".neos"))
	v.AddConfigPath(".")

	// Environment variables, e.g. NEOS_DATA_NEO_PATH, NEOS_API_LISTEN_ADDR.
	v.SetEnvPrefix("NEOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Data.NEOPath == "" {
		return fmt.Errorf("data.neo_path must not be empty")
	}
	if c.Data.CADPath == "" {
		return fmt.Errorf("data.cad_path must not be empty")
	}
	if c.Link.Strategy != "grouped" && c.Link.Strategy != "scan" {
		return fmt.Errorf("link.strategy must be grouped or scan, got %q", c.Link.Strategy)
	}
	if c.API.ListenAddr == "" {
		return fmt.Errorf("api.listen_addr must not be empty")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
