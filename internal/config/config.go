// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"travel-mate/internal/errors"
	"travel-mate/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. TRAVELMATE_STORE_PATH.
const EnvPrefix = "TRAVELMATE"

// Config is the main application configuration
type Config struct {
	// Rates selects the per-diem rate table
	Rates RatesConfig `mapstructure:"rates"`

	// Store configures the calculation snapshot store
	Store StoreConfig `mapstructure:"store"`

	// Output contains output configuration
	Output OutputConfig `mapstructure:"output"`

	// Logging contains logging configuration
	Logging logging.Config `mapstructure:"logging"`
}

// RatesConfig contains rate table settings
type RatesConfig struct {
	// File is an HCL rate table. Empty uses the built-in table.
	File string `mapstructure:"file"`
}

// StoreConfig contains snapshot store settings
type StoreConfig struct {
	// Path is the bbolt database file
	Path string `mapstructure:"path"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// Format is the default output format (text, json)
	Format string `mapstructure:"format"`

	// Color enables ANSI colors in text output
	Color bool `mapstructure:"color"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Store: StoreConfig{
			Path: filepath.Join(homeDir, ".travel-mate", "snapshots.db"),
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads configuration from an optional file plus TRAVELMATE_* environment
// variables. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Config("reading config file "+path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Config("decoding configuration", err)
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("rates.file", d.Rates.File)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.color", d.Output.Color)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("logging.development", d.Logging.Development)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
