package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "gdpetl/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Source  SourceConfig  `yaml:"source" envconfig:"SOURCE"`
	Rates   RatesConfig   `yaml:"rates" envconfig:"RATES"`
	Output  OutputConfig  `yaml:"output" envconfig:"OUTPUT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// SourceConfig describes the HTML document carrying the indicator table
type SourceConfig struct {
	URL           string `yaml:"url" envconfig:"URL" validate:"required,url"`
	TableSelector string `yaml:"table_selector" envconfig:"TABLE_SELECTOR" validate:"required"`
}

// RatesConfig describes the currency-rate feed
type RatesConfig struct {
	URL        string `yaml:"url" envconfig:"URL" validate:"required,url"`
	BasePrefix string `yaml:"base_prefix" envconfig:"BASE_PREFIX" validate:"required,len=3"`
}

// OutputConfig selects the target currency and persistence format
type OutputConfig struct {
	Currency string `yaml:"currency" envconfig:"CURRENCY" validate:"required,len=3"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"required,oneof=csv json xlsx"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"required,oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"required,oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// Default returns the built-in configuration. File and environment
// values overlay these in Load.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:           "https://en.wikipedia.org/wiki/List_of_countries_by_GDP_(nominal)",
			TableSelector: "table.wikitable",
		},
		Rates: RatesConfig{
			URL:        "https://api.currencylayer.com/live",
			BasePrefix: "USD",
		},
		Output: OutputConfig{
			Currency: "GBP",
			Format:   "csv",
		},
		// FilePath stays empty here; the CLI fills it from Paths so a
		// user-configured path is never second-guessed.
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "both",
		},
	}
}

// Load builds the configuration in three layers: built-in defaults, an
// optional config.yaml next to the executable, then GDPETL_* environment
// variables. The result is validated before use.
func Load() (*Config, error) {
	cfg := Default()

	configFile, err := configFilePath()
	if err == nil {
		if _, statErr := os.Stat(configFile); statErr == nil {
			data, readErr := os.ReadFile(configFile)
			if readErr != nil {
				return nil, apperrors.NewConfigError("failed to read config file", readErr)
			}
			if yamlErr := yaml.Unmarshal(data, cfg); yamlErr != nil {
				return nil, apperrors.NewConfigError("failed to parse config file", yamlErr)
			}
		}
	}

	if err := envconfig.Process("GDPETL", cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

// AccessKey reads the rates API credential from the local key file.
// A missing or empty file is a fatal configuration error, raised before
// any network call is made.
func AccessKey(paths *Paths) (string, error) {
	data, err := os.ReadFile(paths.CredentialsFile)
	if err != nil {
		return "", apperrors.NewConfigError(
			fmt.Sprintf("access key file %s is missing", paths.CredentialsFile), err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", apperrors.NewConfigError(
			fmt.Sprintf("access key file %s is empty", paths.CredentialsFile), nil)
	}
	return key, nil
}

func configFilePath() (string, error) {
	paths, err := GetPaths()
	if err != nil {
		return "", err
	}
	return filepath.Join(paths.ExecutableDir, "config.yaml"), nil
}
