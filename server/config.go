package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bsthun/gut"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen      string `yaml:"listen" validate:"required"`
	DatabaseURL string `yaml:"database_url" validate:"required"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

func defaultConfig() *Config {
	return &Config{
		Listen:   ":3000",
		LogLevel: "info",
	}
}

// LoadConfig reads the YAML file at FLOWCHART_CONFIG_PATH (default
// .local/config.yml). A missing file is fine when DATABASE_URL is set.
func LoadConfig() (*Config, error) {
	// * parse arguments
	path := os.Getenv("FLOWCHART_CONFIG_PATH")
	if path == "" {
		path = ".local/config.yml"
	}

	config := defaultConfig()

	// * read config
	yml, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yml, config); err != nil {
			return nil, fmt.Errorf("unable to parse configuration file: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("unable to read configuration file: %w", err)
	}

	// * environment overrides
	if url := os.Getenv("DATABASE_URL"); url != "" {
		config.DatabaseURL = url
	}

	// * validate config
	if err := gut.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
