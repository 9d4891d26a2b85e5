// Package config loads the transmark configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/transmark/core/format"
	"github.com/FocuswithJustin/transmark/internal/logging"
)

// Config represents the transmark configuration
type Config struct {
	Strict         bool   `yaml:"strict"`
	Parallel       bool   `yaml:"parallel"`
	Workers        int    `yaml:"workers,omitempty"`
	TableDelimiter string `yaml:"table_delimiter"`
	MarkdownFlavor string `yaml:"markdown_flavor"`
	WrapWidth      int    `yaml:"wrap_width"`
	Charset        string `yaml:"charset,omitempty"`
	SanitizeHTML   bool   `yaml:"sanitize_html"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	CacheEnabled   bool   `yaml:"cache_enabled"`
	CachePath      string `yaml:"cache_path"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		TableDelimiter: "\t",
		MarkdownFlavor: "gfm",
		LogLevel:       "warn",
		LogFormat:      "text",
		CachePath:      CachePath(),
	}
}

// ConfigPath returns the path to the config file.
// Can be overridden for testing
var ConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "transmark", "config.yaml")
}

// CachePath returns the default location of the conversion cache database.
// Can be overridden for testing
var CachePath = func() string {
	return filepath.Join(xdg.CacheHome, "transmark", "conversions.db")
}

// Load reads configuration from path, or from ConfigPath when path is empty.
// A missing file yields the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to path, or to ConfigPath when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.WrapWidth < 0 {
		return fmt.Errorf("wrap_width must not be negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	validFlavors := map[string]bool{
		"":           true,
		"gfm":        true,
		"github":     true,
		"commonmark": true,
		"cm":         true,
	}
	if !validFlavors[c.MarkdownFlavor] {
		return fmt.Errorf("invalid markdown_flavor '%s': must be one of: gfm, commonmark", c.MarkdownFlavor)
	}

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("invalid log_format: %w", err)
	}

	if c.CacheEnabled && c.CachePath == "" {
		return fmt.Errorf("cache_path cannot be empty when the cache is enabled")
	}

	return nil
}

// ExpandPaths expands ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error
	c.CachePath, err = expandPath(c.CachePath)
	if err != nil {
		return fmt.Errorf("failed to expand cache_path: %w", err)
	}
	return nil
}

// ConvertOptions returns the conversion options the configuration selects.
func (c *Config) ConvertOptions() format.Options {
	return format.Options{
		Strict:         c.Strict,
		Parallel:       c.Parallel,
		Workers:        c.Workers,
		TableDelimiter: c.TableDelimiter,
		Flavor:         c.MarkdownFlavor,
	}
}

// InitLogging configures the global logger from LogLevel and LogFormat.
func (c *Config) InitLogging() error {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	f, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, f)
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	return filepath.Abs(path)
}
