// Package config loads waextract settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"waextract/pkg/models"
)

const appName = "waextract"

// Config is the on-disk configuration. Zero values are replaced by
// defaults after loading.
type Config struct {
	ADBPath        string        `yaml:"adb_path"`
	Serial         string        `yaml:"serial"`
	DatabaseSource string        `yaml:"database_source"`
	MediaSource    string        `yaml:"media_source"`
	LogDir         string        `yaml:"log_dir"`
	CategoryMatch  string        `yaml:"category_match"` // substring | exact
	Progress       bool          `yaml:"progress"`
	History        HistoryConfig `yaml:"history"`
}

type HistoryConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName), nil
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path, or the default location when path is empty. A missing
// default file yields the defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			cfg := &Config{}
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DatabaseSource == "" {
		c.DatabaseSource = models.DefaultDatabaseSource
	}
	if c.MediaSource == "" {
		c.MediaSource = models.DefaultMediaSource
	}
	if c.LogDir == "" {
		c.LogDir = "."
	}
	if c.CategoryMatch == "" {
		c.CategoryMatch = "substring"
	}
	if c.History.Enabled == nil {
		enabled := true
		c.History.Enabled = &enabled
	}
	if c.History.Path == "" {
		if dir, err := configDir(); err == nil {
			c.History.Path = filepath.Join(dir, "history.db")
		}
	}
}

func (c *Config) validate() error {
	switch c.CategoryMatch {
	case "substring", "exact":
	default:
		return fmt.Errorf("category_match must be substring or exact, got %q", c.CategoryMatch)
	}
	return nil
}

// HistoryEnabled reports whether runs are recorded in the catalog.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled != nil && *c.History.Enabled && c.History.Path != ""
}

// SetHistoryEnabled overrides the history switch, e.g. from a CLI flag.
func (c *Config) SetHistoryEnabled(enabled bool) {
	c.History.Enabled = &enabled
}
