// Package config loads archbits settings from a YAML or JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"archbits/internal/probe"
)

// EnvPath names the environment variable consulted when no --config flag
// is given.
const EnvPath = "ARCHBITS_CONFIG"

// Recover modes for ResolveConfig.Recover.
const (
	RecoverAll             = "all"
	RecoverInvalidArgument = "invalid-argument"
)

// Config holds all archbits settings.
type Config struct {
	Probe   ProbeConfig   `yaml:"probe" json:"probe"`
	Resolve ResolveConfig `yaml:"resolve" json:"resolve"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ProbeConfig selects and tunes the architecture probe.
type ProbeConfig struct {
	Mode        string `yaml:"mode" json:"mode"` // auto, header, file
	FileCommand string `yaml:"file_command" json:"file_command"`
	Timeout     string `yaml:"timeout" json:"timeout"`
}

// ResolveConfig holds the default hints and error policy.
type ResolveConfig struct {
	Bits     string `yaml:"bits" json:"bits"`
	Linkage  string `yaml:"linkage" json:"linkage"`
	Recover  string `yaml:"recover" json:"recover"` // all, invalid-argument
	Parallel int    `yaml:"parallel" json:"parallel"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text, json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Probe: ProbeConfig{
			Mode:        probe.NameAuto,
			FileCommand: probe.DefaultFileCommand,
			Timeout:     "5s",
		},
		Resolve: ResolveConfig{
			Recover:  RecoverAll,
			Parallel: 4,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Path returns flagValue, falling back to $ARCHBITS_CONFIG. Returns "" if
// neither is set.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvPath)
}

// LoadFromPath reads a config file over the defaults. An empty path
// yields Default().
func LoadFromPath(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses data over the defaults. ext is the file extension used as a
// format hint; when empty, content starting with "{" is JSON and anything
// else YAML.
func Load(data []byte, ext string) (*Config, error) {
	cfg := Default()
	ext = strings.ToLower(ext)
	if ext == "" && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		ext = ".json"
	}
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields and durations.
func (c *Config) Validate() error {
	switch c.Probe.Mode {
	case "", probe.NameAuto, probe.NameHeader, probe.NameFile:
	default:
		return fmt.Errorf("probe.mode: unknown probe %q", c.Probe.Mode)
	}
	if _, err := c.ProbeTimeout(); err != nil {
		return err
	}
	switch c.Resolve.Recover {
	case "", RecoverAll, RecoverInvalidArgument:
	default:
		return fmt.Errorf("resolve.recover: want %q or %q, got %q", RecoverAll, RecoverInvalidArgument, c.Resolve.Recover)
	}
	if c.Resolve.Parallel < 0 {
		return fmt.Errorf("resolve.parallel: must not be negative, got %d", c.Resolve.Parallel)
	}
	return nil
}

// ProbeTimeout parses Probe.Timeout. Empty means no timeout.
func (c *Config) ProbeTimeout() (time.Duration, error) {
	if c.Probe.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Probe.Timeout)
	if err != nil {
		return 0, fmt.Errorf("probe.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("probe.timeout: must not be negative, got %s", d)
	}
	return d, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
