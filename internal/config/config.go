// Package config holds jobq server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/me/jobq/internal/jobexpr"
	"github.com/me/jobq/internal/logging"
	"github.com/me/jobq/internal/validate"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds configuration for the jobq server.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`           // Listen address (default ":8080")
	LogLevel      string        `yaml:"log_level"`      // Log level: debug, info, warn, error
	LogFormat     string        `yaml:"log_format"`     // Log format: text, json
	MinPriority   int           `yaml:"min_priority"`   // Lowest accepted priority (default 1)
	MaxPriority   int           `yaml:"max_priority"`   // Highest accepted priority (default 10)
	MaxPending    int           `yaml:"max_pending"`    // Pending queue capacity, 0 for unlimited
	FilterTimeout time.Duration `yaml:"filter_timeout"` // Per-job budget for "where" expressions
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          ":8080",
		LogLevel:      "info",
		LogFormat:     logging.FormatText,
		MinPriority:   validate.DefaultMinPriority,
		MaxPriority:   validate.DefaultMaxPriority,
		MaxPending:    0,
		FilterTimeout: jobexpr.DefaultTimeout,
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *ServerConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports configuration values the server cannot run with.
func (c ServerConfig) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.MinPriority > c.MaxPriority {
		errs = append(errs, fmt.Errorf("min_priority (%d) is greater than max_priority (%d)", c.MinPriority, c.MaxPriority))
	}
	if c.MaxPending < 0 {
		errs = append(errs, fmt.Errorf("max_pending must not be negative, got %d", c.MaxPending))
	}
	if c.FilterTimeout < 0 {
		errs = append(errs, fmt.Errorf("filter_timeout must not be negative, got %s", c.FilterTimeout))
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Rules returns the submission rules for the configured priority range.
func (c ServerConfig) Rules() validate.Rules {
	return validate.Rules{MinPriority: c.MinPriority, MaxPriority: c.MaxPriority}
}
