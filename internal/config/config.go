// Package config loads and validates the simulator configuration from
// defaults, an optional YAML file, and environment overrides, in that
// order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Config is the complete process configuration. Mode and rate are fixed
// for the process lifetime once validated.
type Config struct {
	Listen string  `yaml:"listen"`
	Mode   string  `yaml:"mode"`
	RateHz float64 `yaml:"rateHz"`

	// QueueSize bounds each session's delivery queue; under backpressure
	// the oldest queued packets are dropped.
	QueueSize int `yaml:"queueSize"`

	// Seed fixes the noise source for reproducible runs; 0 seeds from the
	// clock.
	Seed int64 `yaml:"seed"`

	AuditDB string    `yaml:"auditDb"`
	Log     LogConfig `yaml:"log"`

	// DevMode mounts the admin debugging routes.
	DevMode bool `yaml:"devMode"`
}

// LogConfig holds rotating log file settings. An empty File keeps
// logging on stderr only.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
}

// Default returns the built-in defaults: gait mode at 10 Hz on :8080.
func Default() *Config {
	return &Config{
		Listen:    ":8080",
		Mode:      "gait",
		RateHz:    10.0,
		QueueSize: 16,
		AuditDB:   "exosim_audit.db",
	}
}

// Load builds the effective configuration. path may be empty, in which
// case only defaults and environment overrides apply. A configuration
// that fails validation is fatal to the caller: no partially configured
// simulator is ever constructed.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides applies EXOSIM_* variables, plus the legacy
// DATA_MODE / UPDATE_RATE_HZ names the original deployment used.
func applyEnvOverrides(cfg *Config) {
	if v := firstEnv("EXOSIM_MODE", "DATA_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := firstEnv("EXOSIM_RATE_HZ", "UPDATE_RATE_HZ"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateHz = rate
		}
	}
	if v := os.Getenv("EXOSIM_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("EXOSIM_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Validate rejects configurations the engine would refuse anyway, so the
// failure surfaces before any goroutine starts.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Mode != "gait" && c.Mode != "random" {
		return fmt.Errorf("invalid mode %q (must be \"gait\" or \"random\")", c.Mode)
	}
	if c.RateHz <= 0 {
		return fmt.Errorf("invalid update rate %v Hz (must be > 0)", c.RateHz)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("invalid queue size %d (must be >= 1)", c.QueueSize)
	}
	return nil
}
