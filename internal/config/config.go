package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all runtime configuration for the claimsight service.
// Exactly one of DSN and DataDir selects the extract source.
type Config struct {
	DSN        string // reporting-database connection string
	DataDir    string // Parquet extract directory
	ListenAddr string
	LogFormat  string // "text" or "json"
	LogLevel   string // zerolog level name

	RefreshInterval time.Duration
	PollInterval    time.Duration
	RefreshCron     string // optional cron spec for extra refreshes
	Workers         int    // parallel table loads per cycle
}

// Defaults returns the baseline configuration flags and the config file
// merge into.
func Defaults() Config {
	return Config{
		ListenAddr:      ":8080",
		LogFormat:       "text",
		LogLevel:        "info",
		RefreshInterval: time.Hour,
		PollInterval:    10 * time.Second,
		Workers:         4,
	}
}

// yamlConfig is the on-disk YAML structure. Only the fields that make sense
// to pin per-deployment are exposed.
type yamlConfig struct {
	DSN             string `yaml:"dsn"`
	DataDir         string `yaml:"data_dir"`
	ListenAddr      string `yaml:"listen_addr"`
	LogFormat       string `yaml:"log_format"`
	LogLevel        string `yaml:"log_level"`
	RefreshInterval string `yaml:"refresh_interval"`
	PollInterval    string `yaml:"poll_interval"`
	RefreshCron     string `yaml:"refresh_cron"`
	Workers         int    `yaml:"workers"`
}

// LoadFromFile reads a YAML config file and merges its non-empty values into
// Config. Precedence against command-line flags is the caller's business.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if yc.DSN != "" {
		c.DSN = yc.DSN
	}
	if yc.DataDir != "" {
		c.DataDir = yc.DataDir
	}
	if yc.ListenAddr != "" {
		c.ListenAddr = yc.ListenAddr
	}
	if yc.LogFormat != "" {
		c.LogFormat = yc.LogFormat
	}
	if yc.LogLevel != "" {
		c.LogLevel = yc.LogLevel
	}
	if yc.RefreshCron != "" {
		c.RefreshCron = yc.RefreshCron
	}
	if yc.Workers > 0 {
		c.Workers = yc.Workers
	}
	if yc.RefreshInterval != "" {
		d, err := time.ParseDuration(yc.RefreshInterval)
		if err != nil {
			return fmt.Errorf("parse refresh_interval: %w", err)
		}
		c.RefreshInterval = d
	}
	if yc.PollInterval != "" {
		d, err := time.ParseDuration(yc.PollInterval)
		if err != nil {
			return fmt.Errorf("parse poll_interval: %w", err)
		}
		c.PollInterval = d
	}
	return nil
}

// Validate checks that exactly one source is configured and the directory,
// when given, exists.
func (c *Config) Validate() error {
	switch {
	case c.DSN == "" && c.DataDir == "":
		return fmt.Errorf("--dsn or --data-dir is required")
	case c.DSN != "" && c.DataDir != "":
		return fmt.Errorf("--dsn and --data-dir are mutually exclusive")
	}
	if c.DataDir != "" {
		info, err := os.Stat(c.DataDir)
		if err != nil {
			return fmt.Errorf("data dir not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data dir %s is not a directory", c.DataDir)
		}
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	return nil
}
