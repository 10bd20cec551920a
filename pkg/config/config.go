package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/lookout/pkg/log"
)

// Config is the service configuration of a Lookout instance. The dashboard
// document itself lives in the store, not here.
type Config struct {
	ListenAddr        string `yaml:"listen_addr"`
	DataDir           string `yaml:"data_dir"`
	LogLevel          string `yaml:"log_level"`
	LogJSON           bool   `yaml:"log_json"`
	StatusPushSeconds int    `yaml:"status_push_seconds"`
	ICMPPrivileged    bool   `yaml:"icmp_privileged"`
	TestTimeoutMs     int    `yaml:"test_timeout_ms"`
	ReadOnly          bool   `yaml:"read_only"`
}

// DefaultConfig returns the configuration used when no file is provided
func DefaultConfig() Config {
	return Config{
		ListenAddr:        ":3000",
		DataDir:           "./data",
		LogLevel:          "info",
		StatusPushSeconds: 30,
		TestTimeoutMs:     5000,
	}
}

// Load reads configuration from a yaml file. An empty path or a missing file
// falls back to defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fills in defaults for unset values and rejects invalid ones
func (c *Config) Validate() error {
	defaults := DefaultConfig()
	if c.ListenAddr == "" {
		c.ListenAddr = defaults.ListenAddr
	}
	if c.DataDir == "" {
		c.DataDir = defaults.DataDir
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if c.StatusPushSeconds <= 0 {
		c.StatusPushSeconds = defaults.StatusPushSeconds
	}
	if c.TestTimeoutMs <= 0 {
		c.TestTimeoutMs = defaults.TestTimeoutMs
	}

	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	c.LogLevel = string(level)
	return nil
}

// StatusPushInterval returns how often websocket clients get a full snapshot
func (c Config) StatusPushInterval() time.Duration {
	return time.Duration(c.StatusPushSeconds) * time.Second
}

// TestTimeout returns the timeout of ad-hoc host tests
func (c Config) TestTimeout() time.Duration {
	return time.Duration(c.TestTimeoutMs) * time.Millisecond
}
