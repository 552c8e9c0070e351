package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// BLEDROP_DOWNLOAD_DIR.
const envPrefix = "bledrop"

// Config holds all application configuration.
type Config struct {
	DeviceName       string `yaml:"device_name" envconfig:"DEVICE_NAME"`
	DownloadDir      string `yaml:"download_dir" envconfig:"DOWNLOAD_DIR"`
	ReceiveEnabled   bool   `yaml:"receive_enabled" envconfig:"RECEIVE_ENABLED"`
	AdvertiseOnStart bool   `yaml:"advertise_on_start" envconfig:"ADVERTISE_ON_START"`
	// StatusNotify enables the optional TX-characteristic status
	// notification after a completed transfer. The protocol itself has
	// no acknowledgment; this is an extension, off by default.
	StatusNotify bool   `yaml:"status_notify" envconfig:"STATUS_NOTIFY"`
	LogLevel     string `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bledrop")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DeviceName:       "Pi-BLE-UART",
		DownloadDir:      "./downloads",
		ReceiveEnabled:   true,
		AdvertiseOnStart: true,
		StatusNotify:     false,
		LogLevel:         "info",
	}
}

// Load reads and parses a YAML config file, then applies BLEDROP_*
// environment overrides. Missing fields keep their defaults. Tilde (~) in
// download_dir is expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}

	cfg.DownloadDir = expandTilde(cfg.DownloadDir)

	return cfg, nil
}

// FromEnv returns the defaults with BLEDROP_* environment overrides
// applied, for running without a config file.
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("applying env overrides: %w", err)
	}
	cfg.DownloadDir = expandTilde(cfg.DownloadDir)
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.DeviceName == "" {
		return fmt.Errorf("device_name must not be empty")
	}

	if c.DownloadDir == "" {
		return fmt.Errorf("download_dir must not be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
