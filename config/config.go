// Package config resolves serialmon's run configuration from defaults, an
// optional YAML file, SERIALMON_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	serial "github.com/luhtfiimanal/serialmon"
	"github.com/luhtfiimanal/serialmon/monitor"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyDevices         = "devices"
	KeyBaud            = "baud"
	KeyReadTimeout     = "read-timeout"
	KeyShutdownTimeout = "shutdown-timeout"
	KeyDeviceWidth     = "device-width"
	KeyColor           = "color"
	KeyLogLevel        = "log-level"
)

const (
	DefaultBaud            = monitor.DefaultBaud
	DefaultReadTimeout     = monitor.DefaultReadTimeout
	DefaultShutdownTimeout = monitor.DefaultShutdownTimeout
	DefaultDeviceWidth     = monitor.DefaultDeviceWidth
	DefaultColor           = ColorAuto
	DefaultLogLevel        = "warn"

	maxDeviceWidth = 64
	envPrefix      = "SERIALMON"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ErrInvalid wraps every validation failure returned by Load.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration for one run.
type Config struct {
	Devices         []string      `mapstructure:"devices"`
	Baud            int           `mapstructure:"baud"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	DeviceWidth     int           `mapstructure:"device-width"`
	Color           string        `mapstructure:"color"`
	LogLevel        string        `mapstructure:"log-level"`

	// ConfigPath is the file that was read, empty when none was found.
	ConfigPath string `mapstructure:"-"`
}

// New returns a viper instance carrying serialmon's defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDevices, []string{})
	v.SetDefault(KeyBaud, DefaultBaud)
	v.SetDefault(KeyReadTimeout, DefaultReadTimeout)
	v.SetDefault(KeyShutdownTimeout, DefaultShutdownTimeout)
	v.SetDefault(KeyDeviceWidth, DefaultDeviceWidth)
	v.SetDefault(KeyColor, DefaultColor)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	return v
}

// DefaultPath returns $HOME/.config/serialmon/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "serialmon", "config.yml"), nil
}

// Load reads the config file at path (or the default location when path is
// empty) into v and returns the validated result. A missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	var cfg Config

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = defaultPath
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	if _, err := os.Stat(cfg.ConfigPath); err != nil {
		cfg.ConfigPath = ""
	}
	cfg.Color = strings.ToLower(strings.TrimSpace(cfg.Color))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges. Device existence is checked separately by CheckDevices.
func (c Config) Validate() error {
	if !serial.IsSupportedBaud(c.Baud) {
		return fmt.Errorf("%w: unsupported baud rate %d (supported: %v)", ErrInvalid, c.Baud, serial.SupportedBaudRates())
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, KeyReadTimeout, c.ReadTimeout)
	}
	if c.ShutdownTimeout < c.ReadTimeout {
		return fmt.Errorf("%w: %s (%s) must not be shorter than %s (%s)",
			ErrInvalid, KeyShutdownTimeout, c.ShutdownTimeout, KeyReadTimeout, c.ReadTimeout)
	}
	if c.DeviceWidth < 1 || c.DeviceWidth > maxDeviceWidth {
		return fmt.Errorf("%w: %s must be between 1 and %d, got %d", ErrInvalid, KeyDeviceWidth, maxDeviceWidth, c.DeviceWidth)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: %s must be auto, always or never, got %q", ErrInvalid, KeyColor, c.Color)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %s must be debug, info, warn or error, got %q", ErrInvalid, KeyLogLevel, c.LogLevel)
	}
	return nil
}
