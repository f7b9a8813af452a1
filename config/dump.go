package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the config file layout; durations are kept in their text form.
type fileConfig struct {
	Devices         []string `yaml:"devices"`
	Baud            int      `yaml:"baud"`
	ReadTimeout     string   `yaml:"read-timeout"`
	ShutdownTimeout string   `yaml:"shutdown-timeout"`
	DeviceWidth     int      `yaml:"device-width"`
	Color           string   `yaml:"color"`
	LogLevel        string   `yaml:"log-level"`
}

// MarshalYAML renders c in the format Load reads back.
func (c Config) MarshalYAML() (any, error) {
	devices := c.Devices
	if devices == nil {
		devices = []string{}
	}
	return fileConfig{
		Devices:         devices,
		Baud:            c.Baud,
		ReadTimeout:     c.ReadTimeout.String(),
		ShutdownTimeout: c.ShutdownTimeout.String(),
		DeviceWidth:     c.DeviceWidth,
		Color:           c.Color,
		LogLevel:        c.LogLevel,
	}, nil
}

// Dump returns c as a YAML config file.
func Dump(c Config) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
