package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDump_Format(t *testing.T) {
	out, err := Dump(Config{
		Devices:         []string{"/dev/ttyAMA2", "/dev/ttyAMA3"},
		Baud:            115200,
		ReadTimeout:     250 * time.Millisecond,
		ShutdownTimeout: 2 * time.Second,
		DeviceWidth:     20,
		Color:           ColorNever,
		LogLevel:        "debug",
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out, &got))
	require.Equal(t, map[string]any{
		"devices":          []any{"/dev/ttyAMA2", "/dev/ttyAMA3"},
		"baud":             115200,
		"read-timeout":     "250ms",
		"shutdown-timeout": "2s",
		"device-width":     20,
		"color":            "never",
		"log-level":        "debug",
	}, got)
}

func TestDump_LoadsBack(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	want := Config{
		Devices:         []string{"/dev/ttyUSB0"},
		Baud:            9600,
		ReadTimeout:     500 * time.Millisecond,
		ShutdownTimeout: 5 * time.Second,
		DeviceWidth:     12,
		Color:           ColorAlways,
		LogLevel:        "info",
	}
	out, err := Dump(want)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, out, 0o600))

	got, err := Load(New(), path)
	require.NoError(t, err)
	want.ConfigPath = path
	require.Equal(t, want, got)
}

func TestDump_NoDevices(t *testing.T) {
	out, err := Dump(Config{Baud: DefaultBaud, ReadTimeout: time.Second, ShutdownTimeout: 3 * time.Second})
	require.NoError(t, err)
	require.Contains(t, string(out), "devices: []\n")
}
