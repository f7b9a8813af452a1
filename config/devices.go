package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrNoDevices is returned when no device specifier names a device.
	ErrNoDevices = errors.New("no devices specified")
	// ErrDeviceNotFound is returned when a device path does not exist.
	ErrDeviceNotFound = errors.New("device does not exist")
)

// ParseDevices flattens device specifiers ("/dev/ttyA" or "/dev/ttyA,/dev/ttyB")
// into one list. Entries are trimmed, empty entries dropped and duplicates removed
// keeping the first occurrence.
func ParseDevices(specs []string) []string {
	seen := make(map[string]struct{})
	var devices []string
	for _, spec := range specs {
		for _, part := range strings.Split(spec, ",") {
			device := strings.TrimSpace(part)
			if device == "" {
				continue
			}
			if _, dup := seen[device]; dup {
				continue
			}
			seen[device] = struct{}{}
			devices = append(devices, device)
		}
	}
	return devices
}

// DeviceError reports a device path that failed validation.
type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// CheckDevices fails fast on an empty list or on the first path that cannot be stat'ed.
func CheckDevices(devices []string) error {
	if len(devices) == 0 {
		return ErrNoDevices
	}
	for _, device := range devices {
		if _, err := os.Stat(device); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = ErrDeviceNotFound
			}
			return &DeviceError{Device: device, Err: err}
		}
	}
	return nil
}
