package monitor

import (
	serial "github.com/luhtfiimanal/serialmon"
)

// LineSource is a per-device stream of delimiter-separated lines.
//
// ReadLine waits at most the configured read timeout; a timeout is reported
// with an error matching os.ErrDeadlineExceeded and is not a failure.
type LineSource interface {
	ReadLine() ([]byte, error)
	Close() error
}

// OpenFunc opens and configures the line source for one device.
type OpenFunc func(cfg serial.Config) (LineSource, error)

// OpenSerial opens cfg.Device as a raw termios serial port.
func OpenSerial(cfg serial.Config) (LineSource, error) {
	r, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}
