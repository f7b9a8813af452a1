package monitor

import "fmt"

// ConnectionError means a device could not be opened or configured. The device
// is skipped; other devices keep running.
type ConnectionError struct {
	Device string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Device, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ReadError means a connected device failed with something other than a read
// timeout. Its reader stops; there is no reconnect.
type ReadError struct {
	Device string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Device, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
