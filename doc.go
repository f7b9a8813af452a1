// Package serial provides a minimal, Linux-only serial port reader
// designed for tailing newline-delimited debug output from embedded devices.
//
// Features:
//   - Raw syscall-based serial I/O on Linux, no buffering delays
//   - Line-based reading with custom delimiter (default: \r\n)
//   - Bounded waits via Config.ReadTimeout, reported as ErrTimeout
//   - Self-pipe mechanism so Close unblocks a pending read
//   - PTY-based tests for reliability
//
// This package does **not** support Windows.
//
// Example usage:
//
//	reader, err := serial.Open(serial.Config{
//	    Device:      "/dev/ttyUSB0",
//	    BaudRate:    38400,
//	    Delimiter:   "\n",
//	    ReadTimeout: time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//
//	for {
//	    line, err := reader.ReadLine()
//	    if errors.Is(err, serial.ErrTimeout) {
//	        continue // nothing yet
//	    }
//	    if err != nil {
//	        log.Println("Read error:", err)
//	        return
//	    }
//	    fmt.Println("Received:", string(line))
//	}
//
// ErrTimeout matches os.ErrDeadlineExceeded, so callers that accept any
// line source can test for the standard deadline error instead.
package serial
