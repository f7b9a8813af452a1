package serial

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrTimeout is returned by ReadLine when no complete line arrived within
	// Config.ReadTimeout. It matches os.ErrDeadlineExceeded.
	ErrTimeout = fmt.Errorf("serial: read timeout: %w", os.ErrDeadlineExceeded)
	// ErrClosed is returned by ReadLine once Close has been called.
	ErrClosed = errors.New("serialreader closed")
	// ErrHangup is returned when the device reports a hangup or error condition.
	ErrHangup = errors.New("serial: device hung up")
	// ErrUnsupportedBaud is returned by Open for baud rates without a termios constant.
	ErrUnsupportedBaud = errors.New("serial: unsupported baud rate")
)

const defaultDelimiter = "\r\n"

// SerialReader provides low-latency, killable, line-oriented access to a Linux serial port.
// ReadLine must be called from a single goroutine; Close may be called from any goroutine.
type SerialReader struct {
	fd        int
	file      *os.File
	done      chan struct{}
	closeOnce sync.Once
	config    Config
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd

	buf     []byte
	pending []byte
}

// Config holds configuration parameters for opening a serial port.
type Config struct {
	Device      string
	BaudRate    int
	Delimiter   string        // default "\r\n"
	ReadTimeout time.Duration // zero blocks until a line arrives
}

// Open opens a serial port using the provided Config and returns a SerialReader.
// The port is configured for raw, low-latency, non-buffered operation.
func Open(cfg Config) (*SerialReader, error) {
	baud, ok := baudToUnix(cfg.BaudRate)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBaud, cfg.BaudRate)
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = defaultDelimiter
	}

	fd, err := syscall.Open(cfg.Device, syscall.O_RDWR|syscall.O_NOCTTY|syscall.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB
	termios.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL

	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	// Turn back into blocking mode now that config is done
	if err := syscall.SetNonblock(fd, false); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("set blocking: %w", err)
	}

	// Create self-pipe for killability
	pipeFds := make([]int, 2)
	if err := unix.Pipe2(pipeFds, unix.O_CLOEXEC); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	return &SerialReader{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cfg.Device),
		done:   make(chan struct{}),
		config: cfg,
		pipeR:  pipeFds[0],
		pipeW:  pipeFds[1],
		buf:    make([]byte, 4096),
	}, nil
}

// Device returns the path the reader was opened with.
func (s *SerialReader) Device() string {
	return s.config.Device
}

// ReadLine returns the next line without its delimiter. Bytes received after the
// delimiter are kept for the following call.
//
// When Config.ReadTimeout is set the call gives up with ErrTimeout after that long;
// a partially received line is retained, not discarded.
func (s *SerialReader) ReadLine() ([]byte, error) {
	var deadline time.Time
	if s.config.ReadTimeout > 0 {
		deadline = time.Now().Add(s.config.ReadTimeout)
	}
	for {
		select {
		case <-s.done:
			return nil, ErrClosed
		default:
		}
		if line, ok := s.nextLine(); ok {
			return line, nil
		}

		wait := -1
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return nil, ErrTimeout
			}
			wait = int((remaining + time.Millisecond - 1) / time.Millisecond)
		}

		// Use poll to wait for data or kill signal
		pfd := []unix.PollFd{
			{Fd: int32(s.fd), Events: unix.POLLIN},
			{Fd: int32(s.pipeR), Events: unix.POLLIN},
		}
		n, err := unix.Poll(pfd, wait)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return nil, fmt.Errorf("poll: %w", err)
		}
		select {
		case <-s.done:
			return nil, ErrClosed
		default:
		}
		if n == 0 {
			continue
		}
		if pfd[1].Revents&unix.POLLIN != 0 {
			// Drain pipe
			var b [1]byte
			unix.Read(s.pipeR, b[:])
			return nil, ErrClosed
		}
		if pfd[0].Revents&unix.POLLIN != 0 {
			n, err := s.file.Read(s.buf)
			if n > 0 {
				s.pending = append(s.pending, s.buf[:n]...)
				continue
			}
			if err == nil {
				err = io.EOF
			}
			return nil, err
		}
		if pfd[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			return nil, ErrHangup
		}
	}
}

func (s *SerialReader) nextLine() ([]byte, bool) {
	idx := bytes.Index(s.pending, []byte(s.config.Delimiter))
	if idx < 0 {
		return nil, false
	}
	line := make([]byte, idx)
	copy(line, s.pending[:idx])
	s.pending = s.pending[idx+len(s.config.Delimiter):]
	return line, true
}

// Close closes the serial port and unblocks any pending ReadLine call.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *SerialReader) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		// Wake up poll using self-pipe
		if s.pipeW > 0 {
			unix.Write(s.pipeW, []byte{1})
		}
		if s.file != nil {
			err = s.file.Close()
		}
		if s.pipeR > 0 {
			unix.Close(s.pipeR)
		}
		if s.pipeW > 0 {
			unix.Close(s.pipeW)
		}
	})
	return err
}

var baudRates = map[int]uint32{
	1200:   unix.B1200,
	2400:   unix.B2400,
	4800:   unix.B4800,
	9600:   unix.B9600,
	19200:  unix.B19200,
	38400:  unix.B38400,
	57600:  unix.B57600,
	115200: unix.B115200,
	230400: unix.B230400,
	460800: unix.B460800,
	921600: unix.B921600,
}

// SupportedBaudRates lists the baud rates accepted by Open in ascending order.
func SupportedBaudRates() []int {
	rates := make([]int, 0, len(baudRates))
	for rate := range baudRates {
		rates = append(rates, rate)
	}
	sort.Ints(rates)
	return rates
}

// IsSupportedBaud reports whether Open accepts the given baud rate.
func IsSupportedBaud(baud int) bool {
	_, ok := baudRates[baud]
	return ok
}

func baudToUnix(baud int) (uint32, bool) {
	b, ok := baudRates[baud]
	return b, ok
}
