package monitor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	serial "github.com/luhtfiimanal/serialmon"
)

var errDeviceGone = errors.New("device gone")

var testTime = time.Date(2025, 3, 14, 9, 5, 7, 42*int(time.Millisecond), time.Local)

func fixedNow() time.Time { return testTime }

func stylesFor(profile termenv.Profile) Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)
	return NewStyles(r)
}

// lockedBuffer is a concurrency-safe io.Writer for capturing console output.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// lines returns the visible text of every printed line.
func (b *lockedBuffer) lines() []string {
	text := strings.TrimSuffix(ansi.Strip(b.String()), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func ansiFree(s string) string { return ansi.Strip(s) }

type fakeRead struct {
	line string
	err  error
}

// fakeSource replays scripted reads, then reports timeouts every tick until closed.
type fakeSource struct {
	reads  chan fakeRead
	closed chan struct{}
	once   sync.Once
	tick   time.Duration
}

func newFakeSource(reads ...fakeRead) *fakeSource {
	f := &fakeSource{
		reads:  make(chan fakeRead, len(reads)+16),
		closed: make(chan struct{}),
		tick:   10 * time.Millisecond,
	}
	for _, r := range reads {
		f.reads <- r
	}
	return f
}

func (f *fakeSource) ReadLine() ([]byte, error) {
	select {
	case r := <-f.reads:
		if r.err != nil {
			return nil, r.err
		}
		return []byte(r.line), nil
	case <-f.closed:
		return nil, serial.ErrClosed
	case <-time.After(f.tick):
		return nil, serial.ErrTimeout
	}
}

func (f *fakeSource) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeSource) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// openFakes opens sources by device path; unknown paths fail like a missing device.
func openFakes(sources map[string]LineSource) OpenFunc {
	return func(cfg serial.Config) (LineSource, error) {
		src, ok := sources[cfg.Device]
		if !ok {
			return nil, fmt.Errorf("open failed: %w", syscall.ENOENT)
		}
		return src, nil
	}
}

func recordLine(device, message string) string {
	return fmt.Sprintf("[09:05:07.042] %*s: %s", DefaultDeviceWidth, device, message)
}
