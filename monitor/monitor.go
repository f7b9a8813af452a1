package monitor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaud            = 38400
	DefaultReadTimeout     = time.Second
	DefaultShutdownTimeout = 3 * time.Second
)

// Options tune a Monitor. Zero values select the defaults.
type Options struct {
	Baud            int
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	DeviceWidth     int

	Open   OpenFunc
	Now    func() time.Time
	Logger *slog.Logger
}

// Monitor fans the output of one reader per device into a shared Console.
type Monitor struct {
	colors  ColorAssignment
	format  *Formatter
	console *Console
	opts    Options
}

// New assigns device colors in first-seen order and prepares the formatter.
func New(devices []string, styles Styles, console *Console, opts Options) *Monitor {
	if opts.Baud <= 0 {
		opts.Baud = DefaultBaud
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.Open == nil {
		opts.Open = OpenSerial
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	colors := AssignColors(devices, Palette)
	return &Monitor{
		colors:  colors,
		format:  NewFormatter(styles, colors, opts.DeviceWidth),
		console: console,
		opts:    opts,
	}
}

// Formatter returns the formatter records and banners are rendered with.
func (m *Monitor) Formatter() *Formatter { return m.format }

// Run prints the banner and tails every device concurrently. It returns when
// all readers have finished on their own, or after ctx is cancelled and the
// readers have wound down (bounded by Options.ShutdownTimeout).
func (m *Monitor) Run(ctx context.Context) {
	devices := m.colors.Devices()
	m.emit(m.format.Banner(len(devices), m.opts.Baud))

	// readCtx is the run state: cancelled exactly once, by Run only.
	readCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(readCtx)
	for _, device := range devices {
		r := &deviceReader{
			device:      device,
			baud:        m.opts.Baud,
			readTimeout: m.opts.ReadTimeout,
			open:        m.opts.Open,
			format:      m.format,
			console:     m.console,
			now:         m.opts.Now,
			logger:      m.opts.Logger,
			decoder:     newDecoder(),
		}
		g.Go(func() error {
			r.run(gctx)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.opts.Logger.Debug("all readers finished")
		return
	case <-ctx.Done():
	}

	m.emit(m.format.Stopping())
	stop()

	timer := time.NewTimer(m.opts.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		m.opts.Logger.Warn("readers did not stop in time", "timeout", m.opts.ShutdownTimeout)
	}
}

func (m *Monitor) emit(text string) {
	if err := m.console.Println(text); err != nil {
		m.opts.Logger.Warn("console write failed", "err", err)
	}
}
