package monitor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"

	serial "github.com/luhtfiimanal/serialmon"
)

// deviceReader tails one device until ctx is cancelled or the device fails.
type deviceReader struct {
	device      string
	baud        int
	readTimeout time.Duration

	open    OpenFunc
	format  *Formatter
	console *Console
	now     func() time.Time
	logger  *slog.Logger
	decoder *encoding.Decoder
}

func (r *deviceReader) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	src, err := r.open(serial.Config{
		Device:      r.device,
		BaudRate:    r.baud,
		Delimiter:   "\n",
		ReadTimeout: r.readTimeout,
	})
	if err != nil {
		r.emit(r.format.ConnectFailed(&ConnectionError{Device: r.device, Err: err}))
		return
	}
	defer src.Close()

	r.logger.Debug("reader started", "device", r.device)
	defer r.logger.Debug("reader stopped", "device", r.device)
	r.emit(r.format.Connected(r.device, r.baud))

	for {
		if ctx.Err() != nil {
			return
		}
		raw, err := src.ReadLine()
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			r.emit(r.format.ReadFailed(&ReadError{Device: r.device, Err: err}))
			return
		}
		if ctx.Err() != nil {
			return
		}
		record, ok := r.format.Format(r.now(), r.device, r.decode(raw))
		if !ok {
			continue
		}
		r.emit(record)
	}
}

// decode interprets raw as UTF-8, replacing invalid sequences with U+FFFD.
func (r *deviceReader) decode(raw []byte) string {
	out, err := r.decoder.Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	return string(out)
}

func (r *deviceReader) emit(text string) {
	if err := r.console.Println(text); err != nil {
		r.logger.Warn("console write failed", "device", r.device, "err", err)
	}
}

func newDecoder() *encoding.Decoder {
	return unicode.UTF8.NewDecoder()
}
