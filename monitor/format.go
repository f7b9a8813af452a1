package monitor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	// TimestampLayout renders wall-clock time as HH:MM:SS.mmm.
	TimestampLayout = "15:04:05.000"
	// DebugPrefix marks device output that is dimmed and never highlighted.
	DebugPrefix = "DEBUG:"
	// DefaultDeviceWidth is the width the device column is right-aligned to.
	DefaultDeviceWidth = 15
)

// keywordsByLength is the match order for highlighting: longest first, so a
// keyword contained in a longer one can never split it.
var keywordsByLength = func() []Keyword {
	ks := Keywords()
	sort.SliceStable(ks, func(i, j int) bool {
		return len(ks[i].String()) > len(ks[j].String())
	})
	return ks
}()

// Formatter renders device lines into console records. It has no side effects
// and is safe for concurrent use.
type Formatter struct {
	styles   Styles
	width    int
	devices  map[string]lipgloss.Style
	fallback lipgloss.Style
}

// NewFormatter precomputes one column style per assigned device.
func NewFormatter(styles Styles, colors ColorAssignment, width int) *Formatter {
	if width <= 0 {
		width = DefaultDeviceWidth
	}
	f := &Formatter{
		styles:   styles,
		width:    width,
		devices:  make(map[string]lipgloss.Style, colors.Len()),
		fallback: styles.Title,
	}
	for _, device := range colors.Devices() {
		color, _ := colors.Color(device)
		f.devices[device] = styles.Device(color)
	}
	return f
}

// Format renders one record:
//
//	[HH:MM:SS.mmm] <device right-aligned>: <message>
//
// The line is trimmed first; ok is false when nothing is left to print.
func (f *Formatter) Format(ts time.Time, device, line string) (record string, ok bool) {
	message := strings.TrimSpace(line)
	if message == "" {
		return "", false
	}

	style, found := f.devices[device]
	if !found {
		style = f.fallback
	}

	var b strings.Builder
	b.WriteString(f.styles.Timestamp.Render("[" + ts.Format(TimestampLayout) + "]"))
	b.WriteByte(' ')
	b.WriteString(style.Render(fmt.Sprintf("%*s:", f.width, device)))
	b.WriteByte(' ')
	b.WriteString(f.Classify(message))
	return b.String(), true
}

// Classify styles a trimmed message: DEBUG: lines are dimmed as a whole,
// anything else gets its keywords highlighted.
func (f *Formatter) Classify(message string) string {
	if strings.HasPrefix(message, DebugPrefix) {
		return f.styles.Debug.Render(message)
	}
	return f.highlight(message)
}

// highlight scans left to right. At each position the longest matching keyword
// wins and its text is consumed, so highlighted spans never overlap.
func (f *Formatter) highlight(message string) string {
	var b strings.Builder
	plain := 0
	for i := 0; i < len(message); {
		k, ok := keywordAt(message, i)
		if !ok {
			i++
			continue
		}
		b.WriteString(message[plain:i])
		b.WriteString(f.styles.Keyword(k).Render(k.String()))
		i += len(k.String())
		plain = i
	}
	if plain == 0 {
		return message
	}
	b.WriteString(message[plain:])
	return b.String()
}

func keywordAt(s string, i int) (Keyword, bool) {
	for _, k := range keywordsByLength {
		if strings.HasPrefix(s[i:], k.String()) {
			return k, true
		}
	}
	return 0, false
}
