package monitor

import (
	"io"
	"sync"
)

// Console is the single serialized sink all device readers print through.
// Each Println is one Write call made under a lock, so records from different
// devices never interleave mid-line.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole wraps w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Println writes text followed by a newline as one unit. Text may span
// several lines; they stay together.
func (c *Console) Println(text string) error {
	buf := make([]byte, 0, len(text)+1)
	buf = append(buf, text...)
	buf = append(buf, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.w.Write(buf)
	return err
}
