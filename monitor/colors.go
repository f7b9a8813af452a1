package monitor

import "github.com/charmbracelet/lipgloss"

// ColorAssignment maps device identities to palette colors. The i-th distinct
// device gets palette[i % len(palette)].
type ColorAssignment struct {
	devices []string
	colors  map[string]lipgloss.Color
}

// AssignColors assigns colors by first-seen order. Repeated devices keep the
// color of their first occurrence. An empty palette falls back to Palette.
func AssignColors(devices []string, palette []lipgloss.Color) ColorAssignment {
	if len(palette) == 0 {
		palette = Palette
	}
	a := ColorAssignment{colors: make(map[string]lipgloss.Color, len(devices))}
	for _, device := range devices {
		if _, ok := a.colors[device]; ok {
			continue
		}
		a.colors[device] = palette[len(a.devices)%len(palette)]
		a.devices = append(a.devices, device)
	}
	return a
}

// Color returns the color assigned to device.
func (a ColorAssignment) Color(device string) (lipgloss.Color, bool) {
	c, ok := a.colors[device]
	return c, ok
}

// Devices returns the distinct devices in first-seen order.
func (a ColorAssignment) Devices() []string {
	return append([]string(nil), a.devices...)
}

// Len is the number of distinct devices.
func (a ColorAssignment) Len() int { return len(a.devices) }
