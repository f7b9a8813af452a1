package monitor

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette is the ordered set of device colors, cycled by first-seen order.
var Palette = []lipgloss.Color{
	"6", // cyan
	"2", // green
	"3", // yellow
	"5", // magenta
	"4", // blue
	"1", // red
}

// Keyword is one of the protocol words highlighted in device output.
type Keyword int

const (
	KeywordHello Keyword = iota
	KeywordClaim
	KeywordJoin
	KeywordAssign
	KeywordCoordinator
	KeywordMember

	keywordCount
)

var keywordTable = [keywordCount]struct {
	text  string
	color lipgloss.Color
}{
	KeywordHello:       {"HELLO", "2"},
	KeywordClaim:       {"CLAIM", "3"},
	KeywordJoin:        {"JOIN", "4"},
	KeywordAssign:      {"ASSIGN", "5"},
	KeywordCoordinator: {"COORDINATOR", "1"},
	KeywordMember:      {"MEMBER", "6"},
}

func (k Keyword) String() string {
	if k < 0 || k >= keywordCount {
		return ""
	}
	return keywordTable[k].text
}

// Keywords returns every highlighted keyword in declaration order.
func Keywords() []Keyword {
	out := make([]Keyword, 0, keywordCount)
	for k := Keyword(0); k < keywordCount; k++ {
		out = append(out, k)
	}
	return out
}

// Styles holds the lipgloss styles used for records and banners. Build it once
// with NewStyles; it is read-only afterwards.
type Styles struct {
	renderer *lipgloss.Renderer

	Timestamp lipgloss.Style
	Debug     lipgloss.Style
	Title     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Danger    lipgloss.Style

	keywords [keywordCount]lipgloss.Style
}

// NewStyles builds styles for the renderer's color profile.
func NewStyles(r *lipgloss.Renderer) Styles {
	s := Styles{
		renderer: r,

		Timestamp: r.NewStyle().Faint(true),
		Debug:     r.NewStyle().Faint(true).TabWidth(lipgloss.NoTabConversion),
		Title:     r.NewStyle().Bold(true),
		Success:   r.NewStyle().Foreground(lipgloss.Color("2")),
		Warning:   r.NewStyle().Foreground(lipgloss.Color("3")),
		Danger:    r.NewStyle().Foreground(lipgloss.Color("1")),
	}
	for k, entry := range keywordTable {
		s.keywords[k] = r.NewStyle().Foreground(entry.color).Bold(true)
	}
	return s
}

// Keyword returns the highlight style for k.
func (s Styles) Keyword(k Keyword) lipgloss.Style {
	return s.keywords[k]
}

// Device returns the style for a device column drawn in color.
func (s Styles) Device(color lipgloss.Color) lipgloss.Style {
	return s.renderer.NewStyle().Foreground(color).Bold(true)
}
