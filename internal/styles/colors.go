package styles

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeeftor/captionctl/internal/caption"
)

// Color constants using a consistent palette
const (
	// Primary colors
	Primary     = "#7D56F4"
	PrimaryText = "#FAFAFA"

	// Status colors
	Success = "#04B575"
	Warning = "#FFA500"
	Error   = "#FF6B6B"
	Info    = "#00CED1"

	// Text colors
	Text      = "#FAFAFA"
	TextMuted = "#626262"
	TextBold  = "#90EE90"

	// Background colors
	Background     = "#1E1E1E"
	BackgroundCard = "#444444"

	Accent    = "#CCCCCC"
	Highlight = "#FFFF00"
)

// Predefined styles for common use cases
var (
	// Title styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(PrimaryText)).
			Background(lipgloss.Color(Primary)).
			Padding(0, 1)

	// Status styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Success)).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Error)).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Warning)).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Info)).
			Bold(true)

	// Text styles
	BoldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(TextBold)).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(TextMuted)).
			Italic(true)

	// Box styles
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(Primary)).
			Padding(1, 1).
			Margin(0, 1)

	// Parameter and config display styles
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(Primary)).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(TextBold)).
			Margin(1, 0, 0, 0)

	KeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Info)).
			Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Text))

	DefaultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(TextMuted)).
			Italic(true)

	CodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Primary)).
			Bold(true)
)

// bigFontVmin is the font size from which captions render bold in a terminal
const bigFontVmin = 10

// CaptionStyle translates a display style into its terminal rendition. Terminals
// have no font sizes, so large fonts become bold text and a text stroke becomes a
// border in the stroke colour.
func CaptionStyle(s caption.Style) lipgloss.Style {
	style := lipgloss.NewStyle().Align(lipgloss.Center)
	if s.Color != "" {
		style = style.Foreground(lipgloss.Color(s.Color))
	}
	if fontVmin(s.FontSize) >= bigFontVmin {
		style = style.Bold(true)
	}
	if s.FontFamily == "monospace" {
		style = style.Padding(0, 2)
	}
	if s.TextStroke != "" {
		style = style.Border(lipgloss.NormalBorder())
		if color := strokeColor(s.TextStroke); color != "" {
			style = style.BorderForeground(lipgloss.Color(color))
		}
	}
	return style
}

// VerticalPosition maps a style's vertical alignment onto lipgloss placement
func VerticalPosition(s caption.Style) lipgloss.Position {
	switch s.VerticalAlign {
	case "bottom":
		return lipgloss.Bottom
	case "top":
		return lipgloss.Top
	default:
		return lipgloss.Center
	}
}

// fontVmin parses a "12vmin" font size, returning 0 when it cannot
func fontVmin(size string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSuffix(size, "vmin"), 64)
	if err != nil {
		return 0
	}
	return v
}

// strokeColor extracts the colour from a "2px #000000" text stroke
func strokeColor(stroke string) string {
	fields := strings.Fields(stroke)
	if len(fields) < 2 {
		return ""
	}
	return fields[len(fields)-1]
}
