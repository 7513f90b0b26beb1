package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeeftor/captionctl/internal/styles"
)

// Common TUI styles using the centralized styles package
var (
	TitleStyle   = styles.TitleStyle
	StatusStyle  = styles.SuccessStyle
	ErrorStyle   = styles.ErrorStyle
	WarningStyle = styles.WarningStyle
	InfoStyle    = styles.InfoStyle
	MutedStyle   = styles.MutedStyle
	BoxStyle     = styles.BoxStyle
	BoldStyle    = styles.BoldStyle
)

// Additional TUI-specific styles
var (
	HighlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Highlight)).
			Bold(true)

	StageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(styles.BackgroundCard))

	LogInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Text))

	LogWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Warning))

	LogErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Error))

	LogSuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.Success))

	LogDebugStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.TextMuted))

	UptimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(styles.TextMuted))
)

// StatusInfo holds what the status line shows
type StatusInfo struct {
	Script   string
	Status   string
	Position time.Duration
	Paused   bool
	PC       int
	Index    int
	Scene    bool
	Uptime   time.Duration
}

// TUIRenderer provides common rendering functions for TUI models
type TUIRenderer struct {
	width  int
	height int
}

// NewTUIRenderer creates a new TUI renderer
func NewTUIRenderer(width, height int) *TUIRenderer {
	return &TUIRenderer{
		width:  width,
		height: height,
	}
}

// UpdateDimensions updates the renderer dimensions
func (r *TUIRenderer) UpdateDimensions(width, height int) {
	r.width = width
	r.height = height
}

// RenderTitle renders a consistent title bar
func (r *TUIRenderer) RenderTitle(title string) string {
	if r.width <= 0 {
		return TitleStyle.Render(title)
	}
	return TitleStyle.Width(r.width).Align(lipgloss.Center).Render(title)
}

// RenderStatus renders a status line with common information
func (r *TUIRenderer) RenderStatus(info StatusInfo) string {
	var parts []string

	if info.Script != "" {
		parts = append(parts, fmt.Sprintf("Script: %s", HighlightStyle.Render(info.Script)))
	}

	if info.Status != "" {
		parts = append(parts, fmt.Sprintf("Status: %s", StatusStyle.Render(info.Status)))
	}

	clock := r.formatPosition(info.Position)
	if info.Paused {
		clock += " " + WarningStyle.Render("paused")
	}
	parts = append(parts, fmt.Sprintf("Clock: %s", clock))
	parts = append(parts, fmt.Sprintf("PC: %d Index: %d", info.PC, info.Index))

	if info.Scene {
		parts = append(parts, InfoStyle.Render("waiting for scene"))
	}

	parts = append(parts, fmt.Sprintf("Uptime: %s", UptimeStyle.Render(r.formatDuration(info.Uptime))))

	return strings.Join(parts, " | ")
}

// RenderStage places the caption text inside the stage area. Hidden captions
// render an empty stage of the same size.
func (r *TUIRenderer) RenderStage(text string, style lipgloss.Style, vertical lipgloss.Position, visible bool, height int) string {
	width := r.width - 2
	if width < 10 {
		width = 10
	}
	if height < 3 {
		height = 3
	}

	content := ""
	if visible && text != "" {
		content = style.MaxWidth(width).Render(text)
	}
	placed := lipgloss.Place(width, height, lipgloss.Center, vertical, content)
	return StageStyle.Render(placed)
}

// RenderLogEntries renders log entries with appropriate styling
func (r *TUIRenderer) RenderLogEntries(entries []LogEntry, maxLines int) []string {
	if maxLines <= 0 {
		maxLines = 10
	}

	// Get recent entries
	recentEntries := entries
	if len(entries) > maxLines {
		recentEntries = entries[len(entries)-maxLines:]
	}

	var lines []string
	for _, entry := range recentEntries {
		timestamp := entry.Timestamp.Format("15:04:05")

		var style lipgloss.Style
		var levelIndicator string

		switch entry.Level {
		case LogLevelWarn:
			style = LogWarnStyle
			levelIndicator = "⚠"
		case LogLevelError:
			style = LogErrorStyle
			levelIndicator = "✗"
		case LogLevelSuccess:
			style = LogSuccessStyle
			levelIndicator = "✓"
		case LogLevelDebug:
			style = LogDebugStyle
			levelIndicator = "·"
		default:
			style = LogInfoStyle
			levelIndicator = "ℹ"
		}

		content := entry.Content
		if entry.Repeat > 1 {
			content = fmt.Sprintf("%s ×%d", content, entry.Repeat)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			MutedStyle.Render(timestamp),
			style.Render(levelIndicator),
			style.Render(content)))
	}

	return lines
}

// RenderBox renders content in a box with optional title
func (r *TUIRenderer) RenderBox(content string, title string, width int) string {
	boxStyle := BoxStyle

	if width > 0 {
		boxStyle = boxStyle.Width(width)
	}

	if title != "" {
		content = BoldStyle.Render(title) + "\n\n" + content
	}

	return boxStyle.Render(content)
}

// RenderKeyHelp renders help text for keyboard shortcuts
func (r *TUIRenderer) RenderKeyHelp(bindings []key.Binding) string {
	var helpLines []string
	for _, b := range bindings {
		helpLines = append(helpLines, fmt.Sprintf("%-14s %s",
			HighlightStyle.Render(b.Help().Key),
			b.Help().Desc))
	}
	return r.RenderBox(strings.Join(helpLines, "\n"), "Keyboard Shortcuts", 0)
}

// RenderShortHelp renders bindings on one line for the footer
func (r *TUIRenderer) RenderShortHelp(bindings []key.Binding) string {
	var parts []string
	for _, b := range bindings {
		parts = append(parts, fmt.Sprintf("%s %s", b.Help().Key, b.Help().Desc))
	}
	return strings.Join(parts, " • ")
}

// RenderFooter renders a consistent footer
func (r *TUIRenderer) RenderFooter(leftContent, rightContent string) string {
	if r.width <= 0 {
		return fmt.Sprintf("%s | %s", leftContent, rightContent)
	}

	spacing := r.width - lipgloss.Width(leftContent) - lipgloss.Width(rightContent)
	if spacing < 3 {
		spacing = 3
	}

	footer := leftContent + strings.Repeat(" ", spacing) + rightContent
	return MutedStyle.Width(r.width).Render(footer)
}

// formatPosition formats a media position as mm:ss.t
func (r *TUIRenderer) formatPosition(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := d % time.Minute
	return fmt.Sprintf("%02d:%04.1f", minutes, seconds.Seconds())
}

// formatDuration formats a duration in a human-readable way
func (r *TUIRenderer) formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	hours := int(d.Hours())
	minutes := int((d % time.Hour).Minutes())
	return fmt.Sprintf("%dh%dm", hours, minutes)
}
