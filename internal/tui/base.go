package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeeftor/captionctl/internal/constants"
)

// Rows taken by the title, status line, footer and the stage border
const chromeRows = 5

// minStageRows keeps the stage usable in tiny terminals
const minStageRows = 3

// CommonTUIState is the window and lifetime state shared by the player views
type CommonTUIState struct {
	Title     string
	Width     int
	Height    int
	Quitting  bool
	StartTime time.Time
}

// BaseTUIModel is embedded by bubbletea models that render a caption stage
type BaseTUIModel struct {
	State *CommonTUIState
}

// NewBaseTUIModel starts with an 80x24 window until the first resize arrives
func NewBaseTUIModel(title string) *BaseTUIModel {
	return &BaseTUIModel{
		State: &CommonTUIState{
			Title:     title,
			Width:     80,
			Height:    24,
			StartTime: time.Now(),
		},
	}
}

func (b *BaseTUIModel) HandleWindowResize(msg tea.WindowSizeMsg) {
	b.State.Width = msg.Width
	b.State.Height = msg.Height
}

func (b *BaseTUIModel) IsQuitting() bool {
	return b.State.Quitting
}

// GetUptime returns how long the player has been open
func (b *BaseTUIModel) GetUptime() time.Duration {
	return time.Since(b.State.StartTime)
}

// StageHeight is what remains for the caption stage once the chrome and
// logLines rows of event log are drawn
func (b *BaseTUIModel) StageHeight(logLines int) int {
	rows := b.State.Height - chromeRows - logLines
	if rows < minStageRows {
		return minStageRows
	}
	return rows
}

// CommonInit enters the alternate screen and starts the redraw ticker
func (b *BaseTUIModel) CommonInit() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		b.TickCmd(),
	)
}

// TickCmd redraws at the UI refresh rate so the media clock position stays live
func (b *BaseTUIModel) TickCmd() tea.Cmd {
	return tea.Tick(constants.UIRefreshRate, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

type TickMsg time.Time

// LogEntry is one line of the player's event log. Repeat counts identical
// consecutive events folded into it.
type LogEntry struct {
	Timestamp time.Time
	Content   string
	Level     LogLevel
	Repeat    int
}

// LogLevel represents the severity of a log entry
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarn
	LogLevelError
	LogLevelSuccess
	LogLevelDebug
)

// LogManager keeps the last maxSize player events
type LogManager struct {
	entries []LogEntry
	maxSize int
}

func NewLogManager(maxSize int) *LogManager {
	return &LogManager{
		entries: make([]LogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add records an event. Holding a key like "n" produces the same event many
// times in a row; those collapse into the previous entry.
func (lm *LogManager) Add(content string, level LogLevel) {
	if n := len(lm.entries); n > 0 {
		last := &lm.entries[n-1]
		if last.Content == content && last.Level == level {
			last.Repeat++
			last.Timestamp = time.Now()
			return
		}
	}

	lm.entries = append(lm.entries, LogEntry{
		Timestamp: time.Now(),
		Content:   content,
		Level:     level,
		Repeat:    1,
	})
	if len(lm.entries) > lm.maxSize {
		lm.entries = lm.entries[1:]
	}
}

func (lm *LogManager) GetEntries() []LogEntry {
	return lm.entries
}

// GetRecentEntries returns the most recent n entries
func (lm *LogManager) GetRecentEntries(n int) []LogEntry {
	if n >= len(lm.entries) {
		return lm.entries
	}
	return lm.entries[len(lm.entries)-n:]
}

func (lm *LogManager) Clear() {
	lm.entries = lm.entries[:0]
}
