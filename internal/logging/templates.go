package logging

import "fmt"

// LogTemplate represents a logging template with standardized emoji and formatting
type LogTemplate struct {
	emoji  string
	prefix string
	level  LogLevel
}

// LogLevel represents the logging level for templates
type LogLevel int

const (
	LevelInfo LogLevel = iota
	LevelSuccess
	LevelWarn
	LevelError
	LevelDebug
)

// Common logging templates with standardized emojis and formats
var (
	SuccessTemplate = LogTemplate{emoji: "✅", prefix: "", level: LevelSuccess}
	ErrorTemplate   = LogTemplate{emoji: "❌", prefix: "", level: LevelError}

	// Playback templates, debug level so they stay out of the terminal player
	ShowTemplate  = LogTemplate{emoji: "💬", prefix: "Showing", level: LevelDebug}
	BlinkTemplate = LogTemplate{emoji: "✨", prefix: "Blinking", level: LevelDebug}
	CountTemplate = LogTemplate{emoji: "🔢", prefix: "Counting", level: LevelDebug}
	WaitTemplate  = LogTemplate{emoji: "⏳", prefix: "Waiting", level: LevelDebug}
	SceneTemplate = LogTemplate{emoji: "🎬", prefix: "Waiting for scene", level: LevelDebug}
	SeekTemplate  = LogTemplate{emoji: "⏩", prefix: "Resynchronized", level: LevelDebug}

	// Script templates
	FetchTemplate   = LogTemplate{emoji: "🌐", prefix: "Fetching", level: LevelInfo}
	CompileTemplate = LogTemplate{emoji: "📜", prefix: "Compiled", level: LevelInfo}
	InvalidTemplate = LogTemplate{emoji: "✗", prefix: "Invalid", level: LevelError}

	// File operations
	SaveTemplate = LogTemplate{emoji: "💾", prefix: "Saved", level: LevelSuccess}
	LoadTemplate = LogTemplate{emoji: "📂", prefix: "Loading", level: LevelInfo}

	// Process templates
	StartTemplate    = LogTemplate{emoji: "🚀", prefix: "Starting", level: LevelInfo}
	StopTemplate     = LogTemplate{emoji: "🛑", prefix: "Stopping", level: LevelInfo}
	CompleteTemplate = LogTemplate{emoji: "✓", prefix: "Completed", level: LevelSuccess}
	FailTemplate     = LogTemplate{emoji: "✗", prefix: "Failed", level: LevelError}
)

// Format formats the template with the provided message
func (t LogTemplate) Format(message string) string {
	if t.prefix != "" {
		return fmt.Sprintf("%s %s: %s", t.emoji, t.prefix, message)
	}
	return fmt.Sprintf("%s %s", t.emoji, message)
}

// Log logs the message using the appropriate logging function based on level
func (t LogTemplate) Log(message string) {
	formatted := t.Format(message)
	switch t.level {
	case LevelInfo:
		UserInfo("%s", formatted)
	case LevelSuccess:
		userPrint(successColor(formatted))
	case LevelWarn:
		userPrint(userWarn(formatted))
	case LevelError:
		userPrint(userError(formatted))
	case LevelDebug:
		Debug(formatted)
	}
}

// Logf logs the message using printf-style formatting
func (t LogTemplate) Logf(format string, args ...interface{}) {
	t.Log(fmt.Sprintf(format, args...))
}

// Template helper functions for common patterns

// ShowText logs a caption being shown
func ShowText(category, text string) {
	ShowTemplate.Logf("[%s] %q", category, text)
}

// BlinkWord logs one blink word
func BlinkWord(word string) {
	BlinkTemplate.Logf("%q", word)
}

// CountValue logs one count value
func CountValue(value int) {
	CountTemplate.Logf("%d", value)
}

// WaitFor logs a wait operation with duration
func WaitFor(duration string) {
	WaitTemplate.Log(duration)
}

// SceneWait logs that execution is parked until the next scene signal
func SceneWait(line int) {
	SceneTemplate.Logf("line %d", line)
}

// Resync logs a timestamp table resynchronization
func Resync(position int64, index int) {
	SeekTemplate.Logf("position %dms, next entry %d", position, index)
}

// FetchScript logs a script fetch
func FetchScript(location string) {
	FetchTemplate.Log(location)
}

// Compiled logs a successfully compiled script
func Compiled(name string, sequential, timed int) {
	CompileTemplate.Logf("%s (%d sequential, %d timed)", name, sequential, timed)
}

// InvalidScript logs a script that failed to compile
func InvalidScript(name string, err error) {
	InvalidTemplate.Logf("%s: %v", name, err)
}

// SaveFile logs file save operation
func SaveFile(path string, details string) {
	if details != "" {
		SaveTemplate.Logf("%s (%s)", path, details)
	} else {
		SaveTemplate.Log(path)
	}
}

// LoadFile logs file load operation
func LoadFile(path string) {
	LoadTemplate.Log(path)
}

// Start logs process start
func Start(process string) {
	StartTemplate.Log(process)
}

// Stop logs process stop
func Stop(process string) {
	StopTemplate.Log(process)
}

// Complete logs successful completion
func Complete(operation string) {
	CompleteTemplate.Log(operation)
}

// Fail logs operation failure
func Fail(operation string, reason string) {
	if reason != "" {
		FailTemplate.Logf("%s: %s", operation, reason)
	} else {
		FailTemplate.Log(operation)
	}
}
