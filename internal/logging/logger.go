package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Minimum level shared by every handler
	level = new(slog.LevelVar)

	mu sync.Mutex

	// Console destination for log records and user messages
	consoleOut io.Writer = os.Stdout

	// Rotating file sink, nil unless EnableFileOutput was called
	fileSink *lj.Logger

	// Colors for different log levels
	infoColor    = color.New(color.FgGreen).SprintFunc()
	warnColor    = color.New(color.FgYellow).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
	debugColor   = color.New(color.FgCyan).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	userWarn     = color.New(color.FgYellow).SprintFunc()
	userError    = color.New(color.FgRed, color.Bold).SprintFunc()
)

// ColorTextHandler is a simple handler that adds colors to log output
type ColorTextHandler struct {
	w     io.Writer
	attrs []slog.Attr
}

// NewColorTextHandler creates a new ColorTextHandler
func NewColorTextHandler(w io.Writer) *ColorTextHandler {
	return &ColorTextHandler{w: w}
}

// Handle handles the log record
func (h *ColorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	var levelText string
	switch r.Level {
	case slog.LevelDebug:
		levelText = debugColor("DEBUG")
	case slog.LevelInfo:
		levelText = infoColor("INFO")
	case slog.LevelWarn:
		levelText = warnColor("WARN")
	case slog.LevelError:
		levelText = errorColor("ERROR")
	default:
		levelText = r.Level.String()
	}

	var attrs strings.Builder
	for _, a := range h.attrs {
		attrs.WriteString(" " + a.Key + "=" + formatAttrValue(a.Value))
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "source" {
			return true
		}
		attrs.WriteString(" " + a.Key + "=" + formatAttrValue(a.Value))
		return true
	})

	// Leading carriage return keeps lines clean when a spinner or prompt is on screen
	_, err := fmt.Fprintf(h.w, "\r%s %s%s\n", levelText, r.Message, attrs.String())
	return err
}

// formatAttrValue formats a slog.Value as a string
func formatAttrValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return fmt.Sprintf("%d", v.Int64())
	case slog.KindUint64:
		return fmt.Sprintf("%d", v.Uint64())
	case slog.KindFloat64:
		return fmt.Sprintf("%g", v.Float64())
	case slog.KindBool:
		return fmt.Sprintf("%t", v.Bool())
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format("15:04:05")
	case slog.KindAny:
		return fmt.Sprintf("%v", v.Any())
	default:
		return v.String()
	}
}

// WithAttrs returns a new handler with the given attributes
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &ColorTextHandler{w: h.w}
	next.attrs = append(append(next.attrs, h.attrs...), attrs...)
	return next
}

// WithGroup returns a new handler with the given group
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	return h
}

// Enabled reports whether the handler handles records at the given level
func (h *ColorTextHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return l >= level.Level()
}

// ParseLevel converts a level name to slog.Level, defaulting to info
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the logger with the specified debug level
func Init(debug bool) {
	if debug {
		InitWithLevel("debug")
		return
	}
	InitWithLevel("info")
}

// InitWithLevel initializes the logger at the named level (debug, info, warn, error)
func InitWithLevel(name string) {
	level.Set(ParseLevel(name))
	rebuild()
	Debug("Debug logging enabled")
}

// SetOutput sets the console writer for log records and user messages
func SetOutput(w io.Writer) {
	mu.Lock()
	consoleOut = w
	mu.Unlock()
	rebuild()
}

// EnableFileOutput adds a rotating JSON log file next to the console output
func EnableFileOutput(path string) {
	mu.Lock()
	if fileSink != nil {
		_ = fileSink.Close()
	}
	fileSink = &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
	mu.Unlock()
	rebuild()
}

// Close flushes and closes the file sink, if any
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if fileSink == nil {
		return nil
	}
	err := fileSink.Close()
	fileSink = nil
	return err
}

func rebuild() {
	mu.Lock()
	defer mu.Unlock()

	var handler slog.Handler = NewColorTextHandler(consoleOut)
	if fileSink != nil {
		handler = &fanout{handlers: []slog.Handler{
			handler,
			slog.NewJSONHandler(fileSink, &slog.HandlerOptions{Level: level}),
		}}
	}
	slog.SetDefault(slog.New(handler))
}

// fanout sends each record to every handler that accepts its level
type fanout struct {
	handlers []slog.Handler
}

func (f *fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &fanout{handlers: next}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return &fanout{handlers: next}
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// User-facing output. These bypass the level filter and print plain lines.

func userPrint(text string) {
	mu.Lock()
	w := consoleOut
	mu.Unlock()
	fmt.Fprintln(w, "\r"+text)
}

// UserInfo prints an informational message for the user
func UserInfo(format string, args ...any) {
	userPrint(fmt.Sprintf(format, args...))
}

// UserInfof is an alias of UserInfo
func UserInfof(format string, args ...any) {
	UserInfo(format, args...)
}

// UserWarn prints a warning for the user
func UserWarn(format string, args ...any) {
	userPrint(userWarn("⚠️  " + fmt.Sprintf(format, args...)))
}

// UserWarnf is an alias of UserWarn
func UserWarnf(format string, args ...any) {
	UserWarn(format, args...)
}

// UserError prints an error for the user
func UserError(format string, args ...any) {
	userPrint(userError("❌ " + fmt.Sprintf(format, args...)))
}

// UserErrorf is an alias of UserError
func UserErrorf(format string, args ...any) {
	UserError(format, args...)
}

// Success prints a success message for the user
func Success(format string, args ...any) {
	userPrint(successColor("✅ " + fmt.Sprintf(format, args...)))
}

// Successf is an alias of Success
func Successf(format string, args ...any) {
	Success(format, args...)
}

// ContextualLogger tags every record with a component and operation
type ContextualLogger struct {
	component string
	operation string
}

// NewContextualLogger creates a logger for one component/operation pair
func NewContextualLogger(component, operation string) *ContextualLogger {
	return &ContextualLogger{component: component, operation: operation}
}

func (l *ContextualLogger) with(args []any) []any {
	out := make([]any, 0, len(args)+4)
	if l.component != "" {
		out = append(out, "component", l.component)
	}
	if l.operation != "" {
		out = append(out, "operation", l.operation)
	}
	return append(out, args...)
}

// Debug logs a debug message with context
func (l *ContextualLogger) Debug(msg string, args ...any) {
	slog.Debug(msg, l.with(args)...)
}

// Info logs an info message with context
func (l *ContextualLogger) Info(msg string, args ...any) {
	slog.Info(msg, l.with(args)...)
}

// Warn logs a warning with context
func (l *ContextualLogger) Warn(msg string, args ...any) {
	slog.Warn(msg, l.with(args)...)
}

// Error logs an error with context
func (l *ContextualLogger) Error(msg string, args ...any) {
	slog.Error(msg, l.with(args)...)
}

// LogOperation runs fn and records its duration and outcome
func LogOperation(operation, subject string, fn func() error) error {
	start := time.Now()
	Debug("Operation started", "operation", operation, "subject", subject)

	err := fn()
	if err != nil {
		Debug("Operation failed", "operation", operation, "subject", subject,
			"duration", time.Since(start), "error", err)
		return err
	}

	Debug("Operation completed", "operation", operation, "subject", subject, "duration", time.Since(start))
	return nil
}
