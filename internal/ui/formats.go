package ui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/styles"
)

// Icons for consistent UI messaging
const (
	SuccessIcon = "✅"
	ErrorIcon   = "❌"
	InfoIcon    = "ℹ️"
	WarningIcon = "⚠️"
	ResultIcon  = "📊"
	HeaderIcon  = "🔸"
	ScriptIcon  = "📜"
)

// Helper functions for styling specific types of content
func Success(text string) string {
	return styles.SuccessStyle.Render(text)
}

func Error(text string) string {
	return styles.ErrorStyle.Render(text)
}

func Bold(text string) string {
	return styles.BoldStyle.Render(text)
}

func Muted(text string) string {
	return styles.MutedStyle.Render(text)
}

func Key(text string) string {
	return styles.KeyStyle.Render(text)
}

func Value(text string) string {
	return styles.ValueStyle.Render(text)
}

func Code(text string) string {
	return styles.CodeStyle.Render(text)
}

// ScriptSummary describes a script that compiled
type ScriptSummary struct {
	Name       string
	Sequential int
	Timed      int
	Registers  map[int]int // phrase count per register
}

// FormatRegisters renders register counts as "$0×3 $2×1", in register order
func FormatRegisters(counts map[int]int) string {
	if len(counts) == 0 {
		return "none"
	}
	registers := make([]int, 0, len(counts))
	for n := range counts {
		registers = append(registers, n)
	}
	sort.Ints(registers)

	parts := make([]string, 0, len(registers))
	for _, n := range registers {
		parts = append(parts, fmt.Sprintf("$%d×%d", n, counts[n]))
	}
	return strings.Join(parts, " ")
}

// ValidationPassed prints the summary line of a valid script
func ValidationPassed(s ScriptSummary) {
	fmt.Printf("%s %s %s\n",
		SuccessIcon,
		Bold(s.Name),
		Muted(fmt.Sprintf("(%d sequential, %d timed, phrases %s)", s.Sequential, s.Timed, FormatRegisters(s.Registers))))
}

// ValidationFailed prints the error of an invalid script. Parse errors show the
// offending line on its own.
func ValidationFailed(name string, err error) {
	var parseErr *caption.ParseError
	if errors.As(err, &parseErr) {
		fmt.Printf("%s %s line %d: %s\n", ErrorIcon, Bold(name), parseErr.Line, Error(parseErr.Reason))
		fmt.Printf("    %s\n", Code(parseErr.Text))
		return
	}
	fmt.Printf("%s %s: %s\n", ErrorIcon, Bold(name), Error(err.Error()))
}

// ScriptMessage prints the script about to be played
func ScriptMessage(name, source string) {
	fmt.Printf("%s Script: %s %s\n", ScriptIcon, Code(name), Muted("("+source+")"))
}

// KeyValue prints one configuration entry with its source
func KeyValue(key string, value any, source string) {
	if source == "" {
		fmt.Printf("  %s: %s\n", Key(key), Value(fmt.Sprintf("%v", value)))
		return
	}
	fmt.Printf("  %s: %s %s\n", Key(key), Value(fmt.Sprintf("%v", value)), Muted("("+source+")"))
}

// EnvironmentVariableExample formats environment variable usage examples
func EnvironmentVariableExample(varName, example string) {
	fmt.Printf("export %s=%s\n",
		Key(varName),
		Value(example))
}

// CommandExample formats command usage examples
func CommandExample(command, description string) {
	fmt.Printf("%-40s # %s\n",
		Code(command),
		Muted(description))
}

// SectionHeader formats a section header with styling
func SectionHeader(title string) {
	fmt.Printf("\n%s %s\n", HeaderIcon, Bold(title))
}

// BulletPoint formats a bullet point with consistent styling
func BulletPoint(text string) {
	fmt.Printf("• %s\n", text)
}
