package utils

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/logging"
)

// ErrorExitCode represents different types of errors with their exit codes
type ErrorExitCode int

const (
	ExitCodeGeneral    ErrorExitCode = 1
	ExitCodeValidation ErrorExitCode = 2
	ExitCodeSource     ErrorExitCode = 3
	ExitCodeFileSystem ErrorExitCode = 4
)

// ExitCodeFor maps an error to the exit code the CLI reports for it
func ExitCodeFor(err error) ErrorExitCode {
	var parseErr *caption.ParseError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &parseErr), errors.Is(err, caption.ErrEmptyProgram):
		return ExitCodeValidation
	case errors.Is(err, caption.ErrSourceUnavailable):
		return ExitCodeSource
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return ExitCodeFileSystem
	default:
		return ExitCodeGeneral
	}
}

// FatalError handles fatal errors with consistent logging and exit behavior
func FatalError(err error, context string) {
	FatalErrorWithCode(err, context, ExitCodeFor(err))
}

// FatalErrorWithCode handles fatal errors with specific exit codes
func FatalErrorWithCode(err error, context string, exitCode ErrorExitCode) {
	logging.UserErrorf("%s: %v", context, err)
	if exitCode == 0 {
		exitCode = ExitCodeGeneral
	}
	os.Exit(int(exitCode))
}

// ValidationError handles argument validation errors with usage information
func ValidationError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(int(ExitCodeValidation))
}

// SourceError handles script fetch failures
func SourceError(location string, err error) {
	logging.UserErrorf("Failed to load script %s: %v", location, err)
	os.Exit(int(ExitCodeSource))
}

// FileSystemError handles file operation errors
func FileSystemError(operation string, path string, err error) {
	logging.UserErrorf("Failed to %s '%s': %v", operation, path, err)
	os.Exit(int(ExitCodeFileSystem))
}

// WarnOnError logs a warning for non-fatal errors
func WarnOnError(err error, context string) {
	if err != nil {
		logging.UserWarnf("%s: %v", context, err)
	}
}

// CheckError is a convenience function for common error checking patterns
func CheckError(err error, context string) {
	if err != nil {
		FatalError(err, context)
	}
}

// MultiError represents multiple errors that occurred
type MultiError struct {
	Errors  []error
	Context string
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred: %v (and %d more)", len(m.Errors), m.Errors[0], len(m.Errors)-1)
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// NewMultiError creates a new MultiError
func NewMultiError(context string) *MultiError {
	return &MultiError{
		Context: context,
		Errors:  make([]error, 0),
	}
}

// Add adds an error to the MultiError
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// HasErrors returns true if there are any errors
func (m *MultiError) HasErrors() bool {
	return len(m.Errors) > 0
}

// Check handles the MultiError by exiting if there are errors
func (m *MultiError) Check() {
	if m.HasErrors() {
		FatalError(m, m.Context)
	}
}
