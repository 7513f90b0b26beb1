package utils

import (
	"time"

	"github.com/jeeftor/captionctl/internal/logging"
)

// CommandExecutor runs a command as named stages with shared logging and timing
type CommandExecutor struct {
	Subject   string
	Operation string
	Logger    *logging.ContextualLogger
	started   time.Time
}

// NewCommandExecutor creates a new standardized command executor
func NewCommandExecutor(subject string, operation string) *CommandExecutor {
	return &CommandExecutor{
		Subject:   subject,
		Operation: operation,
		Logger:    logging.NewContextualLogger(subject, operation),
		started:   time.Now(),
	}
}

// CommandStage represents a single stage in command execution
type CommandStage struct {
	Name     string
	Function func() error
}

// NewCommandStage creates a new command stage
func NewCommandStage(name string, fn func() error) CommandStage {
	return CommandStage{Name: name, Function: fn}
}

// ExecuteCommand runs stages in order, stopping at the first failure
func (ce *CommandExecutor) ExecuteCommand(stages []CommandStage) error {
	for _, stage := range stages {
		ce.Logger.Debug("Starting execution stage", "stage", stage.Name)
		if err := stage.Function(); err != nil {
			ce.Logger.Error("Execution stage failed", "stage", stage.Name, "error", err,
				"elapsed", time.Since(ce.started))
			return err
		}
		ce.Logger.Debug("Execution stage completed", "stage", stage.Name)
	}
	return nil
}

// Elapsed reports how long the command has been running
func (ce *CommandExecutor) Elapsed() time.Duration {
	return time.Since(ce.started)
}
