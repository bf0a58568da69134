package ui

import (
	"go.uber.org/zap"

	"github.com/xuejuncheng0222/branch-keeper/internal/execshell"
)

// CommandEventLogger emits human-readable command lifecycle messages through zap.
//
// It backs the console log format; structured logging relies on the executor's
// own field-based events instead.
type CommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewCommandEventLogger constructs an observer writing formatted messages to the logger.
func NewCommandEventLogger(logger *zap.Logger) *CommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandEventLogger{logger: logger}
}

// CommandStarted logs the message describing a command about to run.
func (eventLogger *CommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted logs either the success or the failure message for a finished command.
func (eventLogger *CommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed logs the message describing a command that never produced a result.
func (eventLogger *CommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
