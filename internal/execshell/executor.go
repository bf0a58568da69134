package execshell

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	gitCommandNameConstant                  = "git"
	loggerNotConfiguredMessageConstant      = "logger not configured"
	runnerNotConfiguredMessageConstant      = "command runner not configured"
	commandFailedErrorTemplateConstant      = "%s command failed with exit code %d"
	commandExecutionErrorTemplateConstant   = "%s command could not be executed: %v"
	commandStartedLogMessageConstant        = "shell command started"
	commandCompletedLogMessageConstant      = "shell command completed"
	commandFailedLogMessageConstant         = "shell command failed"
	commandExecutionFailedLogMessageConstant = "shell command execution failed"
	logFieldCommandNameConstant             = "command"
	logFieldArgumentsConstant               = "arguments"
	logFieldWorkingDirectoryConstant        = "working_directory"
	logFieldExitCodeConstant                = "exit_code"
	logFieldStandardErrorConstant           = "standard_error"
)

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)

// CommandName identifies the external tool being invoked.
type CommandName string

// CommandGit names the git binary, the only external tool the orchestrator drives.
const CommandGit CommandName = CommandName(gitCommandNameConstant)

// CommandDetails describes a single external invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs a tool name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable output of a completed invocation.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes a shell command and reports its result.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including its exit code.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedErrorTemplateConstant, failure.Command.Name, failure.Result.ExitCode)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, failure.Command.Name, failure.Cause)
}

// Unwrap exposes the underlying execution failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// ShellExecutor runs external commands with structured lifecycle logging.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs a ShellExecutor after validating its dependencies.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, observers ...CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	var observer CommandEventObserver = noopCommandEventObserver{}
	if len(observers) > 0 && observers[0] != nil {
		observer = observers[0]
	}

	return &ShellExecutor{logger: logger, runner: runner, observer: observer}, nil
}

// ExecuteGit runs the git binary with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the supplied command, logging its lifecycle and translating failures into typed errors.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(
			commandExecutionFailedLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
			zap.Error(runError),
		)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	if executionResult.ExitCode != 0 {
		executor.logger.Debug(
			commandFailedLogMessageConstant,
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, executionResult.StandardError),
		)
		executor.observer.CommandCompleted(command, executionResult)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)
	executor.observer.CommandCompleted(command, executionResult)

	return executionResult, nil
}
