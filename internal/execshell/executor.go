package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	gitCommandNameConstant                    = "git"
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandFailedTemplateConstant             = "%s exited with code %d%s"
	commandExecutionFailureTemplateConstant   = "%s failed: %v"
	commandTimedOutTemplateConstant           = "%s timed out after %s"
	standardErrorSuffixTemplateConstant       = ": %s"
	commandStartedLogMessageConstant          = "executing command"
	commandCompletedLogMessageConstant        = "command completed"
	commandFailedLogMessageConstant           = "command failed"
	commandTimedOutLogMessageConstant         = "command timed out"
	commandErroredLogMessageConstant          = "command could not be executed"
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "stderr"
	logFieldTimeoutConstant                   = "timeout"
	logFieldErrorConstant                     = "error"
	commandArgumentsJoinSeparatorConstant     = " "
	gitTerminalPromptEnvironmentKeyConstant   = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant    = "0"
	defaultCommandTimeoutConstant             = 5 * time.Minute
)

// CommandName identifies a supported external executable.
type CommandName string

// CommandGit names the git binary every fleet operation delegates to.
const CommandGit CommandName = CommandName(gitCommandNameConstant)

// CommandDetails describes a single external invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outputs of an external invocation.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandFailedError reports a command that completed with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including trimmed standard error output.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(
		commandFailedTemplateConstant,
		describeCommand(failure.Command),
		failure.Result.ExitCode,
		formatStandardErrorSuffix(failure.Result.StandardError),
	)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailureTemplateConstant, describeCommand(failure.Command), failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// CommandTimedOutError reports a command that exceeded the execution timeout.
type CommandTimedOutError struct {
	Command ShellCommand
	Timeout time.Duration
}

// Error describes the timeout with a reason distinguishable from exit failures.
func (failure CommandTimedOutError) Error() string {
	return fmt.Sprintf(commandTimedOutTemplateConstant, describeCommand(failure.Command), failure.Timeout)
}

// ShellExecutor runs external commands with logging, event notification, and a
// fixed per-invocation timeout.
type ShellExecutor struct {
	logger         *zap.Logger
	runner         CommandRunner
	eventObserver  CommandEventObserver
	commandTimeout time.Duration
}

// NewShellExecutor constructs a ShellExecutor after validating its collaborators.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{
		logger:         logger,
		runner:         runner,
		eventObserver:  noopCommandEventObserver{},
		commandTimeout: defaultCommandTimeoutConstant,
	}, nil
}

// UseCommandEventObserver attaches an observer receiving command lifecycle events.
func (executor *ShellExecutor) UseCommandEventObserver(observer CommandEventObserver) {
	if executor == nil || observer == nil {
		return
	}
	executor.eventObserver = observer
}

// WithCommandTimeout overrides the per-invocation timeout and returns the executor.
func (executor *ShellExecutor) WithCommandTimeout(timeout time.Duration) *ShellExecutor {
	if executor != nil && timeout > 0 {
		executor.commandTimeout = timeout
	}
	return executor
}

// ExecuteGit runs git with the provided details, disabling terminal prompts
// so credential requests fail immediately instead of blocking until the
// command timeout.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	environmentVariables := make(map[string]string, len(details.EnvironmentVariables)+1)
	for environmentKey, environmentValue := range details.EnvironmentVariables {
		environmentVariables[environmentKey] = environmentValue
	}
	if _, alreadySet := environmentVariables[gitTerminalPromptEnvironmentKeyConstant]; !alreadySet {
		environmentVariables[gitTerminalPromptEnvironmentKeyConstant] = gitTerminalPromptDisabledValueConstant
	}
	details.EnvironmentVariables = environmentVariables

	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs the supplied command, bounding it with the configured timeout.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(
		commandStartedLogMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
	executor.eventObserver.CommandStarted(command)

	timeoutContext, cancelTimeout := context.WithTimeout(executionContext, executor.commandTimeout)
	defer cancelTimeout()

	executionResult, runError := executor.runner.Run(timeoutContext, command)

	if deadlineExceeded(timeoutContext) {
		timeoutFailure := CommandTimedOutError{Command: command, Timeout: executor.commandTimeout}
		executor.logger.Error(
			commandTimedOutLogMessageConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
			zap.Duration(logFieldTimeoutConstant, executor.commandTimeout),
		)
		executor.eventObserver.CommandExecutionFailed(command, timeoutFailure)
		return ExecutionResult{}, timeoutFailure
	}

	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.logger.Error(
			commandErroredLogMessageConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
			zap.Error(runError),
		)
		executor.eventObserver.CommandExecutionFailed(command, executionFailure)
		return ExecutionResult{}, executionFailure
	}

	if executionResult.ExitCode != 0 {
		executor.logger.Debug(
			commandFailedLogMessageConstant,
			zap.String(logFieldCommandConstant, string(command.Name)),
			zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, strings.TrimSpace(executionResult.StandardError)),
		)
		executor.eventObserver.CommandCompleted(command, executionResult)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(
		commandCompletedLogMessageConstant,
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)
	executor.eventObserver.CommandCompleted(command, executionResult)

	return executionResult, nil
}

func deadlineExceeded(timeoutContext context.Context) bool {
	return errors.Is(timeoutContext.Err(), context.DeadlineExceeded)
}

func describeCommand(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}

func formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
