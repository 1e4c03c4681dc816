package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	logFieldCommandNameConstant        = "command_name"
	logFieldArgumentCountConstant      = "argument_count"
	logFieldArgumentsConstant          = "arguments"
	logFieldWorkingDirectoryConstant   = "working_directory"
	logFieldExitCodeConstant           = "exit_code"
	logFieldDurationConstant           = "duration"
	logFieldConcurrencyLimitConstant   = "concurrency_limit"
	admissionWaitMessageConstant       = "waiting for a free command slot"
	admissionCancelledTemplateConstant = "admission wait cancelled: %w"
	timeoutSuffixTemplateConstant      = "command timed out after %s"
	standardErrorLineSeparatorConstant = "\n"
)

// ShellExecutorOption customizes a ShellExecutor.
type ShellExecutorOption func(*ShellExecutor)

// WithCommandEventObserver registers an observer notified of command lifecycle events.
func WithCommandEventObserver(observer CommandEventObserver) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// WithConcurrencyLimit bounds the number of simultaneously running commands.
// A non-positive limit leaves execution unbounded.
func WithConcurrencyLimit(limit int64) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if limit > 0 {
			executor.concurrencyLimit = limit
			executor.admission = semaphore.NewWeighted(limit)
		}
	}
}

// WithCommandTimeout terminates commands that run longer than timeout.
// A non-positive timeout leaves commands unbounded.
func WithCommandTimeout(timeout time.Duration) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		if timeout > 0 {
			executor.commandTimeout = timeout
		}
	}
}

// WithGitHubExecutable overrides the program launched by ExecuteGitHubCLI.
func WithGitHubExecutable(executable CommandName) ShellExecutorOption {
	return func(executor *ShellExecutor) {
		executor.githubExecutable = CommandName(strings.TrimSpace(string(executable)))
	}
}

// ShellExecutor runs commands through a CommandRunner and logs their lifecycle.
type ShellExecutor struct {
	logger           *zap.Logger
	runner           CommandRunner
	observer         CommandEventObserver
	formatter        CommandMessageFormatter
	githubExecutable CommandName
	admission        *semaphore.Weighted
	concurrencyLimit int64
	commandTimeout   time.Duration
}

// NewShellExecutor constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ShellExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:           logger,
		runner:           runner,
		observer:         noopCommandEventObserver{},
		formatter:        CommandMessageFormatter{},
		githubExecutable: CommandGitHub,
	}
	for _, option := range options {
		option(executor)
	}

	if len(executor.githubExecutable) == 0 {
		return nil, ErrExecutableNotConfigured
	}

	return executor, nil
}

// GitHubExecutable reports the program launched by ExecuteGitHubCLI.
func (executor *ShellExecutor) GitHubExecutable() CommandName {
	return executor.githubExecutable
}

// ExecuteGitHubCLI runs the GitHub CLI with the provided details.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: executor.githubExecutable, Details: details})
}

// Execute runs the command to completion. Cancellation of executionContext
// only affects the wait for a free command slot; a launched child is never
// cancelled by the caller and is bounded only by the configured timeout.
// Exit status is returned as data. Launch failures are returned as SpawnError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}

	if executor.admission != nil {
		if !executor.admission.TryAcquire(1) {
			executor.logger.Debug(admissionWaitMessageConstant, zap.Int64(logFieldConcurrencyLimitConstant, executor.concurrencyLimit))
			if acquireError := executor.admission.Acquire(executionContext, 1); acquireError != nil {
				spawnError := SpawnError{Command: command, Cause: fmt.Errorf(admissionCancelledTemplateConstant, acquireError)}
				executor.logger.Warn(executor.formatter.BuildExecutionFailureMessage(command, spawnError), append(executor.commandFields(command), zap.Error(spawnError))...)
				return ExecutionResult{}, spawnError
			}
		}
		defer executor.admission.Release(1)
	}

	runContext := context.WithoutCancel(executionContext)
	if executor.commandTimeout > 0 {
		var cancelRun context.CancelFunc
		runContext, cancelRun = context.WithTimeout(runContext, executor.commandTimeout)
		defer cancelRun()
	}

	executor.observer.CommandStarted(command)
	executor.logger.Info(executor.formatter.BuildStartedMessage(command), executor.commandFields(command)...)

	startTime := time.Now()
	executionResult, runError := executor.runner.Run(runContext, command)
	elapsed := time.Since(startTime)

	if runError != nil {
		spawnError := SpawnError{Command: command, Cause: runError}
		executor.reportExecutionFailure(command, spawnError)
		return ExecutionResult{}, spawnError
	}

	if executionResult.ExitCode != 0 && errors.Is(runContext.Err(), context.DeadlineExceeded) {
		executionResult.StandardError = appendStandardErrorLine(executionResult.StandardError, fmt.Sprintf(timeoutSuffixTemplateConstant, executor.commandTimeout))
	}

	executor.observer.CommandCompleted(command, executionResult)

	completionFields := append(executor.commandFields(command),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		zap.Duration(logFieldDurationConstant, elapsed),
	)
	if executionResult.ExitCode == 0 {
		executor.logger.Info(executor.formatter.BuildSuccessMessage(command), completionFields...)
	} else {
		executor.logger.Warn(executor.formatter.BuildFailureMessage(command, executionResult), completionFields...)
	}

	return executionResult, nil
}

func (executor *ShellExecutor) reportExecutionFailure(command ShellCommand, failure error) {
	executor.observer.CommandExecutionFailed(command, failure)
	executor.logger.Warn(executor.formatter.BuildExecutionFailureMessage(command, failure), append(executor.commandFields(command), zap.Error(failure))...)
}

func (executor *ShellExecutor) commandFields(command ShellCommand) []zap.Field {
	fields := []zap.Field{
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Int(logFieldArgumentCountConstant, len(command.Details.Arguments)),
	}
	if executor.logger.Core().Enabled(zap.DebugLevel) {
		fields = append(fields, zap.Strings(logFieldArgumentsConstant, command.Details.Arguments))
	}
	if len(command.Details.WorkingDirectory) > 0 {
		fields = append(fields, zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory))
	}
	return fields
}

func appendStandardErrorLine(standardError string, line string) string {
	if len(strings.TrimSpace(standardError)) == 0 {
		return line
	}
	return strings.TrimRight(standardError, standardErrorLineSeparatorConstant) + standardErrorLineSeparatorConstant + line
}
