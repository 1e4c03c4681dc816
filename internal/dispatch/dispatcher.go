package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/ghmcp/internal/execshell"
	"github.com/temirov/ghmcp/internal/githubcli"
)

const (
	logFieldInvocationIDConstant     = "invocation_id"
	logFieldOperationConstant        = "operation"
	logFieldErrorKindConstant        = "error_kind"
	logFieldDurationConstant         = "duration"
	logFieldPayloadBytesConstant     = "payload_bytes"
	dispatchStartedMessageConstant   = "Dispatching operation"
	dispatchSucceededMessageConstant = "Operation succeeded"
	dispatchFailedMessageConstant    = "Operation failed"
	loggerMissingMessageConstant     = "dispatcher logger not configured"
	executorMissingMessageConstant   = "dispatcher command executor not configured"
	successOutcomeLabelConstant      = "success"
)

var (
	// ErrLoggerNotConfigured indicates that a Dispatcher was created without a logger.
	ErrLoggerNotConfigured = errors.New(loggerMissingMessageConstant)
	// ErrExecutorNotConfigured indicates that a Dispatcher was created without a command executor.
	ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)
)

// GitHubCommandExecutor launches the GitHub CLI.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// OutcomeRecorder observes finished dispatches.
type OutcomeRecorder interface {
	ObserveDispatch(operation githubcli.OperationName, outcome string, duration time.Duration)
}

type noopOutcomeRecorder struct{}

func (noopOutcomeRecorder) ObserveDispatch(githubcli.OperationName, string, time.Duration) {}

// Call is one decoded protocol request.
type Call struct {
	Operation githubcli.OperationName
	Arguments githubcli.ArgumentBundle
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithCommandBuilder replaces the default builder, typically to recognize a custom executable name.
func WithCommandBuilder(builder githubcli.CommandBuilder) DispatcherOption {
	return func(dispatcher *Dispatcher) {
		dispatcher.builder = builder
	}
}

// WithWorkingDirectory runs every command in directory.
func WithWorkingDirectory(directory string) DispatcherOption {
	return func(dispatcher *Dispatcher) {
		dispatcher.workingDirectory = directory
	}
}

// WithJSONOutputValidation rejects non-JSON payloads from operations that request JSON output.
func WithJSONOutputValidation(enabled bool) DispatcherOption {
	return func(dispatcher *Dispatcher) {
		dispatcher.normalizer.ValidateJSONOutput = enabled
	}
}

// WithProgramName sets the program name used in fallback failure messages.
func WithProgramName(programName string) DispatcherOption {
	return func(dispatcher *Dispatcher) {
		dispatcher.normalizer.ProgramName = programName
	}
}

// WithOutcomeRecorder registers a recorder notified after every dispatch.
func WithOutcomeRecorder(recorder OutcomeRecorder) DispatcherOption {
	return func(dispatcher *Dispatcher) {
		if recorder != nil {
			dispatcher.recorder = recorder
		}
	}
}

// Dispatcher validates calls, builds command lines, runs them, and normalizes the outcome.
type Dispatcher struct {
	logger           *zap.Logger
	executor         GitHubCommandExecutor
	builder          githubcli.CommandBuilder
	normalizer       ResultNormalizer
	recorder         OutcomeRecorder
	workingDirectory string
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(logger *zap.Logger, executor GitHubCommandExecutor, options ...DispatcherOption) (*Dispatcher, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}

	dispatcher := &Dispatcher{
		logger:   logger,
		executor: executor,
		builder:  githubcli.NewCommandBuilder(string(execshell.CommandGitHub)),
		recorder: noopOutcomeRecorder{},
	}
	for _, option := range options {
		option(dispatcher)
	}
	return dispatcher, nil
}

// Dispatch performs one call. It never returns an error: every failure is
// reported in the Result with its ErrorKind.
func (dispatcher *Dispatcher) Dispatch(executionContext context.Context, call Call) Result {
	invocationLogger := dispatcher.logger.With(
		zap.String(logFieldInvocationIDConstant, uuid.NewString()),
		zap.String(logFieldOperationConstant, string(call.Operation)),
	)
	invocationLogger.Debug(dispatchStartedMessageConstant)

	startTime := time.Now()
	result := dispatcher.dispatch(executionContext, call)
	elapsed := time.Since(startTime)

	if result.Succeeded() {
		dispatcher.recorder.ObserveDispatch(call.Operation, successOutcomeLabelConstant, elapsed)
		invocationLogger.Info(dispatchSucceededMessageConstant,
			zap.Int(logFieldPayloadBytesConstant, len(result.Payload)),
			zap.Duration(logFieldDurationConstant, elapsed),
		)
		return result
	}

	dispatcher.recorder.ObserveDispatch(call.Operation, string(result.Error.Kind), elapsed)
	invocationLogger.Warn(dispatchFailedMessageConstant,
		zap.String(logFieldErrorKindConstant, string(result.Error.Kind)),
		zap.Duration(logFieldDurationConstant, elapsed),
		zap.Error(result.Error),
	)
	return result
}

func (dispatcher *Dispatcher) dispatch(executionContext context.Context, call Call) Result {
	definition, lookupError := githubcli.LookupOperation(call.Operation)
	if lookupError != nil {
		return dispatcher.normalizer.NormalizeError(lookupError)
	}

	commandLine, buildError := dispatcher.builder.BuildDefinition(definition, call.Arguments)
	if buildError != nil {
		return dispatcher.normalizer.NormalizeError(buildError)
	}

	executionResult, executionError := dispatcher.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments:        commandLine,
		WorkingDirectory: dispatcher.workingDirectory,
	})
	if executionError != nil {
		return dispatcher.normalizer.NormalizeError(executionError)
	}

	return dispatcher.normalizer.NormalizeOutcome(definition, executionResult)
}
