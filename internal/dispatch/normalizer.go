package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/ghmcp/internal/execshell"
	"github.com/temirov/ghmcp/internal/githubcli"
)

const (
	trailingNewlineConstant                      = "\n"
	exitStatusFallbackTemplateConstant           = "%s exited with status %d"
	exitStatusWithOutputFallbackTemplateConstant = "%s exited with status %d: %s"
	invalidJSONOutputTemplateConstant            = "%s returned output that is not valid JSON for %s"
	unclassifiedFailureMessageConstant           = "unclassified failure"
)

// CommandError reports a GitHub CLI run that finished with a non-zero exit status,
// or output that failed JSON validation.
type CommandError struct {
	ExitCode       int
	StandardOutput string
	StandardError  string
	Message        string
}

// Error returns the most specific diagnostic available.
func (commandError CommandError) Error() string {
	return commandError.Message
}

// ResultNormalizer maps execution outcomes and typed errors to Results.
type ResultNormalizer struct {
	ProgramName        string
	ValidateJSONOutput bool
}

// NormalizeOutcome converts a finished run into a Result. Exit status zero is a
// success whose payload is stdout minus a single trailing newline; anything
// else is a CommandError whose message prefers stderr over stdout. Only
// trailing newlines are removed from the message; a whitespace-only stream counts as blank.
func (normalizer ResultNormalizer) NormalizeOutcome(definition githubcli.OperationDefinition, outcome execshell.ExecutionResult) Result {
	if outcome.ExitCode == 0 {
		payload := strings.TrimSuffix(outcome.StandardOutput, trailingNewlineConstant)
		if normalizer.ValidateJSONOutput && definition.EmitsJSON && !json.Valid([]byte(payload)) {
			commandError := CommandError{
				StandardOutput: outcome.StandardOutput,
				StandardError:  outcome.StandardError,
				Message:        fmt.Sprintf(invalidJSONOutputTemplateConstant, normalizer.programName(), definition.Name),
			}
			return failureResult(ErrorKindCommand, commandError.Message, commandError)
		}
		return successResult(payload)
	}

	commandError := CommandError{
		ExitCode:       outcome.ExitCode,
		StandardOutput: outcome.StandardOutput,
		StandardError:  outcome.StandardError,
		Message:        normalizer.describeFailure(outcome),
	}
	return failureResult(ErrorKindCommand, commandError.Message, commandError)
}

// NormalizeError classifies a typed error from an earlier stage. The error is
// preserved as the Result's cause.
func (normalizer ResultNormalizer) NormalizeError(failure error) Result {
	var validationError githubcli.ValidationError
	var unknownOperationError githubcli.UnknownOperationError
	var spawnError execshell.SpawnError
	var commandError CommandError

	switch {
	case failure == nil:
		return failureResult(ErrorKindCommand, unclassifiedFailureMessageConstant, nil)
	case errors.As(failure, &validationError):
		return failureResult(ErrorKindValidation, validationError.Error(), failure)
	case errors.As(failure, &unknownOperationError):
		return failureResult(ErrorKindUnknownOperation, unknownOperationError.Error(), failure)
	case errors.As(failure, &spawnError):
		return failureResult(ErrorKindSpawn, spawnError.Error(), failure)
	case errors.As(failure, &commandError):
		return failureResult(ErrorKindCommand, commandError.Error(), failure)
	default:
		return failureResult(ErrorKindCommand, failure.Error(), failure)
	}
}

func (normalizer ResultNormalizer) describeFailure(outcome execshell.ExecutionResult) string {
	if len(strings.TrimSpace(outcome.StandardError)) > 0 {
		return strings.TrimRight(outcome.StandardError, trailingNewlineConstant)
	}

	if len(strings.TrimSpace(outcome.StandardOutput)) > 0 {
		return fmt.Sprintf(exitStatusWithOutputFallbackTemplateConstant, normalizer.programName(), outcome.ExitCode, strings.TrimRight(outcome.StandardOutput, trailingNewlineConstant))
	}
	return fmt.Sprintf(exitStatusFallbackTemplateConstant, normalizer.programName(), outcome.ExitCode)
}

func (normalizer ResultNormalizer) programName() string {
	if len(normalizer.ProgramName) == 0 {
		return string(execshell.CommandGitHub)
	}
	return normalizer.ProgramName
}
