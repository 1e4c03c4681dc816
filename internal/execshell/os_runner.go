package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	environmentAssignmentSeparatorConstant = "="
	environmentAssignmentTemplateConstant  = "%s%s%s"
	defaultWaitDelayConstant               = 2 * time.Second
)

// CommandRunner executes a ShellCommand and reports its outcome.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// OSCommandRunnerOption customizes an OSCommandRunner.
type OSCommandRunnerOption func(*OSCommandRunner)

// WithWaitDelay bounds how long Run waits for output pipes after the context
// ends and the process is killed. Descendants that inherited the pipes are cut
// off when the delay elapses. A non-positive delay keeps the default.
func WithWaitDelay(delay time.Duration) OSCommandRunnerOption {
	return func(runner *OSCommandRunner) {
		if delay > 0 {
			runner.waitDelay = delay
		}
	}
}

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	waitDelay time.Duration
}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner(options ...OSCommandRunnerOption) *OSCommandRunner {
	runner := &OSCommandRunner{waitDelay: defaultWaitDelayConstant}
	for _, option := range options {
		option(runner)
	}
	return runner
}

// Run executes the supplied command using os/exec. Arguments are passed as a
// discrete vector; no shell is involved. A non-zero exit status is returned as
// data, while failures to launch the process are returned as errors.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)
	executable.WaitDelay = runner.waitDelay

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		mergedEnvironment := append([]string{}, os.Environ()...)
		for environmentKey, environmentValue := range command.Details.EnvironmentVariables {
			mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, environmentKey, environmentAssignmentSeparatorConstant, environmentValue))
		}
		executable.Env = mergedEnvironment
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	runError := executable.Run()
	if errors.Is(runError, exec.ErrWaitDelay) {
		runError = nil
	}
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: decodePermissively(standardOutputBuffer.Bytes()),
				StandardError:  decodePermissively(standardErrorBuffer.Bytes()),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: decodePermissively(standardOutputBuffer.Bytes()),
		StandardError:  decodePermissively(standardErrorBuffer.Bytes()),
		ExitCode:       0,
	}, nil
}
