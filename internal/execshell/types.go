package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	spawnErrorTemplateConstant             = "unable to launch %s: %s"
	spawnErrorWithoutCauseTemplateConstant = "unable to launch %s"
	loggerNotConfiguredMessageConstant     = "logger not configured"
	runnerNotConfiguredMessageConstant     = "command runner not configured"
	executableNotConfiguredMessageConstant = "executable not configured"
	replacementCharacterConstant           = "\uFFFD"
)

// CommandName identifies an executable invoked through the runner.
type CommandName string

// CommandGitHub is the default GitHub CLI program name.
const CommandGitHub CommandName = CommandName("gh")

// CommandDetails describes the argument vector and process settings for a single invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand couples an executable with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(runnerNotConfiguredMessageConstant)
	// ErrExecutableNotConfigured indicates the executor was given a blank executable name.
	ErrExecutableNotConfigured = errors.New(executableNotConfiguredMessageConstant)
)

// SpawnError reports that the executable could not be launched at all.
type SpawnError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the launch failure.
func (spawnError SpawnError) Error() string {
	if spawnError.Cause == nil {
		return fmt.Sprintf(spawnErrorWithoutCauseTemplateConstant, spawnError.Command.Name)
	}
	return fmt.Sprintf(spawnErrorTemplateConstant, spawnError.Command.Name, spawnError.Cause)
}

// Unwrap exposes the underlying operating system error.
func (spawnError SpawnError) Unwrap() error {
	return spawnError.Cause
}

// decodePermissively converts captured bytes to text, replacing invalid UTF-8 sequences.
func decodePermissively(captured []byte) string {
	return strings.ToValidUTF8(string(captured), replacementCharacterConstant)
}
