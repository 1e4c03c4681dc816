package execshell

import (
	"fmt"
	"path/filepath"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
	currentRepositoryLabelConstant          = "the current repository"
	flagPrefixConstant                      = "-"
)

const (
	githubAuthSubcommandNameConstant        = "auth"
	githubStatusSubcommandNameConstant      = "status"
	githubRepoSubcommandNameConstant        = "repo"
	githubIssueSubcommandNameConstant       = "issue"
	githubPullRequestSubcommandNameConstant = "pr"
	githubViewSubcommandNameConstant        = "view"
	githubListSubcommandNameConstant        = "list"
	githubCreateSubcommandNameConstant      = "create"
	githubCloneSubcommandNameConstant       = "clone"
	githubRepoFlagConstant                  = "--repo"
)

type githubMessageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var githubMessageTemplateMapping = map[string]githubMessageTemplates{
	githubAuthSubcommandNameConstant + commandArgumentsJoinSeparatorConstant + githubStatusSubcommandNameConstant: {
		start:            "Checking GitHub CLI authentication%s",
		success:          "GitHub CLI authentication checked%s",
		failure:          "GitHub CLI authentication check failed%s (exit code %d%s)",
		executionFailure: "Unable to check GitHub CLI authentication%s: %s",
	},
	githubRepoSubcommandNameConstant + commandArgumentsJoinSeparatorConstant + githubViewSubcommandNameConstant: {
		start:            "Viewing repository %s",
		success:          "Viewed repository %s",
		failure:          "Failed to view repository %s (exit code %d%s)",
		executionFailure: "Unable to view repository %s: %s",
	},
	githubRepoSubcommandNameConstant + commandArgumentsJoinSeparatorConstant + githubListSubcommandNameConstant: {
		start:            "Listing repositories for %s",
		success:          "Listed repositories for %s",
		failure:          "Failed to list repositories for %s (exit code %d%s)",
		executionFailure: "Unable to list repositories for %s: %s",
	},
	githubRepoSubcommandNameConstant + commandArgumentsJoinSeparatorConstant + githubCloneSubcommandNameConstant: {
		start:            "Cloning repository %s",
		success:          "Cloned repository %s",
		failure:          "Failed to clone repository %s (exit code %d%s)",
		executionFailure: "Unable to clone repository %s: %s",
	},
	githubIssueSubcommandNameConstant + commandArgumentsJoinSeparatorConstant + githubListSubcommandNameConstant: {
		start:            "Listing issues for %s",
		success:          "Listed issues for %s",
		failure:          "Failed to list issues for %s (exit code %d%s)",
		executionFailure: "Unable to list issues for %s: %s",
	},
	githubIssueSubcommandNameConstant + commandArgumentsJoinSeparatorConstant + githubCreateSubcommandNameConstant: {
		start:            "Creating issue in %s",
		success:          "Created issue in %s",
		failure:          "Failed to create issue in %s (exit code %d%s)",
		executionFailure: "Unable to create issue in %s: %s",
	},
	githubPullRequestSubcommandNameConstant + commandArgumentsJoinSeparatorConstant + githubListSubcommandNameConstant: {
		start:            "Listing pull requests for %s",
		success:          "Listed pull requests for %s",
		failure:          "Failed to list pull requests for %s (exit code %d%s)",
		executionFailure: "Unable to list pull requests for %s: %s",
	},
	githubPullRequestSubcommandNameConstant + commandArgumentsJoinSeparatorConstant + githubCreateSubcommandNameConstant: {
		start:            "Creating pull request in %s",
		success:          "Created pull request in %s",
		failure:          "Failed to create pull request in %s (exit code %d%s)",
		executionFailure: "Unable to create pull request in %s: %s",
	},
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing a command that could not be launched.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if formatter.isGitHubCommand(command) {
		return formatter.describeGitHubMessage(command, result, failure, stage)
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) isGitHubCommand(command ShellCommand) bool {
	return filepath.Base(string(command.Name)) == string(CommandGitHub)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	primary := strings.TrimSpace(arguments[0])
	secondary := strings.TrimSpace(arguments[1])
	templates, templatesExist := githubMessageTemplateMapping[primary+commandArgumentsJoinSeparatorConstant+secondary]
	if !templatesExist {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subject := formatter.describeGitHubSubject(primary, secondary, arguments)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subject)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subject)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, subject, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeGitHubSubject(primary string, secondary string, arguments []string) string {
	switch {
	case primary == githubAuthSubcommandNameConstant:
		return emptyStringConstant
	case primary == githubRepoSubcommandNameConstant && secondary == githubListSubcommandNameConstant:
		owner := formatter.extractFirstPositionalArgument(arguments[2:])
		if len(owner) == 0 {
			return "the authenticated user"
		}
		return owner
	case primary == githubRepoSubcommandNameConstant:
		return formatter.ensureValue(formatter.extractFirstPositionalArgument(arguments[2:]))
	default:
		repository := strings.TrimSpace(findFlagValue(arguments, githubRepoFlagConstant))
		if len(repository) == 0 {
			return currentRepositoryLabelConstant
		}
		return repository
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

func (formatter CommandMessageFormatter) extractFirstPositionalArgument(arguments []string) string {
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := strings.TrimSpace(arguments[argumentIndex])
		if strings.HasPrefix(argument, flagPrefixConstant) {
			argumentIndex++
			continue
		}
		return argument
	}
	return emptyStringConstant
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if strings.TrimSpace(arguments[argumentIndex]) == flag {
			return arguments[argumentIndex+1]
		}
	}
	return emptyStringConstant
}
