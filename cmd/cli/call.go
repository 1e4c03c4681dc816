package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/ghmcp/internal/dispatch"
	"github.com/temirov/ghmcp/internal/githubcli"
)

const (
	callCommandUseConstant              = "call <operation>"
	callCommandShortDescriptionConstant = "Dispatch one operation and print its payload"
	callCommandLongDescriptionConstant  = "call runs a single catalog operation the same way an MCP client would and prints the payload. Failures are reported with their error kind and exit status 1."
	argumentFlagNameConstant            = "arg"
	argumentFlagUsageConstant           = "Operation argument as key=value; repeatable."
	argumentAssignmentSeparatorConstant = "="
	malformedArgumentTemplateConstant   = "argument %q must have the form key=value"
	payloadOutputTemplateConstant       = "%s\n"
)

func (application *Application) newCallCommand() *cobra.Command {
	var argumentAssignments []string

	callCommand := &cobra.Command{
		Use:   callCommandUseConstant,
		Short: callCommandShortDescriptionConstant,
		Long:  callCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			argumentBundle, parseError := parseArgumentAssignments(argumentAssignments)
			if parseError != nil {
				return parseError
			}

			dispatcher, dispatcherError := application.buildDispatcher(nil)
			if dispatcherError != nil {
				return dispatcherError
			}

			result := dispatcher.Dispatch(command.Context(), dispatch.Call{
				Operation: githubcli.OperationName(arguments[0]),
				Arguments: argumentBundle,
			})
			if !result.Succeeded() {
				return result.Error
			}

			_, writeError := fmt.Fprintf(command.OutOrStdout(), payloadOutputTemplateConstant, result.Payload)
			return writeError
		},
	}

	callCommand.Flags().StringArrayVar(&argumentAssignments, argumentFlagNameConstant, nil, argumentFlagUsageConstant)
	return callCommand
}

// parseArgumentAssignments splits each assignment at the first '=' so values may contain '='.
func parseArgumentAssignments(assignments []string) (githubcli.ArgumentBundle, error) {
	argumentBundle := make(githubcli.ArgumentBundle, len(assignments))
	for _, assignment := range assignments {
		name, value, separatorFound := strings.Cut(assignment, argumentAssignmentSeparatorConstant)
		name = strings.TrimSpace(name)
		if !separatorFound || len(name) == 0 {
			return nil, fmt.Errorf(malformedArgumentTemplateConstant, assignment)
		}
		argumentBundle[name] = value
	}
	return argumentBundle, nil
}
