package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

const (
	versionCommandUseConstant              = "version"
	versionCommandShortDescriptionConstant = "Print the ghmcp version"
	developmentVersionConstant             = "dev"
	develVersionMarkerConstant             = "(devel)"
	versionOutputTemplateConstant          = "%s\n"
)

// applicationVersion is replaced at link time with -ldflags "-X github.com/temirov/ghmcp/cmd/cli.applicationVersion=v1.2.3".
var applicationVersion = developmentVersionConstant

func resolveApplicationVersion() string {
	if applicationVersion != developmentVersionConstant {
		return applicationVersion
	}
	if buildInformation, available := debug.ReadBuildInfo(); available {
		moduleVersion := buildInformation.Main.Version
		if len(moduleVersion) > 0 && moduleVersion != develVersionMarkerConstant {
			return moduleVersion
		}
	}
	return developmentVersionConstant
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			_, writeError := fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, resolveApplicationVersion())
			return writeError
		},
	}
}
