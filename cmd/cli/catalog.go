package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/ghmcp/internal/githubcli"
)

const (
	catalogCommandUseConstant              = "catalog"
	catalogCommandShortDescriptionConstant = "Print the operation catalog as YAML"
	catalogIndentConstant                  = 2
)

type catalogEntry struct {
	Name        githubcli.OperationName            `yaml:"name"`
	Description string                             `yaml:"description"`
	Synopsis    string                             `yaml:"synopsis"`
	EmitsJSON   bool                               `yaml:"emits_json"`
	Parameters  []githubcli.ParameterSpecification `yaml:"parameters,omitempty"`
}

func newCatalogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   catalogCommandUseConstant,
		Short: catalogCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			definitions := githubcli.Operations()
			entries := make([]catalogEntry, 0, len(definitions))
			for _, definition := range definitions {
				entries = append(entries, catalogEntry{
					Name:        definition.Name,
					Description: definition.Description,
					Synopsis:    definition.Synopsis(),
					EmitsJSON:   definition.EmitsJSON,
					Parameters:  definition.Parameters,
				})
			}

			encoder := yaml.NewEncoder(command.OutOrStdout())
			encoder.SetIndent(catalogIndentConstant)
			if encodeError := encoder.Encode(entries); encodeError != nil {
				return encodeError
			}
			return encoder.Close()
		},
	}
}
