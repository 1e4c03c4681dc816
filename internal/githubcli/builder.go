package githubcli

import (
	"path/filepath"
	"strings"
)

const (
	executableExtensionConstant = ".exe"
)

// CommandBuilder turns an operation and its argument bundle into a CommandLine.
// It is pure: the same inputs always produce the same command line or the same error.
type CommandBuilder struct {
	programNames []string
}

// NewCommandBuilder constructs a builder. The configured executable's base name
// is treated as a program name in addition to gh when guarding raw commands.
func NewCommandBuilder(executable string) CommandBuilder {
	programNames := []string{CommandGitHubProgramName}
	configuredProgramName := normalizeProgramName(executable)
	if len(configuredProgramName) > 0 && configuredProgramName != CommandGitHubProgramName {
		programNames = append(programNames, configuredProgramName)
	}
	return CommandBuilder{programNames: programNames}
}

// Build validates arguments against the operation's parameters and renders its command line.
func (builder CommandBuilder) Build(operation OperationName, arguments ArgumentBundle) (CommandLine, error) {
	definition, lookupError := LookupOperation(operation)
	if lookupError != nil {
		return nil, lookupError
	}
	return builder.BuildDefinition(definition, arguments)
}

// BuildDefinition renders the command line of an already resolved operation.
func (builder CommandBuilder) BuildDefinition(definition OperationDefinition, arguments ArgumentBundle) (CommandLine, error) {
	normalizedValues := make(map[string]string, len(definition.Parameters))
	for _, parameter := range definition.Parameters {
		value, valuePresent := arguments[parameter.Name]
		if !valuePresent || len(strings.TrimSpace(value)) == 0 {
			if parameter.Required {
				return nil, ValidationError{FieldName: parameter.Name, Message: requiredValueMessageConstant}
			}
			continue
		}

		normalizedValue, normalizationError := normalizeParameterValue(parameter, value)
		if normalizationError != nil {
			return nil, normalizationError
		}
		normalizedValues[parameter.Name] = normalizedValue
	}

	commandLine := CommandLine{}
	for _, template := range definition.template {
		if template.kind == rawCommandTokenTemplate {
			rawTokens, tokenizationError := builder.tokenizeRawCommand(template.parameters[0], normalizedValues[template.parameters[0]])
			if tokenizationError != nil {
				return nil, tokenizationError
			}
			commandLine = append(commandLine, rawTokens...)
			continue
		}
		commandLine = template.render(commandLine, normalizedValues)
	}

	return commandLine, nil
}

func (builder CommandBuilder) isProgramName(token string) bool {
	candidate := normalizeProgramName(token)
	for _, programName := range builder.programNames {
		if candidate == programName {
			return true
		}
	}
	return false
}

func normalizeProgramName(executable string) string {
	trimmedExecutable := strings.TrimSpace(executable)
	if len(trimmedExecutable) == 0 {
		return ""
	}
	baseName := filepath.Base(trimmedExecutable)
	return strings.TrimSuffix(strings.ToLower(baseName), executableExtensionConstant)
}
