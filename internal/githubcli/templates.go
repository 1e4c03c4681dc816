package githubcli

import (
	"fmt"
	"strings"
)

const (
	placeholderTemplateConstant           = "{%s}"
	optionalTemplateConstant              = "[%s]"
	flagPlaceholderTemplateConstant       = "%s %s"
	repositoryPlaceholderTemplateConstant = "%s/%s"
	rawCommandPlaceholderConstant         = "{command...}"
	templateTokenSeparatorConstant        = " "
)

type tokenTemplateKind int

const (
	literalTokenTemplate tokenTemplateKind = iota
	positionalTokenTemplate
	repositoryTokenTemplate
	flagTokenTemplate
	rawCommandTokenTemplate
)

// tokenTemplate is one step of an operation's command line. Values are only
// ever emitted as whole tokens; repositoryTokenTemplate is the single place
// where two parameters are joined, as owner + "/" + repo.
type tokenTemplate struct {
	kind       tokenTemplateKind
	literals   []string
	flag       string
	parameters []string
}

func literalTokens(literals ...string) tokenTemplate {
	return tokenTemplate{kind: literalTokenTemplate, literals: literals}
}

func positionalToken(parameter string) tokenTemplate {
	return tokenTemplate{kind: positionalTokenTemplate, parameters: []string{parameter}}
}

func repositoryToken(ownerParameter string, repositoryParameter string) tokenTemplate {
	return tokenTemplate{kind: repositoryTokenTemplate, parameters: []string{ownerParameter, repositoryParameter}}
}

func flagToken(flag string, parameter string) tokenTemplate {
	return tokenTemplate{kind: flagTokenTemplate, flag: flag, parameters: []string{parameter}}
}

func rawCommandTokens(parameter string) tokenTemplate {
	return tokenTemplate{kind: rawCommandTokenTemplate, parameters: []string{parameter}}
}

// render appends the template's tokens for the normalized values. Absent
// optional values contribute no tokens.
func (template tokenTemplate) render(commandLine CommandLine, values map[string]string) CommandLine {
	switch template.kind {
	case literalTokenTemplate:
		return append(commandLine, template.literals...)
	case positionalTokenTemplate:
		value, valuePresent := values[template.parameters[0]]
		if !valuePresent {
			return commandLine
		}
		return append(commandLine, value)
	case repositoryTokenTemplate:
		return append(commandLine, values[template.parameters[0]]+pathSeparatorConstant+values[template.parameters[1]])
	case flagTokenTemplate:
		value, valuePresent := values[template.parameters[0]]
		if !valuePresent {
			return commandLine
		}
		return append(commandLine, template.flag, value)
	default:
		return commandLine
	}
}

func (template tokenTemplate) describe(definition OperationDefinition) string {
	switch template.kind {
	case literalTokenTemplate:
		return strings.Join(template.literals, templateTokenSeparatorConstant)
	case positionalTokenTemplate:
		return wrapOptional(definition, template.parameters[0], fmt.Sprintf(placeholderTemplateConstant, template.parameters[0]))
	case repositoryTokenTemplate:
		return fmt.Sprintf(repositoryPlaceholderTemplateConstant,
			fmt.Sprintf(placeholderTemplateConstant, template.parameters[0]),
			fmt.Sprintf(placeholderTemplateConstant, template.parameters[1]))
	case flagTokenTemplate:
		placeholder := fmt.Sprintf(flagPlaceholderTemplateConstant, template.flag, fmt.Sprintf(placeholderTemplateConstant, template.parameters[0]))
		return wrapOptional(definition, template.parameters[0], placeholder)
	case rawCommandTokenTemplate:
		return rawCommandPlaceholderConstant
	default:
		return ""
	}
}

func wrapOptional(definition OperationDefinition, parameterName string, rendered string) string {
	parameter, parameterExists := definition.Parameter(parameterName)
	if parameterExists && parameter.Required {
		return rendered
	}
	return fmt.Sprintf(optionalTemplateConstant, rendered)
}
