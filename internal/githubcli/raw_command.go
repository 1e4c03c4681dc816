package githubcli

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

const (
	unparsableCommandTemplateConstant = "unable to parse command: %v"
	singleCommandMessageConstant      = "must be a single command without pipes, lists, or redirections"
	literalArgumentsMessageConstant   = "arguments must be plain or quoted words without expansions"
	programPrefixTemplateConstant     = "must not start with the program name %q; pass the arguments after it"
)

// tokenizeRawCommand splits a caller-supplied command string into words using
// shell quoting rules. Nothing is expanded or executed; any construct other
// than plain and quoted words is rejected.
func (builder CommandBuilder) tokenizeRawCommand(fieldName string, command string) (CommandLine, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash), syntax.KeepComments(false))
	file, parseError := parser.Parse(strings.NewReader(command), "")
	if parseError != nil {
		return nil, ValidationError{FieldName: fieldName, Message: fmt.Sprintf(unparsableCommandTemplateConstant, parseError)}
	}

	if len(file.Stmts) != 1 {
		return nil, ValidationError{FieldName: fieldName, Message: singleCommandMessageConstant}
	}

	statement := file.Stmts[0]
	if statement.Negated || statement.Background || statement.Coprocess || len(statement.Redirs) > 0 {
		return nil, ValidationError{FieldName: fieldName, Message: singleCommandMessageConstant}
	}

	callExpression, isCall := statement.Cmd.(*syntax.CallExpr)
	if !isCall || len(callExpression.Assigns) > 0 || len(callExpression.Args) == 0 {
		return nil, ValidationError{FieldName: fieldName, Message: singleCommandMessageConstant}
	}

	tokens := make(CommandLine, 0, len(callExpression.Args))
	for _, word := range callExpression.Args {
		if !isLiteralWord(word) {
			return nil, ValidationError{FieldName: fieldName, Message: literalArgumentsMessageConstant}
		}
		token, expansionError := expand.Literal(nil, word)
		if expansionError != nil {
			return nil, ValidationError{FieldName: fieldName, Message: literalArgumentsMessageConstant}
		}
		tokens = append(tokens, token)
	}

	if builder.isProgramName(tokens[0]) {
		return nil, ValidationError{FieldName: fieldName, Message: fmt.Sprintf(programPrefixTemplateConstant, tokens[0])}
	}

	return tokens, nil
}

func isLiteralWord(word *syntax.Word) bool {
	for _, part := range word.Parts {
		switch typedPart := part.(type) {
		case *syntax.Lit:
		case *syntax.SglQuoted:
			if typedPart.Dollar {
				return false
			}
		case *syntax.DblQuoted:
			if typedPart.Dollar {
				return false
			}
			for _, quotedPart := range typedPart.Parts {
				if _, isLiteral := quotedPart.(*syntax.Lit); !isLiteral {
					return false
				}
			}
		default:
			return false
		}
	}
	return true
}
