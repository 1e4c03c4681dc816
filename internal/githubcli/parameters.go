package githubcli

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	requiredValueMessageConstant   = "value required"
	whitespaceMessageConstant      = "must not contain whitespace"
	slashMessageConstant           = "must not contain '/'"
	leadingDashMessageConstant     = "must not start with '-'"
	positiveIntegerMessageConstant = "must be a positive integer"
	fieldListMessageConstant       = "must be a comma-separated list of field names"
	stateMessageTemplateConstant   = "must be one of: %s"
	pathSeparatorConstant          = "/"
	flagPrefixConstant             = "-"
	fieldListSeparatorConstant     = ","
	stateListSeparatorConstant     = ", "
)

// ParameterKind selects the validation applied to a parameter value.
type ParameterKind string

// Parameter kinds.
const (
	// ParameterKindText is passed verbatim.
	ParameterKindText ParameterKind = ParameterKind("text")
	// ParameterKindIdentifier is trimmed and must be a single word not starting with '-'.
	ParameterKindIdentifier ParameterKind = ParameterKind("identifier")
	// ParameterKindSegment is an identifier that must not contain '/'.
	ParameterKindSegment ParameterKind = ParameterKind("segment")
	// ParameterKindPath is trimmed and must not start with '-'.
	ParameterKindPath ParameterKind = ParameterKind("path")
	// ParameterKindLimit is a positive integer.
	ParameterKindLimit ParameterKind = ParameterKind("limit")
	// ParameterKindFieldList is a comma-separated list of identifiers.
	ParameterKindFieldList ParameterKind = ParameterKind("field_list")
	// ParameterKindIssueState is one of the gh issue list states.
	ParameterKindIssueState ParameterKind = ParameterKind("issue_state")
	// ParameterKindPullRequestState is one of the gh pr list states.
	ParameterKindPullRequestState ParameterKind = ParameterKind("pull_request_state")
	// ParameterKindCommand is a GitHub CLI command line without the program name.
	ParameterKindCommand ParameterKind = ParameterKind("command")
)

var issueStates = []string{"open", "closed", "all"}

var pullRequestStates = []string{"open", "closed", "merged", "all"}

// normalizeParameterValue validates value for the parameter and returns the token form of it.
func normalizeParameterValue(parameter ParameterSpecification, value string) (string, error) {
	switch parameter.Kind {
	case ParameterKindText, ParameterKindCommand:
		return value, nil
	case ParameterKindIdentifier:
		return normalizeIdentifier(parameter.Name, value)
	case ParameterKindSegment:
		identifier, identifierError := normalizeIdentifier(parameter.Name, value)
		if identifierError != nil {
			return "", identifierError
		}
		if strings.Contains(identifier, pathSeparatorConstant) {
			return "", ValidationError{FieldName: parameter.Name, Message: slashMessageConstant}
		}
		return identifier, nil
	case ParameterKindPath:
		trimmedValue := strings.TrimSpace(value)
		if strings.HasPrefix(trimmedValue, flagPrefixConstant) {
			return "", ValidationError{FieldName: parameter.Name, Message: leadingDashMessageConstant}
		}
		return trimmedValue, nil
	case ParameterKindLimit:
		trimmedValue := strings.TrimSpace(value)
		limit, parseError := strconv.Atoi(trimmedValue)
		if parseError != nil || limit <= 0 {
			return "", ValidationError{FieldName: parameter.Name, Message: positiveIntegerMessageConstant}
		}
		return strconv.Itoa(limit), nil
	case ParameterKindFieldList:
		return normalizeFieldList(parameter.Name, value)
	case ParameterKindIssueState:
		return normalizeEnumeration(parameter.Name, value, issueStates)
	case ParameterKindPullRequestState:
		return normalizeEnumeration(parameter.Name, value, pullRequestStates)
	default:
		return value, nil
	}
}

func normalizeIdentifier(fieldName string, value string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if strings.IndexFunc(trimmedValue, unicode.IsSpace) >= 0 {
		return "", ValidationError{FieldName: fieldName, Message: whitespaceMessageConstant}
	}
	if strings.HasPrefix(trimmedValue, flagPrefixConstant) {
		return "", ValidationError{FieldName: fieldName, Message: leadingDashMessageConstant}
	}
	return trimmedValue, nil
}

func normalizeFieldList(fieldName string, value string) (string, error) {
	fieldNames := strings.Split(value, fieldListSeparatorConstant)
	normalizedFieldNames := make([]string, 0, len(fieldNames))
	for _, candidate := range fieldNames {
		trimmedCandidate := strings.TrimSpace(candidate)
		if len(trimmedCandidate) == 0 || !isFieldName(trimmedCandidate) {
			return "", ValidationError{FieldName: fieldName, Message: fieldListMessageConstant}
		}
		normalizedFieldNames = append(normalizedFieldNames, trimmedCandidate)
	}
	return strings.Join(normalizedFieldNames, fieldListSeparatorConstant), nil
}

func isFieldName(candidate string) bool {
	for _, character := range candidate {
		if !unicode.IsLetter(character) && !unicode.IsDigit(character) && character != '_' {
			return false
		}
	}
	return true
}

func normalizeEnumeration(fieldName string, value string, allowedValues []string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	for _, allowedValue := range allowedValues {
		if normalizedValue == allowedValue {
			return normalizedValue, nil
		}
	}
	return "", ValidationError{FieldName: fieldName, Message: formatStateMessage(allowedValues)}
}

func formatStateMessage(allowedValues []string) string {
	return fmt.Sprintf(stateMessageTemplateConstant, strings.Join(allowedValues, stateListSeparatorConstant))
}
