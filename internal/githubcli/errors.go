package githubcli

import "fmt"

const (
	validationErrorTemplateConstant       = "%s: %s"
	unknownOperationErrorTemplateConstant = "unknown operation: %s"
)

// ValidationError reports an argument bundle that cannot produce a command line.
type ValidationError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (validationError ValidationError) Error() string {
	return fmt.Sprintf(validationErrorTemplateConstant, validationError.FieldName, validationError.Message)
}

// UnknownOperationError reports an operation name missing from the catalog.
type UnknownOperationError struct {
	Operation OperationName
}

// Error describes the unknown operation.
func (unknownOperationError UnknownOperationError) Error() string {
	return fmt.Sprintf(unknownOperationErrorTemplateConstant, unknownOperationError.Operation)
}
