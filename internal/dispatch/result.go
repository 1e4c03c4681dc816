package dispatch

import "fmt"

const (
	resultErrorTemplateConstant = "%s: %s"
)

// ErrorKind is the stable tag attached to every failed Result.
type ErrorKind string

// Error kinds reported to protocol clients.
const (
	ErrorKindValidation       ErrorKind = ErrorKind("ValidationError")
	ErrorKindUnknownOperation ErrorKind = ErrorKind("UnknownOperationError")
	ErrorKindSpawn            ErrorKind = ErrorKind("SpawnError")
	ErrorKindCommand          ErrorKind = ErrorKind("CommandError")
)

// ResultError is the failure half of a Result.
type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	cause   error
}

// Error describes the failure with its kind.
func (resultError *ResultError) Error() string {
	return fmt.Sprintf(resultErrorTemplateConstant, resultError.Kind, resultError.Message)
}

// Unwrap exposes the typed error the failure was classified from.
func (resultError *ResultError) Unwrap() error {
	return resultError.cause
}

// Result is the normalized outcome of one dispatch: either a payload or an error.
type Result struct {
	Payload string
	Error   *ResultError
}

// Succeeded reports whether the dispatch produced a payload.
func (result Result) Succeeded() bool {
	return result.Error == nil
}

// Kind returns the failure kind, or an empty kind for successful results.
func (result Result) Kind() ErrorKind {
	if result.Error == nil {
		return ""
	}
	return result.Error.Kind
}

func successResult(payload string) Result {
	return Result{Payload: payload}
}

func failureResult(kind ErrorKind, message string, cause error) Result {
	return Result{Error: &ResultError{Kind: kind, Message: message, cause: cause}}
}
