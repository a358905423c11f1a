package table

import "errors"

// Code classifies table state errors.
type Code string

const (
	// CodeValidation marks a rejected mutation; prior state is retained.
	CodeValidation Code = "VALIDATION"
	// CodeNotFound marks a lookup of a view or filter that does not exist.
	CodeNotFound Code = "NOT_FOUND"
	// CodeStaleResponse marks an async result superseded by a newer request.
	CodeStaleResponse Code = "STALE_RESPONSE"
)

// Error is the coded error returned by the state managers.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrValidation    = &Error{Code: CodeValidation}
	ErrNotFound      = &Error{Code: CodeNotFound}
	ErrStaleResponse = &Error{Code: CodeStaleResponse}
)

// NewError creates a coded error.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a coded error carrying key/value context.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a coded error around cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func invalid(message string, metadata map[string]string) *Error {
	return WithMetadata(CodeValidation, message, metadata)
}
