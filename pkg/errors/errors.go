package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the kinds of failure the SDK reports locally
type ErrorType string

const (
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error represents an SDK error with type information.
// Provider error responses are not Errors; they are returned as decoded bodies.
type Error struct {
	Type    ErrorType
	Message string
	Code    int

	// Body holds the raw response body for parsing errors
	Body []byte
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Type, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same type so callers can compare against the
// sentinel values below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Message == "" || t.Message == e.Message)
}

// ErrMissingCode is returned when a code exchange is attempted without a code
var ErrMissingCode = &Error{
	Type:    ErrorTypeInvalidInput,
	Message: "authorization code is empty",
}

// New creates an Error of the given type
func New(errType ErrorType, code int, err error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		Err:     err,
	}
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	return TypeOf(err) == ErrorTypeNetwork
}

// IsInvalidInput reports whether err was caused by bad caller input
func IsInvalidInput(err error) bool {
	return TypeOf(err) == ErrorTypeInvalidInput
}
