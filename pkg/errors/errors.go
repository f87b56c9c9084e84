package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the different classes of failure a run cycle can hit
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeSession       ErrorType = "session"
	ErrorTypeAuth          ErrorType = "auth"
	ErrorTypeNavigation    ErrorType = "navigation"
	ErrorTypeExtraction    ErrorType = "extraction"
	ErrorTypeDelivery      ErrorType = "delivery"
	ErrorTypeStorage       ErrorType = "storage"
	ErrorTypeUnknown       ErrorType = "unknown"
)

// Error is a typed error carrying an optional status code and cause
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error: %s", e.Type, e.Message)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a cause
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Wrap creates a typed error around a cause
func Wrap(errorType ErrorType, message string, err error) *Error {
	return &Error{Type: errorType, Message: message, Err: err}
}

// Newf creates a typed error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// TypeOf returns the type of the outermost typed error in the chain,
// or ErrorTypeUnknown when there is none.
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries the given error type anywhere in its chain
func Is(err error, errorType ErrorType) bool {
	for err != nil {
		var typed *Error
		if !stderrors.As(err, &typed) {
			return false
		}
		if typed.Type == errorType {
			return true
		}
		err = typed.Err
	}
	return false
}

// IsCycleFatal checks if an error type aborts the current run cycle.
// Extraction and delivery failures are handled where they occur and a
// broken session only downgrades the cycle to an unauthenticated start.
func IsCycleFatal(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeConfiguration, ErrorTypeAuth, ErrorTypeNavigation, ErrorTypeStorage, ErrorTypeUnknown:
		return true
	case ErrorTypeSession, ErrorTypeExtraction, ErrorTypeDelivery:
		return false
	default:
		return true
	}
}
