package errors

import "fmt"

// ErrorCode represents an nbtidy error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrParse          ErrorCode = "PARSE_ERROR"
	ErrNotANotebook   ErrorCode = "NOT_A_NOTEBOOK"
	ErrIO             ErrorCode = "IO_ERROR"
	ErrInternal       ErrorCode = "INTERNAL"
)

// TidyError represents a structured error with a code and details.
type TidyError struct {
	Code    ErrorCode
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TidyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates an error for invalid request parameters.
func NewInvalidRequest(msg string) *TidyError {
	return &TidyError{
		Code:    ErrInvalidRequest,
		Message: msg,
	}
}

// NewNotFound creates an error for a missing notebook file.
func NewNotFound(path string) *TidyError {
	return &TidyError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("notebook not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewParseError creates an error for a file that is not valid JSON.
// Parse errors are fatal: the run aborts unless keep-going is set.
func NewParseError(path string, err error) *TidyError {
	return &TidyError{
		Code:    ErrParse,
		Message: fmt.Sprintf("%s: %v", path, err),
		Details: map[string]any{"path": path},
	}
}

// NewNotANotebook creates an error for valid JSON whose top level is not an object.
func NewNotANotebook(path string) *TidyError {
	return &TidyError{
		Code:    ErrNotANotebook,
		Message: fmt.Sprintf("%s: top-level JSON value is not an object", path),
		Details: map[string]any{"path": path},
	}
}

// NewReadError creates an error for a failed file read.
func NewReadError(path string, err error) *TidyError {
	return &TidyError{
		Code:    ErrIO,
		Message: fmt.Sprintf("read %s: %v", path, err),
		Details: map[string]any{"path": path},
	}
}

// NewWriteError creates an error for a failed file write.
func NewWriteError(path string, err error) *TidyError {
	return &TidyError{
		Code:    ErrIO,
		Message: fmt.Sprintf("write %s: %v", path, err),
		Details: map[string]any{"path": path},
	}
}

// NewInternal creates an error for unexpected internal failures.
func NewInternal(err error) *TidyError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TidyError{
		Code:    ErrInternal,
		Message: msg,
	}
}

// Is checks if an error is a TidyError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TidyError); ok {
		return tErr.Code == code
	}
	return false
}
