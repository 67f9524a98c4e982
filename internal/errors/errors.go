package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeConstraintViolation = "CONSTRAINT_VIOLATION"
	ErrCodeInvariantViolation  = "INVARIANT_VIOLATION"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeConflict            = "CONFLICT"
)

// AppError represents an application error with an error code and the HTTP
// status the API answers with.
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "CONSTRAINT_VIOLATION")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewConstraintError reports a broken uniqueness, presence or reference rule.
// No partial writes are left behind when it is returned.
func NewConstraintError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeConstraintViolation,
		Message: fmt.Sprintf("constraint violated for %s: %s", field, reason),
		Status:  409,
	}
}

// WrapConstraintError is NewConstraintError keeping the store error.
func WrapConstraintError(field, reason string, err error) *AppError {
	e := NewConstraintError(field, reason)
	e.Err = err
	return e
}

// NewInvariantError reports programmer misuse. It is raised with panic.
func NewInvariantError(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeInvariantViolation,
		Message: fmt.Sprintf(format, args...),
		Status:  500,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  400,
	}
}

// NewConflictError reports a request that does not fit the current state of a resource.
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeConflict,
		Message: message,
		Status:  409,
	}
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// IsNotFound reports a NOT_FOUND error anywhere in the chain.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }

// IsConstraintViolation reports a CONSTRAINT_VIOLATION error anywhere in the chain.
func IsConstraintViolation(err error) bool { return HasCode(err, ErrCodeConstraintViolation) }

// As exposes the standard library helper so callers importing this package
// under the name errors keep access to it.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Is exposes the standard library helper.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// New exposes the standard library helper.
func New(text string) error { return stderrors.New(text) }
