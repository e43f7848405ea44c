package shared

import "errors"

// Error codes shared by every aggregate of the back office.
// Errors are compared by code, so callers can match a kind with errors.Is
// regardless of the message carried by a specific failure.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeValidation          = "VALIDATION_ERROR"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError of the same kind
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
	ErrValidation          = NewDomainError(CodeValidation, "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// NewNotFoundError creates a NOT_FOUND error with a specific message
func NewNotFoundError(message string) *DomainError {
	return NewDomainError(CodeNotFound, message)
}

// NewAlreadyExistsError creates an ALREADY_EXISTS error with a specific message
func NewAlreadyExistsError(message string) *DomainError {
	return NewDomainError(CodeAlreadyExists, message)
}

// NewUnauthorizedError creates an UNAUTHORIZED error with a specific message
func NewUnauthorizedError(message string) *DomainError {
	return NewDomainError(CodeUnauthorized, message)
}

// NewValidationError creates a VALIDATION_ERROR with a message naming the field and rule
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewConcurrencyConflictError creates a CONCURRENCY_CONFLICT error with a specific message
func NewConcurrencyConflictError(message string) *DomainError {
	return NewDomainError(CodeConcurrencyConflict, message)
}

// NewInvalidStateError creates an INVALID_STATE error with a specific message
func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// IsNotFound reports whether err is a NOT_FOUND domain error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is an ALREADY_EXISTS domain error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsUnauthorized reports whether err is an UNAUTHORIZED domain error
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsValidation reports whether err is a VALIDATION_ERROR domain error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConcurrencyConflict reports whether err is a CONCURRENCY_CONFLICT domain error
func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// ErrorCode returns the domain error code carried by err, or an empty string
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
