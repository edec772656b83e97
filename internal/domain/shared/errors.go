package shared

import "fmt"

// DomainError represents a domain-level error with a stable code
type DomainError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes produced by the domain and application layers
const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeEntityNotFound          = "ENTITY_NOT_FOUND"
	CodeBusinessRuleViolation   = "BUSINESS_RULE_VIOLATION"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
)

// NewValidationError creates a VALIDATION_ERROR domain error
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewEntityNotFoundError creates an ENTITY_NOT_FOUND domain error
func NewEntityNotFoundError(entityType, id string) *DomainError {
	return NewDomainError(CodeEntityNotFound, fmt.Sprintf("%s with id %s not found", entityType, id))
}

// NewBusinessRuleViolationError creates a BUSINESS_RULE_VIOLATION domain error
func NewBusinessRuleViolationError(message string) *DomainError {
	return NewDomainError(CodeBusinessRuleViolation, message)
}

// NewBusinessRuleViolationErrorWithDetails creates a BUSINESS_RULE_VIOLATION
// error carrying per-item detail lines (e.g. every insufficient component)
func NewBusinessRuleViolationErrorWithDetails(message string, details []string) *DomainError {
	return &DomainError{
		Code:    CodeBusinessRuleViolation,
		Message: message,
		Details: details,
	}
}

// NewInvalidStatusTransitionError creates an INVALID_STATUS_TRANSITION domain error
func NewInvalidStatusTransitionError(entityType, from, to string) *DomainError {
	return NewDomainError(CodeInvalidStatusTransition,
		fmt.Sprintf("%s cannot transition from %s to %s", entityType, from, to))
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeEntityNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
)
