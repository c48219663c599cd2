package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrNotFound         = errors.New("resource not found")
	ErrPrecondition     = errors.New("precondition failed")
	ErrConflict         = errors.New("resource conflict")
	ErrValidationFailed = errors.New("validation failed")
)

// ===== CUSTOM ERROR TYPES =====

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// NotFoundError means a referenced entity does not exist.
type NotFoundError struct {
	Resource string `json:"resource"`
	ID       uint   `json:"id"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PreconditionError means the entity exists but is in the wrong state for
// the operation, e.g. an unpublished quiz or a non-student user.
type PreconditionError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed (%s): %s", e.Rule, e.Message)
}

func (e *PreconditionError) Is(target error) bool { return target == ErrPrecondition }

// ConflictError means the operation clashes with the current state, such as
// touching an attempt that is already completed.
type ConflictError struct {
	Resource string `json:"resource"`
	ID       uint   `json:"id"`
	Reason   string `json:"reason"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Resource, e.ID, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// ===== ERROR HELPERS =====

func NewNotFoundError(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewPreconditionError(rule, message string, context map[string]interface{}) *PreconditionError {
	return &PreconditionError{Rule: rule, Message: message, Context: context}
}

func NewConflictError(resource string, id uint, reason string) *ConflictError {
	return &ConflictError{Resource: resource, ID: id, Reason: reason}
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsDomainError reports whether err is one of the caller-facing classes
// rather than an infrastructure failure.
func IsDomainError(err error) bool {
	return IsNotFound(err) || IsPrecondition(err) || IsConflict(err) || IsValidation(err)
}
