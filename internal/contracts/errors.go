package contracts

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinels for errors.Is. The typed errors below match them.
// ⭐ SSOT: the error taxonomy is defined here only
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrPeriodClosed = errors.New("period closed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports a malformed or missing field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports a uniqueness or referential violation
type ConflictError struct {
	Resource string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Resource, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// Conflict builds a ConflictError
func Conflict(resource, reason string) error {
	return &ConflictError{Resource: resource, Reason: reason}
}

// PeriodClosedError reports a write against a period that is not OPEN
type PeriodClosedError struct {
	PeriodID uuid.UUID
	Status   PeriodStatus
}

func (e *PeriodClosedError) Error() string {
	return fmt.Sprintf("period %s is %s: writes are not allowed", e.PeriodID, e.Status)
}

func (e *PeriodClosedError) Is(target error) bool { return target == ErrPeriodClosed }

// NotFoundError reports an unknown id
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError
func NotFound(resource string, id uuid.UUID) error {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// AuthorizationError reports a role lacking permission for an action
type AuthorizationError struct {
	Action string
	Role   Role
}

func (e *AuthorizationError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("%s: permission denied", e.Action)
	}
	return fmt.Sprintf("%s: role %s is not allowed", e.Action, e.Role)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrForbidden }
