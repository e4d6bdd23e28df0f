// Package apperr defines the error taxonomy shared by the engines and the HTTP layer.
//
// Engines return one of the typed errors below; handlers translate them to status codes:
//   - NotFoundError      -> 404
//   - ValidationError    -> 400
//   - AuthorizationError -> 403
//   - ConflictError      -> 409
//
// Anything else is treated as an unexpected storage failure.
package apperr

import (
	"errors"
	"fmt"
)

// Re-exported so callers only need this package for error checks.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)

// Sentinels matched by the typed errors' Is methods.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not authorized")
	ErrConflict     = errors.New("conflict")
)

// NotFoundError reports a missing task, action, unit, staff or plan.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation builds a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthorizationError reports an actor that is not an executor of the target.
type AuthorizationError struct {
	ActorID uint
	Reason  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("staff %d: %s", e.ActorID, e.Reason)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrUnauthorized }

// Unauthorized builds an AuthorizationError.
func Unauthorized(actorID uint, reason string) error {
	return &AuthorizationError{ActorID: actorID, Reason: reason}
}

// ConflictError reports a write refused because of dependent data.
type ConflictError struct {
	Resource string
	ID       any
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %v: %s", e.Resource, e.ID, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// Conflict builds a ConflictError.
func Conflict(resource string, id any, reason string) error {
	return &ConflictError{Resource: resource, ID: id, Reason: reason}
}
