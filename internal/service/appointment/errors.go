package appointment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Alijeyrad/nutriplan_backend/internal/repo"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("time slot is not available for booking")
	ErrInvalidState = errors.New("appointment state does not allow this action")
	ErrPermission   = errors.New("not allowed to act on this appointment")
	ErrNotFound     = errors.New("appointment not found")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError reports an occupied slot. ExistingID is uuid.Nil when the
// collision was only detected by the storage constraint.
type ConflictError struct {
	NutritionistID uuid.UUID
	Date           string
	Time           string
	ExistingID     uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s %s is already taken for this nutritionist", e.Date, e.Time)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type InvalidStateError struct {
	From   repo.AppointmentStatus
	Action Action
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s an appointment that is %s", e.Action, e.From)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

type PermissionError struct {
	ActorID uuid.UUID
	Action  Action
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("not allowed to %s this appointment", e.Action)
}

func (e *PermissionError) Is(target error) bool { return target == ErrPermission }

type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string { return "appointment " + e.ID.String() + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
