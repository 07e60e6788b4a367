package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrInconsistent = errors.New("posting group does not balance")

	// ErrDuplicatePosting is returned by stores when the order-revenue uniqueness constraint rejects an insert.
	ErrDuplicatePosting = errors.New("duplicate posting")
)

// ValidationError reports a missing or invalid input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError reports a state conflict, such as a session that is already open.
type ConflictError struct {
	Resource string
	ID       uuid.UUID
	Since    time.Time // When the conflicting resource was opened, if known
	Message  string
}

func (e *ConflictError) Error() string {
	if !e.Since.IsZero() {
		return fmt.Sprintf("%s %s: %s (since %s)", e.Resource, e.ID, e.Message, e.Since.Format(time.RFC3339))
	}

	return fmt.Sprintf("%s %s: %s", e.Resource, e.ID, e.Message)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	if e.ID == uuid.Nil {
		return e.Resource + " not found"
	}

	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConsistencyError reports a posting group whose debits and credits differ.
type ConsistencyError struct {
	GroupID uuid.UUID
	Debits  decimal.Decimal
	Credits decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("posting group %s: debits %s != credits %s", e.GroupID, e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

func (e *ConsistencyError) Is(target error) bool { return target == ErrInconsistent }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}
