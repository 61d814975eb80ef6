package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or policy-violating input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a state conflict, e.g. a vehicle already reserved.
	ErrConflict = errors.New("conflict")
	// ErrInsufficientStock indicates inventory cannot cover a deduction.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Validationf builds a validation error with a formatted reason.
// Callers must correct the input and retry; nothing was applied.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// InsufficientStockError names the product/lot and shortfall that blocked an
// inventory deduction. The whole status update it belongs to rolls back.
type InsufficientStockError struct {
	ProductID int64
	LotID     int64
	Required  int
}

func (e *InsufficientStockError) Error() string {
	if e.LotID > 0 {
		return fmt.Sprintf("insufficient stock for lot %d (product %d, need %d)", e.LotID, e.ProductID, e.Required)
	}
	return fmt.Sprintf("insufficient stock for product %d (need %d)", e.ProductID, e.Required)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PersistenceError wraps an infrastructure failure from the data store.
// The enclosing transaction has been rolled back; the operation is safe to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
