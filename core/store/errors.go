package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a point read finds no item.
	ErrNotFound = errors.New("item not found")
	// ErrConditionFailed is returned when a write or delete precondition does not hold.
	ErrConditionFailed = errors.New("condition check failed")
	// ErrAmbiguous is returned when a lookup expected to be unique matches several items.
	ErrAmbiguous = errors.New("ambiguous result")
)

// StoreError wraps a backend failure that is neither a missing item nor a failed condition.
type StoreError struct {
	// Op is the operation that failed (get, put, update, delete, query, scan).
	Op string
	// Table is the table the operation targeted.
	Table string
	// Err is the underlying backend error.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Wrap returns err unchanged when it is already one of the package's typed errors,
// and a *StoreError otherwise.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConditionFailed) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Table: table, Err: err}
}
