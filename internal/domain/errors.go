package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the ledger. Callers match them with errors.Is.
var (
	ErrNotFound               = errors.New("transaction not found")
	ErrInvalidImport          = errors.New("no transactions found in the file")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrMissingData            = errors.New("one or more transactions are missing data")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrStorageFailure         = errors.New("storage failure")
)

// StorageError tags err as a storage failure while keeping the cause reachable.
// It returns nil when err is nil.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &storageError{op: op, err: err}
}

type storageError struct {
	op  string
	err error
}

func (e *storageError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *storageError) Unwrap() []error {
	return []error{ErrStorageFailure, e.err}
}
