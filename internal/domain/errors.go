package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMatch is returned when a player is reported against themselves.
	ErrInvalidMatch = errors.New("winner and loser must be different players")

	// ErrUnknownPlayer is returned by operations that require a registered player.
	ErrUnknownPlayer = errors.New("player is not registered")

	ErrMatchNotFound = errors.New("match not found")

	ErrInvalidFilter = errors.New("invalid leaderboard filter")

	// ErrDuplicateExternalMatch means an external match id was already applied.
	// The importer normally classifies this instead of surfacing it.
	ErrDuplicateExternalMatch = errors.New("external match already processed")
)

// StorageError wraps a failed ledger transaction. The transaction has been
// rolled back when this is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}
