package refdata

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested gene or family has no matching record.
var ErrNotFound = errors.New("not found")

// StorageError reports that the reference database could not serve a read.
type StorageError struct {
	Op  string // operation that failed, e.g. "search genes"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err wraps a *StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
