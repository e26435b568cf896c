package store

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownColumn = errors.New("unknown column")
)

// StorageError is a failed database operation carrying the backend's
// error code and message so the HTTP layer can expose them under
// more_info.sql_error when debug mode is on.
type StorageError struct {
	Op    string
	Table Table
	Code  int
	Err   error
}

func (e *StorageError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s %s: (%d) %v", e.Op, e.Table, e.Code, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func wrapStorageError(op string, table Table, err error) error {
	se := &StorageError{Op: op, Table: table, Err: err}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		se.Code = sqErr.Code()
	}
	return se
}
