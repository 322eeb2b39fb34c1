package relationaldb

import (
	"errors"
	"fmt"
)

// Error types for different categories of database errors
var (
	// Configuration errors
	ErrMissingDSN          = errors.New("database connection string is required")
	ErrInvalidDriver       = errors.New("invalid database driver")
	ErrInvalidMaxOpenConns = errors.New("max open connections must be >= 0")
	ErrInvalidTimeout      = errors.New("timeout must be positive")

	// Connection errors
	ErrDatabaseClosed = errors.New("database connection is closed")

	// Query errors
	ErrInvalidLimit = errors.New("invalid query limit")
)

// QueryError wraps a failed statement with the operation that issued it
type QueryError struct {
	Op      string
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError creates a QueryError
func NewQueryError(op, message string, err error) *QueryError {
	return &QueryError{Op: op, Message: message, Err: err}
}
