package sqlexec

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned when the SQL text is empty or whitespace-only.
	ErrEmptyQuery = errors.New("sql query is empty or invalid")

	// ErrNoData is returned when no dataset has been loaded.
	ErrNoData = errors.New("data not loaded, cannot execute sql query")
)

// QueryError is an engine-reported execution failure. It carries the original
// SQL so the caller can surface or regenerate it.
type QueryError struct {
	SQL     string
	Message string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("sql query execution error: %s (attempted sql: %s)", e.Message, e.SQL)
}
