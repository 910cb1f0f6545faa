package csvimport

import (
	"errors"
	"fmt"
)

// File-level failures. Any of these rejects the whole file.
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrInvalidHeader   = errors.New("CSV header is invalid")
	ErrTooManyRows     = errors.New("CSV file has too many rows")
)

// Row error codes
const (
	CodeRequired   = "REQUIRED"
	CodeInvalid    = "INVALID"
	CodeTooLong    = "TOO_LONG"
	CodeOutOfRange = "OUT_OF_RANGE"
	CodeDuplicate  = "DUPLICATE_IN_FILE"
	CodeConflict   = "ALREADY_EXISTS"
	CodeMalformed  = "MALFORMED_ROW"
)

// RowError points at one cell (or a whole row when Column is empty)
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// DefaultErrorLimit is used when NewErrors gets a non-positive limit
const DefaultErrorLimit = 100

// Errors collects row errors up to a limit while still counting the rest
type Errors struct {
	items []RowError
	rows  map[int]struct{}
	limit int
	total int
}

// NewErrors creates a collection that keeps at most limit errors
func NewErrors(limit int) *Errors {
	if limit <= 0 {
		limit = DefaultErrorLimit
	}
	return &Errors{limit: limit, rows: make(map[int]struct{})}
}

// Add records an error
func (e *Errors) Add(err RowError) {
	e.total++
	e.rows[err.Row] = struct{}{}
	if len(e.items) < e.limit {
		e.items = append(e.items, err)
	}
}

// Addf records an error built from its parts
func (e *Errors) Addf(row int, column, code, value, format string, args ...any) {
	e.Add(RowError{Row: row, Column: column, Code: code, Value: value, Message: fmt.Sprintf(format, args...)})
}

// Items returns the retained errors in the order they were added
func (e *Errors) Items() []RowError {
	return e.items
}

// Total counts every error, including those past the limit
func (e *Errors) Total() int {
	return e.total
}

// Truncated reports whether errors were dropped
func (e *Errors) Truncated() bool {
	return e.total > len(e.items)
}

// HasErrors reports whether anything was added
func (e *Errors) HasErrors() bool {
	return e.total > 0
}

// RowFailed reports whether the given line already has an error
func (e *Errors) RowFailed(row int) bool {
	_, ok := e.rows[row]
	return ok
}

// FailedRows counts distinct rows with at least one error
func (e *Errors) FailedRows() int {
	return len(e.rows)
}
