package query

import "fmt"

// ParseError wraps a syntax error from the lexer/parser.
type ParseError struct{ Err error }

func (e *ParseError) Error() string { return fmt.Sprintf("query: parse error: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// ExecutionError wraps a failure while resolving or scanning a table.
type ExecutionError struct {
	Stage string // "resolve", "scan", "join", "eval"
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query: %s failed: %v", e.Stage, e.Err)
}
func (e *ExecutionError) Unwrap() error { return e.Err }

// TimeoutError is returned when a query exceeds engine.timeout_ms.
type TimeoutError struct{ Query string }

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("query: timed out: %s", e.Query)
}

// UnknownTableError is returned when FROM/JOIN names a table the
// catalog has no provider for.
type UnknownTableError struct{ Catalog, Namespace, Table string }

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("query: unknown table %s.%s.%s", e.Catalog, e.Namespace, e.Table)
}

// UnknownColumnError is returned when a WHERE or JOIN ON column is
// missing from a row; a missing SELECT or ORDER BY column yields Nil.
type UnknownColumnError struct{ Column string }

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("query: unknown column %q", e.Column)
}
