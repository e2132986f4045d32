package migrate

import "fmt"

// InvalidIDError represents an error constructing a migration ID from a raw
// string that doesn't meet the fixed-width format.
type InvalidIDError struct {
	Raw    string
	Reason string
}

// Error returns a string representation of the error.
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid migration ID %q: %s (must be %d digits)", e.Raw, e.Reason, IDLength)
}

// ConnectionError represents a failure to establish or use the underlying
// database connection. For owned connections it also signals that the target
// closed the connection and reset to the disconnected state.
type ConnectionError struct {
	Op  string
	Err error
}

// Error returns a string representation of the error.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %s", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError represents the failure of a specific SQL statement, including
// bookkeeping primary key collisions when a migration is applied twice. The
// enclosing transaction is always rolled back before this error surfaces.
type QueryError struct {
	ID  ID // empty if the statement wasn't tied to a specific migration
	Op  string
	Err error
}

// Error returns a string representation of the error.
func (e *QueryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("query error in migration %s during %s: %s", e.ID, e.Op, e.Err)
	}
	return fmt.Sprintf("query error during %s: %s", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// CorruptStateError represents a bookkeeping row that fails to parse into a
// valid migration ID. It indicates an invariant violation in the stored
// state, and is not recoverable by this package.
type CorruptStateError struct {
	Raw string
	Err error
}

// Error returns a string representation of the error.
func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("corrupt bookkeeping state: stored ID %q: %s", e.Raw, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *CorruptStateError) Unwrap() error {
	return e.Err
}
