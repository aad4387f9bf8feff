package network

import "fmt"

// ErrorCode categorizes network errors.
type ErrorCode string

const (
	// CodeDuplicateID indicates an entity with the same ID already exists.
	CodeDuplicateID ErrorCode = "DUPLICATE_ID"

	// CodeDuplicateEdge indicates an edge with the same triplet already exists.
	CodeDuplicateEdge ErrorCode = "DUPLICATE_EDGE"

	// CodeNotFound indicates a referenced entity or edge does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeEntityInUse indicates a delete of an entity that still has edges.
	CodeEntityInUse ErrorCode = "ENTITY_IN_USE"

	// CodeSelfLoop indicates an edge whose source and target are the same.
	CodeSelfLoop ErrorCode = "SELF_LOOP"

	// CodeInvalidID indicates an empty entity ID or edge label.
	CodeInvalidID ErrorCode = "INVALID_ID"

	// CodeSchemaViolation indicates the Validator rejected the properties.
	CodeSchemaViolation ErrorCode = "SCHEMA_VIOLATION"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrDuplicateID     = &Error{Code: CodeDuplicateID}
	ErrDuplicateEdge   = &Error{Code: CodeDuplicateEdge}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrEntityInUse     = &Error{Code: CodeEntityInUse}
	ErrSelfLoop        = &Error{Code: CodeSelfLoop}
	ErrInvalidID       = &Error{Code: CodeInvalidID}
	ErrSchemaViolation = &Error{Code: CodeSchemaViolation}
)

// Error is returned by every failing network operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that failed, e.g. "create edge".
	Op string

	// Ref names the offending entity ID or edge triplet.
	Ref string

	// Err is the underlying cause, set for schema violations.
	Err error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Op != "" {
		msg = fmt.Sprintf("%s %s: %s", e.Op, e.Ref, e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "network: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code ErrorCode, op, ref string) *Error {
	return &Error{Code: code, Op: op, Ref: ref}
}
