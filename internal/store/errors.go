package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Common errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrForeignKey       = errors.New("foreign key violation")
	ErrCheckConstraint  = errors.New("check constraint violation")
	ErrNotNull          = errors.New("not null constraint violation")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrTimeout          = errors.New("operation timeout")
	ErrCanceled         = errors.New("operation canceled")
)

// Error provides detailed error information
type Error struct {
	Op         string // Operation that failed
	Table      string // Table involved
	Err        error  // Underlying error
	Constraint string // Constraint name (if applicable)
	Column     string // Column name (if applicable)
	Retryable  bool   // Whether the operation can be retried
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("store: %s", e.Op))

	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column=%s", e.Column))
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("constraint=%s", e.Constraint))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// SQLSTATE codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	codeUniqueViolation     pq.ErrorCode  = "23505"
	codeForeignKeyViolation pq.ErrorCode  = "23503"
	codeNotNullViolation    pq.ErrorCode  = "23502"
	codeCheckViolation      pq.ErrorCode  = "23514"
	codeQueryCanceled       pq.ErrorCode  = "57014"
	classConnection         pq.ErrorClass = "08"
)

// ParsePostgreSQLError converts driver errors into store errors.
func ParsePostgreSQLError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Table: table, Err: ErrTimeout, Retryable: true}
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeUniqueViolation:
			return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: pqErr.Constraint}
		case pqErr.Code == codeForeignKeyViolation:
			return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: pqErr.Constraint}
		case pqErr.Code == codeNotNullViolation:
			return &Error{Op: op, Table: table, Err: ErrNotNull, Column: pqErr.Column}
		case pqErr.Code == codeCheckViolation:
			return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: pqErr.Constraint}
		case pqErr.Code == codeQueryCanceled:
			return &Error{Op: op, Table: table, Err: ErrTimeout, Retryable: true}
		case pqErr.Code.Class() == classConnection:
			return &Error{Op: op, Table: table, Err: ErrConnectionFailed, Retryable: true}
		}
		return &Error{Op: op, Table: table, Err: err}
	}

	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe") ||
		errors.Is(err, pq.ErrSSLNotSupported) {
		return &Error{
			Op:        op,
			Table:     table,
			Err:       fmt.Errorf("%w: %v", ErrConnectionFailed, err),
			Retryable: true,
		}
	}

	if strings.Contains(errStr, "violates foreign key constraint") {
		return &Error{
			Op:         op,
			Table:      table,
			Err:        ErrForeignKey,
			Constraint: extractConstraintName(errStr),
		}
	}

	return &Error{Op: op, Table: table, Err: err}
}

func extractConstraintName(errStr string) string {
	start := strings.Index(errStr, "\"")
	if start == -1 {
		return ""
	}
	end := strings.Index(errStr[start+1:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start+1 : start+1+end]
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr.Retryable
	}
	return false
}

// IsConstraintError checks if an error is a constraint violation
func IsConstraintError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrForeignKey) ||
		errors.Is(err, ErrCheckConstraint) ||
		errors.Is(err, ErrNotNull)
}

func notFound(op, table string) error {
	return &Error{Op: op, Table: table, Err: ErrNotFound}
}
