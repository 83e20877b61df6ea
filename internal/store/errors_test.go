package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/eleven-am/todolist/internal/logger"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})                      {}
func (nopLogger) Info(string, ...interface{})                       {}
func (nopLogger) Warn(string, ...interface{})                       {}
func (nopLogger) Error(string, ...interface{})                      {}
func (n nopLogger) WithField(string, interface{}) logger.Logger     { return n }
func (n nopLogger) WithFields(map[string]interface{}) logger.Logger { return n }

func TestError(t *testing.T) {
	baseErr := errors.New("base error")
	storeErr := &Error{
		Op:         "insert",
		Table:      "todoitem",
		Constraint: "todoitem_list_id_fkey",
		Err:        baseErr,
	}

	assert.Equal(t, "store: insert: table=todoitem: constraint=todoitem_list_id_fkey: base error", storeErr.Error())
	assert.Equal(t, baseErr, errors.Unwrap(storeErr))
	assert.ErrorIs(t, storeErr, baseErr)
}

func TestParsePostgreSQLError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       error
		retryable  bool
		constraint string
		column     string
	}{
		{
			name: "no rows",
			err:  sql.ErrNoRows,
			want: ErrNotFound,
		},
		{
			name: "wrapped no rows",
			err:  fmt.Errorf("get: %w", sql.ErrNoRows),
			want: ErrNotFound,
		},
		{
			name:       "unique violation",
			err:        &pq.Error{Code: "23505", Constraint: "todolist_pkey"},
			want:       ErrDuplicateKey,
			constraint: "todolist_pkey",
		},
		{
			name:       "foreign key violation",
			err:        &pq.Error{Code: "23503", Constraint: "todoitem_list_id_fkey"},
			want:       ErrForeignKey,
			constraint: "todoitem_list_id_fkey",
		},
		{
			name:   "not null violation",
			err:    &pq.Error{Code: "23502", Column: "name"},
			want:   ErrNotNull,
			column: "name",
		},
		{
			name:       "check violation",
			err:        &pq.Error{Code: "23514", Constraint: "todolist_name_check"},
			want:       ErrCheckConstraint,
			constraint: "todolist_name_check",
		},
		{
			name:      "statement timeout",
			err:       &pq.Error{Code: "57014"},
			want:      ErrTimeout,
			retryable: true,
		},
		{
			name:      "connection failure class",
			err:       &pq.Error{Code: "08006"},
			want:      ErrConnectionFailed,
			retryable: true,
		},
		{
			name:      "context deadline",
			err:       context.DeadlineExceeded,
			want:      ErrTimeout,
			retryable: true,
		},
		{
			name: "context canceled",
			err:  context.Canceled,
			want: ErrCanceled,
		},
		{
			name:      "connection refused text",
			err:       errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			want:      ErrConnectionFailed,
			retryable: true,
		},
		{
			name:       "foreign key text",
			err:        errors.New(`insert violates foreign key constraint "todoitem_list_id_fkey"`),
			want:       ErrForeignKey,
			constraint: "todoitem_list_id_fkey",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParsePostgreSQLError(tt.err, "op", "todoitem")
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.retryable, IsRetryable(err))

			var storeErr *Error
			if assert.True(t, errors.As(err, &storeErr)) {
				assert.Equal(t, tt.constraint, storeErr.Constraint)
				assert.Equal(t, tt.column, storeErr.Column)
				assert.Equal(t, "todoitem", storeErr.Table)
			}
		})
	}
}

func TestParsePostgreSQLErrorPassthrough(t *testing.T) {
	assert.NoError(t, ParsePostgreSQLError(nil, "op", "t"))

	original := &Error{Op: "update", Table: "todolist", Err: ErrNotFound}
	assert.Same(t, original, ParsePostgreSQLError(original, "find", "todoitem"))

	unknown := errors.New("something odd")
	err := ParsePostgreSQLError(unknown, "find", "todolist")
	assert.ErrorIs(t, err, unknown)
	assert.False(t, IsConstraintError(err))
}

func TestIsConstraintError(t *testing.T) {
	assert.True(t, IsConstraintError(&Error{Err: ErrForeignKey}))
	assert.True(t, IsConstraintError(&Error{Err: ErrNotNull}))
	assert.False(t, IsConstraintError(&Error{Err: ErrTimeout}))
	assert.False(t, IsConstraintError(errors.New("plain")))
}
