// Package store persists lists and items in PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/eleven-am/todolist/internal/logger"
	"github.com/eleven-am/todolist/internal/model"
	"github.com/jmoiron/sqlx"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Queries is the set of statements available on a Store, inside or outside
// a transaction.
type Queries interface {
	FindLists(ctx context.Context) ([]model.List, error)
	FindList(ctx context.Context, id int64) (*model.List, error)
	InsertList(ctx context.Context, list *model.List) error
	UpdateListCompleted(ctx context.Context, id int64, completed bool) error
	DeleteList(ctx context.Context, id int64) error

	FindItems(ctx context.Context, listID int64) ([]model.Item, error)
	LoadItems(ctx context.Context, lists []model.List) error
	InsertItem(ctx context.Context, item *model.Item) error
	UpdateItemCompleted(ctx context.Context, id int64, completed bool) error
	UpdateItemsCompletedByList(ctx context.Context, listID int64, completed bool) (int64, error)
	DeleteItem(ctx context.Context, id int64) error
	DeleteItemsByList(ctx context.Context, listID int64) (int64, error)
}

var _ Queries = (*Store)(nil)

// Store is the Postgres-backed implementation of Queries.
type Store struct {
	db       *sqlx.DB
	executor DBExecutor // Current executor (DB or TX)
	chain    *middlewareChain
}

// New wraps an open connection pool.
func New(db *sqlx.DB) *Store {
	return &Store{
		db:       db,
		executor: db,
		chain:    &middlewareChain{},
	}
}

// Use appends query middleware. The chain is shared with every transaction
// view of the store, including ones already open.
func (s *Store) Use(mw ...QueryMiddleware) {
	s.chain.add(mw...)
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return ParsePostgreSQLError(err, "ping", "")
	}
	return nil
}

// WithTransaction runs fn inside a transaction. fn receives a transaction
// bound view of the store; returning an error or panicking rolls back.
func (s *Store) WithTransaction(ctx context.Context, fn func(Queries) error) error {
	if _, isTransaction := s.executor.(*sqlx.Tx); isTransaction {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ParsePostgreSQLError(fmt.Errorf("failed to begin transaction: %w", err), "begin", "")
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logger.DB().Error("rollback failed", "error", rbErr)
		}
	}()

	txStore := &Store{db: s.db, executor: tx, chain: s.chain}
	if err := fn(txStore); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return ParsePostgreSQLError(fmt.Errorf("failed to commit transaction: %w", err), "commit", "")
	}
	committed = true

	return nil
}

// run builds the statement, passes it through the middleware chain and
// converts driver errors into *Error.
func (s *Store) run(ctx context.Context, op OperationType, table string, b squirrel.Sqlizer, exec func(query string, args []interface{}) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return &Error{Op: string(op), Table: table, Err: fmt.Errorf("failed to build query: %w", err)}
	}

	qc := &QueryContext{
		Operation: op,
		Table:     table,
		Query:     query,
		Args:      args,
		StartTime: time.Now(),
		Context:   ctx,
	}

	final := func(qc *QueryContext) error {
		err := exec(qc.Query, qc.Args)
		qc.Duration = time.Since(qc.StartTime)
		qc.Err = err
		return err
	}

	if err := s.chain.execute(qc, final); err != nil {
		return ParsePostgreSQLError(err, string(op), table)
	}
	return nil
}

// exec runs a write statement and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, op OperationType, table string, b squirrel.Sqlizer) (int64, error) {
	var result sql.Result
	err := s.run(ctx, op, table, b, func(query string, args []interface{}) error {
		var execErr error
		result, execErr = s.executor.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, &Error{Op: string(op), Table: table, Err: fmt.Errorf("failed to get rows affected: %w", err)}
	}
	return rows, nil
}
