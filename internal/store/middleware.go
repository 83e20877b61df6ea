package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/eleven-am/todolist/internal/logger"
)

// OperationType represents different types of database operations
type OperationType string

const (
	OpInsert OperationType = "insert"
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
	OpFind   OperationType = "find"
)

// QueryContext describes one statement on its way to the database.
type QueryContext struct {
	Operation OperationType
	Table     string
	Query     string
	Args      []interface{}
	Err       error
	StartTime time.Time
	Duration  time.Duration
	Context   context.Context
}

// QueryFunc executes the statement described by the context
type QueryFunc func(qc *QueryContext) error

// QueryMiddleware wraps statement execution
type QueryMiddleware func(next QueryFunc) QueryFunc

type middlewareChain struct {
	middleware []QueryMiddleware
}

func (mc *middlewareChain) add(mw ...QueryMiddleware) {
	mc.middleware = append(mc.middleware, mw...)
}

func (mc *middlewareChain) execute(qc *QueryContext, final QueryFunc) error {
	handler := final
	for i := len(mc.middleware) - 1; i >= 0; i-- {
		handler = mc.middleware[i](handler)
	}
	return handler(qc)
}

// LoggingMiddleware logs every statement at debug level and failures at warn.
// An empty single-row lookup is an expected miss and stays at debug.
func LoggingMiddleware(log logger.Logger) QueryMiddleware {
	return func(next QueryFunc) QueryFunc {
		return func(qc *QueryContext) error {
			err := next(qc)
			l := log.WithFields(map[string]interface{}{
				"op":       string(qc.Operation),
				"table":    qc.Table,
				"duration": qc.Duration,
			})
			switch {
			case errors.Is(err, sql.ErrNoRows):
				l.Debug("query matched no rows", "query", qc.Query)
				return err
			case err != nil:
				l.Warn("query failed", "query", qc.Query, "error", err)
				return err
			}
			l.Debug("query", "query", qc.Query, "args", len(qc.Args))
			return nil
		}
	}
}
