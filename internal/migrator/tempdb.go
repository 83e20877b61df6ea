package migrator

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eleven-am/todolist/internal/logger"
	"github.com/jmoiron/sqlx"
)

// TempDBManager creates throwaway databases on the server of baseConfig.
// The target schema is materialized in one so atlas can inspect it.
type TempDBManager struct {
	baseConfig *DBConfig
}

func NewTempDBManager(config *DBConfig) *TempDBManager {
	return &TempDBManager{baseConfig: config}
}

func (m *TempDBManager) buildTempDBURL(tempDBName string) (string, error) {
	return replaceDatabase(m.baseConfig.URL, tempDBName)
}

// CreateTempDB creates the database and connects to it. The returned cleanup
// closes the connection and drops the database.
func (m *TempDBManager) CreateTempDB(ctx context.Context, name string) (*sql.DB, func(), error) {
	adminDSN, err := replaceDatabase(m.baseConfig.URL, "postgres")
	if err != nil {
		return nil, nil, err
	}
	tempURL, err := m.buildTempDBURL(name)
	if err != nil {
		return nil, nil, err
	}

	admin, err := sqlx.ConnectContext(ctx, "postgres", adminDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to admin database: %w", err)
	}

	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+quoteIdentifier(name)); err != nil {
		admin.Close()
		return nil, nil, fmt.Errorf("failed to create temp database %s: %w", name, err)
	}

	log := logger.Migration().WithField("temp_database", name)
	drop := func() {
		// The caller's context may already be done; dropping must still run.
		if _, err := admin.ExecContext(context.Background(), "DROP DATABASE IF EXISTS "+quoteIdentifier(name)); err != nil {
			log.Warn("failed to drop temp database", "error", err)
		}
		admin.Close()
	}

	temp, err := sqlx.ConnectContext(ctx, "postgres", tempURL)
	if err != nil {
		drop()
		return nil, nil, fmt.Errorf("failed to connect to temp database %s: %w", name, err)
	}

	log.Debug("temp database created")
	return temp.DB, func() {
		temp.Close()
		drop()
	}, nil
}
