package migrator

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/eleven-am/todolist/internal/logger"
	"github.com/jmoiron/sqlx"
)

// EnsureDatabaseExists creates the database named in dsn when it is missing.
// It reports whether the database was created.
func EnsureDatabaseExists(ctx context.Context, dsn string) (bool, error) {
	dbName, adminDSN, err := parseDSNForDB(dsn)
	if err != nil {
		return false, fmt.Errorf("failed to parse DSN: %w", err)
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", adminDSN)
	if err != nil {
		return false, fmt.Errorf("failed to connect to admin database: %w", err)
	}
	defer db.Close()

	return ensureDatabase(ctx, db, dbName)
}

func ensureDatabase(ctx context.Context, db *sqlx.DB, dbName string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := db.GetContext(ctx, &exists, query, dbName); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		return false, nil
	}

	log := logger.Migration().WithField("database", dbName)
	log.Info("database does not exist, creating")

	if _, err := db.ExecContext(ctx, "CREATE DATABASE "+quoteIdentifier(dbName)); err != nil {
		return false, fmt.Errorf("failed to create database '%s': %w", dbName, err)
	}

	log.Info("database created")
	return true, nil
}

// parseDSNForDB extracts the database name and returns a DSN for the
// maintenance database on the same server.
func parseDSNForDB(dsn string) (dbName string, adminDSN string, err error) {
	if isURL(dsn) {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("invalid database URL: %w", err)
		}
		dbName = strings.TrimPrefix(u.Path, "/")
		if dbName == "" || strings.Contains(dbName, "/") {
			return "", "", fmt.Errorf("invalid database URL format")
		}
	} else {
		for _, kv := range strings.Fields(dsn) {
			if k, v, ok := strings.Cut(kv, "="); ok && k == "dbname" {
				dbName = v
			}
		}
		if dbName == "" {
			return "", "", fmt.Errorf("no database name found in DSN")
		}
	}

	adminDSN, err = replaceDatabase(dsn, "postgres")
	if err != nil {
		return "", "", err
	}
	return dbName, adminDSN, nil
}

// replaceDatabase points a DSN at another database on the same server,
// keeping credentials and connection parameters.
func replaceDatabase(dsn, dbName string) (string, error) {
	if isURL(dsn) {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid database URL: %w", err)
		}
		u.Path = "/" + dbName
		return u.String(), nil
	}

	parts := strings.Fields(dsn)
	replaced := false
	for i, kv := range parts {
		if strings.HasPrefix(kv, "dbname=") {
			parts[i] = "dbname=" + dbName
			replaced = true
		}
	}
	if !replaced {
		parts = append(parts, "dbname="+dbName)
	}
	return strings.Join(parts, " "), nil
}

func isURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// quoteIdentifier quotes a PostgreSQL identifier to prevent SQL injection
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// GetDatabaseURL builds a database URL from components
func GetDatabaseURL(host, port, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, url.QueryEscape(password), host, port, dbname, sslmode)
}

// IsDatabaseMissing reports whether err means the target database is absent.
func IsDatabaseMissing(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "database") && strings.Contains(errStr, "does not exist")
}
