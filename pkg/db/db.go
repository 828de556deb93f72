// Package db opens the backing store and owns the schema. Two modes exist:
// LOCAL runs on an embedded SQLite file (or :memory: for tests), REMOTE talks
// to a hosted libsql database.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	LOCAL  = "local"
	REMOTE = "remote"
)

// DBTX is the subset of *sql.DB and *sql.Tx the services depend on, so every
// query can run either standalone or inside a caller-owned transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	ErrTokenNotFound  = fmt.Errorf("token not found")
	ErrDBNameNotFound = fmt.Errorf("db name not found")
	ErrDBPathNotFound = fmt.Errorf("db path not found")
)

// NewLocal opens (or creates) a SQLite database at path with foreign keys on.
func NewLocal(path string) (*sql.DB, error) {
	if path == "" {
		return nil, ErrDBPathNotFound
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One pooled connection: the foreign_keys pragma is per-connection, and
	// :memory: databases exist per-connection too.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return conn, nil
}

// NewRemote connects to a hosted libsql database.
func NewRemote(dbName, username, token string) (*sql.DB, error) {
	if dbName == "" || username == "" {
		return nil, ErrDBNameNotFound
	}
	if token == "" {
		return nil, ErrTokenNotFound
	}

	url := fmt.Sprintf("libsql://%s-%s.turso.io", dbName, username)
	connector, err := libsql.NewConnector(url, libsql.WithAuthToken(token))
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	conn := sql.OpenDB(connector)
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}
