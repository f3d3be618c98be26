// Package catalog provides the SQLite-backed persistent store for
// directories and documents.
package catalog

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS directories (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	parent     TEXT REFERENCES directories(id) ON DELETE CASCADE,
	path       TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_directories_root_name
	ON directories(name) WHERE parent IS NULL;
CREATE UNIQUE INDEX IF NOT EXISTS idx_directories_name_parent
	ON directories(name, parent) WHERE parent IS NOT NULL;

CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	directory    TEXT NOT NULL REFERENCES directories(id) ON DELETE CASCADE,
	file_name    TEXT NOT NULL,
	path         TEXT NOT NULL,
	custom_id    TEXT UNIQUE,
	title        TEXT,
	reading_time INTEGER,
	tags         TEXT,
	created_at   DATETIME NOT NULL,
	UNIQUE(directory, file_name)
);

CREATE INDEX IF NOT EXISTS idx_documents_directory ON documents(directory);
`

// DB wraps a sql.DB with catalog operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite catalog and applies the schema.
// Foreign keys are enabled so that pruning a root cascades to its
// descendants and their documents.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("catalog: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("catalog: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
