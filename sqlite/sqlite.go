// Package sqlite provides SQLite-based storage for the extraction history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database, applies connection settings and migrates the
// schema to the latest version.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; a single connection also keeps :memory: databases
	// alive across queries.
	conn.SetMaxOpenConns(1)

	if err := configure(conn, db.path != ":memory:"); err != nil {
		conn.Close()
		return err
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return err
	}

	db.db = conn
	return nil
}

// configure applies connection pragmas. WAL is only available for files.
func configure(conn *sql.DB, file bool) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if file {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL")
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

// migrations holds schema changes in order. The database's user_version
// records how many have been applied.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		page_url TEXT NOT NULL,
		file_id TEXT NOT NULL DEFAULT '',
		file_name TEXT,
		file_size TEXT,
		upload_date TEXT,
		html TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL,
		extracted_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS links (
		record_id TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		source TEXT NOT NULL,
		quality TEXT,
		file_size TEXT,
		file_type TEXT,
		size_bytes INTEGER,
		PRIMARY KEY (record_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_records_page_url ON records(page_url, extracted_at);
	CREATE INDEX IF NOT EXISTS idx_records_file_id ON records(file_id);
	CREATE INDEX IF NOT EXISTS idx_links_source ON links(source);
	`,
}

// migrate applies pending migrations, each in its own transaction.
func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := conn.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// Version returns the applied schema version.
func (db *DB) Version(ctx context.Context) (int, error) {
	var version int
	err := db.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version)
	return version, err
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, opts)
}
