// Package sqlite implements the repository interfaces on SQLite
// (modernc.org/sqlite, pure Go, no CGo toolchain needed).
//
// It is the optional storage driver, selected with STORE_DRIVER=sqlite.
// Unlike the default JSON snapshot store, every mutation here touches only
// the affected row, so there is no whole-collection rewrite on write.
package sqlite

import (
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the sql.DB pool and carries the article and user repositories.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath (":memory:" for tests) and runs the
// schema migration. Ping forces an immediate connection so a bad path
// surfaces at startup instead of on the first query.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Articles returns the article repository backed by this database.
func (db *DB) Articles() *ArticleDB { return &ArticleDB{conn: db.conn} }

// Users returns the user repository backed by this database.
func (db *DB) Users() *UserDB { return &UserDB{conn: db.conn} }

func (db *DB) migrate() error {
	// Articles keep their display date as TEXT, matching the JSON store.
	// Insertion order comes from the implicit rowid: listing newest-first
	// is ORDER BY rowid DESC.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL,
			category    TEXT NOT NULL,
			author      TEXT NOT NULL,
			image       TEXT NOT NULL DEFAULT '',
			date        TEXT NOT NULL DEFAULT '',
			user_id     TEXT NOT NULL DEFAULT '',
			featured    INTEGER NOT NULL DEFAULT 0,
			is_admin    INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);
		CREATE INDEX IF NOT EXISTS idx_articles_user_id ON articles(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating articles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			google_auth   INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}
