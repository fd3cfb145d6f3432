// Package sqlite stores the cash book in a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/dvloznov/cashbook/internal/migrate"
	"github.com/dvloznov/cashbook/migrations"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Connection manages a SQLite database connection.
type Connection struct {
	db     *sql.DB
	dbPath string
}

// Open opens the database at dbPath and applies any pending migrations.
// Foreign keys and WAL mode are enabled on every connection.
func Open(ctx context.Context, dbPath string) (*Connection, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; also keeps :memory: on a single shared connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn := &Connection{db: db, dbPath: dbPath}
	if err := conn.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return conn, nil
}

func (c *Connection) migrate(ctx context.Context) error {
	all, err := migrate.Read(migrations.FS, "sqlite", nil)
	if err != nil {
		return err
	}
	_, err = migrate.Run(ctx, migrate.NewSQLApplier(c.db, migrate.DialectSQLite), all, "cashbook")
	return err
}

// Close closes the database connection.
func (c *Connection) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying *sql.DB.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Path returns the database file path.
func (c *Connection) Path() string {
	return c.dbPath
}
