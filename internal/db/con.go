package db

import (
	"database/sql"
	"embed"
	"fmt"
	"net/url"

	"github.com/pressly/goose/v3"
	// SQLite driver.
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var driver = "sqlite"

// Database is the shared SQLite connection.
type Database struct {
	db *sql.DB
}

// New opens the SQLite database at the provided path and applies
// pending migrations.
func New(path string) (*Database, error) {
	if path == "" {
		path = "data/taaskly"
	}
	db, err := sql.Open(driver, sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect(driver); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{db: db}, nil
}

func sqliteDSN(path string) string {
	values := url.Values{}
	values.Set("_fk", "1")

	values.Add("_pragma", "foreign_keys(ON)")
	values.Add("_pragma", "journal_mode(WAL)")
	values.Add("_pragma", "synchronous(NORMAL)")
	values.Add("_pragma", "busy_timeout(5000)")
	values.Add("_pragma", "temp_store(MEMORY)")

	return fmt.Sprintf("file:%s.sqlite?%s", path, values.Encode())
}

// DB exposes the raw connection for query adapters.
func (c *Database) DB() *sql.DB {
	return c.db
}

// Close closes the underlying database connection.
func (c *Database) Close() error {
	return c.db.Close()
}
