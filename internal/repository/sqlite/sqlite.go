// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary needs
// no C toolchain. The schema lives in migrations/ as goose SQL files that are
// embedded into the binary and applied by New.
//
// TIMESTAMPS:
// All timestamps are written as UTC time.Time values and read back through
// DATETIME columns, so ORDER BY created_at sorts chronologically. Ties are
// broken by rowid (insertion order).
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// DB wraps a sql.DB connection pool and provides repository methods.
// A single *DB implements every interface in the repository package.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and migrates it to the latest schema.
//
// dbPath examples:
//   - "data/devdesk.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests)
//
// Foreign keys are enabled through the DSN so every pooled connection
// enforces them, not just the first one.
func New(dbPath string) (*DB, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Open connects without running migrations. The migrate command uses it.
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if isMemory(dbPath) {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if !isMemory(dbPath) {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	return &DB{conn: conn}, nil
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory")
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// MigrateUp applies every pending migration.
func (db *DB) MigrateUp() error {
	return db.withGoose(func() error {
		return goose.Up(db.conn, "migrations")
	})
}

// MigrateDown rolls back the most recent migration.
func (db *DB) MigrateDown() error {
	return db.withGoose(func() error {
		return goose.Down(db.conn, "migrations")
	})
}

// MigrateStatus prints the state of every migration through goose's logger.
func (db *DB) MigrateStatus() error {
	return db.withGoose(func() error {
		return goose.Status(db.conn, "migrations")
	})
}

// Version returns the current schema version.
func (db *DB) Version() (int64, error) {
	var v int64
	err := db.withGoose(func() error {
		var err error
		v, err = goose.GetDBVersion(db.conn)
		return err
	})
	return v, err
}

func (db *DB) withGoose(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return fn()
}

// newID returns a random UUIDv4 string for a new row.
func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

// isConstraint reports whether err is the given extended SQLite constraint
// violation (for example sqlite3.SQLITE_CONSTRAINT_UNIQUE).
func isConstraint(err error, code int) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.Code() == code {
		return true
	}
	if se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	msg := se.Error()
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return strings.Contains(msg, "UNIQUE")
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return strings.Contains(msg, "FOREIGN KEY")
	}
	return false
}

func isUnique(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE) ||
		isConstraint(err, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

func isForeignKey(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY)
}

// setClause accumulates "column = ?" pairs for partial updates.
type setClause struct {
	cols []string
	args []any
}

func (s *setClause) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setClause) empty() bool { return len(s.cols) == 0 }

func (s *setClause) String() string { return strings.Join(s.cols, ", ") }
