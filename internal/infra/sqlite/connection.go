// Package sqlite implements the ledger store on a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Schema defines the SQL statements to create database tables.
const Schema = `
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_categories_title
    ON categories(title);

-- value is the canonical decimal string; sums are computed in Go to stay exact
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    value TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('income', 'outcome')),
    category_id TEXT REFERENCES categories(id),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_created
    ON transactions(created_at);
`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Store is the SQLite implementation of ledger.Store and ledger.Transactor.
type Store struct {
	db     *sql.DB
	q      querier
	inTx   bool
	dbPath string
	now    func() time.Time
}

// Open opens (creating if needed) the database at dbPath and initializes the schema.
// Foreign keys and WAL mode are enabled.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("Open: creating database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("Open: opening database: %w", err)
	}

	// SQLite serializes writers; a single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: pinging database: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: initializing schema: %w", err)
	}

	return &Store{
		db:     db,
		q:      db,
		dbPath: dbPath,
		now:    time.Now,
	}, nil
}

// Close closes the database connection. Stores bound to a transaction don't own it.
func (s *Store) Close() error {
	if s.inTx || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// WithinTx implements ledger.Transactor. If the function returns an error, the
// transaction is rolled back; otherwise it is committed. Nested calls reuse
// the open transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, s ledger.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StorageError("WithinTx: begin", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	bound := &Store{db: s.db, q: tx, inTx: true, dbPath: s.dbPath, now: s.now}
	if err := fn(ctx, bound); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, domain.StorageError("WithinTx: rollback", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.StorageError("WithinTx: commit", err)
	}

	return nil
}

// batch runs fn inside a transaction unless the store is already bound to one.
func (s *Store) batch(ctx context.Context, fn func(q querier) error) error {
	return s.WithinTx(ctx, func(ctx context.Context, ls ledger.Store) error {
		return fn(ls.(*Store).q)
	})
}

// Ensure Store implements the ledger interfaces.
var (
	_ ledger.Store      = (*Store)(nil)
	_ ledger.Transactor = (*Store)(nil)
)
