// Package sqlite implements the benchmark store on an embedded SQLite file.
// Timestamps are stored as text, so the store exercises the opaque-string
// representation of fixture timestamps.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"chainBench/internal/model"
	"chainBench/internal/storage"
)

// Store inserts one row per statement through cached prepared statements. A
// bulk channel is a transaction that is committed when the batch ends.
type Store struct {
	db *sql.DB

	mu    sync.Mutex
	stmts map[model.Kind]*sql.Stmt
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db, stmts: make(map[model.Kind]*sql.Stmt)}, nil
}

func (s *Store) Close() {
	s.mu.Lock()
	for kind, stmt := range s.stmts {
		stmt.Close()
		delete(s.stmts, kind)
	}
	s.mu.Unlock()
	s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range schemaSQL {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *Store) BulkChannel(ctx context.Context, kind model.Kind) (storage.BulkSink, error) {
	stmt, err := s.insertStmt(ctx, kind)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin %s batch: %w", kind, err)
	}
	return &txSink{kind: kind, tx: tx, stmt: tx.StmtContext(ctx, stmt)}, nil
}

func (s *Store) Execute(ctx context.Context, rec model.Record) error {
	stmt, err := s.insertStmt(ctx, rec.Kind())
	if err != nil {
		return err
	}
	if _, err := stmt.ExecContext(ctx, encodeValues(rec)...); err != nil {
		return fmt.Errorf("insert %s: %w", rec.Kind(), err)
	}
	return nil
}

func (s *Store) QueryRandomRow(ctx context.Context, kind model.Kind) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("invalid kind %d", int(kind))
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY RANDOM() LIMIT 1", kind.Table()))
	if err != nil {
		return false, fmt.Errorf("random row %s: %w", kind, err)
	}
	defer rows.Close()

	found := rows.Next()
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("random row %s: %w", kind, err)
	}
	return found, nil
}

func (s *Store) QueryRange(ctx context.Context, kind model.Kind, since time.Time) (int, error) {
	column := kind.TimestampColumn()
	if column == "" {
		return 0, fmt.Errorf("%s has no timestamp column", kind)
	}
	query := fmt.Sprintf(`SELECT * FROM %s WHERE "%s" >= ?`, kind.Table(), column)
	rows, err := s.db.QueryContext(ctx, query, since.UTC().Format(model.TextLayout))
	if err != nil {
		return 0, fmt.Errorf("range %s: %w", kind, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("range %s: %w", kind, err)
	}
	return count, nil
}

func (s *Store) Reset(ctx context.Context, kinds ...model.Kind) error {
	if len(kinds) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	names := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		if !kind.Valid() {
			return fmt.Errorf("invalid kind %d", int(kind))
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+kind.Table()); err != nil {
			return fmt.Errorf("reset %s: %w", kind, err)
		}
		names = append(names, "'"+kind.Table()+"'")
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name IN ("+strings.Join(names, ", ")+")"); err != nil {
		return fmt.Errorf("reset sequences: %w", err)
	}
	return tx.Commit()
}

func (s *Store) insertStmt(ctx context.Context, kind model.Kind) (*sql.Stmt, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(kind))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if stmt, ok := s.stmts[kind]; ok {
		return stmt, nil
	}

	columns := kind.Columns()
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = `"` + column + `"`
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", kind.Table(), strings.Join(quoted, ", "), placeholders)

	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare %s insert: %w", kind, err)
	}
	s.stmts[kind] = stmt
	return stmt, nil
}

type txSink struct {
	kind   model.Kind
	tx     *sql.Tx
	stmt   *sql.Stmt
	rows   int64
	closed bool
}

func (t *txSink) Write(ctx context.Context, rec model.Record) error {
	if t.closed {
		return storage.ErrClosed
	}
	if rec.Kind() != t.kind {
		return fmt.Errorf("%s row written to %s channel", rec.Kind(), t.kind)
	}
	if _, err := t.stmt.ExecContext(ctx, encodeValues(rec)...); err != nil {
		return fmt.Errorf("insert %s: %w", t.kind, err)
	}
	t.rows++
	return nil
}

func (t *txSink) Commit(ctx context.Context) (int64, error) {
	if t.closed {
		return 0, storage.ErrClosed
	}
	t.closed = true
	if err := t.tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit %s batch: %w", t.kind, err)
	}
	return t.rows, nil
}

func (t *txSink) Abort() {
	if t.closed {
		return
	}
	t.closed = true
	t.tx.Rollback()
}

func encodeValues(rec model.Record) []any {
	values := rec.Values()
	for i, value := range values {
		if ts, ok := value.(model.Timestamp); ok {
			values[i] = ts.Text()
		}
	}
	return values
}

var schemaSQL = []string{
	`CREATE TABLE IF NOT EXISTS blocks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		block_number INTEGER NOT NULL,
		block_hash TEXT NOT NULL,
		parent_hash TEXT NOT NULL,
		block_timestamp TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		block INTEGER NOT NULL,
		"index" INTEGER NOT NULL,
		"timestamp" TEXT NOT NULL,
		hash TEXT NOT NULL,
		from_address TEXT NOT NULL,
		to_address TEXT NOT NULL,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transfers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tx_hash TEXT NOT NULL,
		block_number INTEGER NOT NULL,
		token TEXT NOT NULL,
		from_address TEXT NOT NULL,
		to_address TEXT NOT NULL,
		amount TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pools (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		deployer TEXT NOT NULL,
		address TEXT NOT NULL,
		quote_token TEXT NOT NULL,
		token TEXT NOT NULL,
		init_block INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`,
}
