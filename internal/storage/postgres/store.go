package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chainBench/internal/model"
	"chainBench/internal/storage"
)

// Options controls how records are mapped onto Postgres columns.
type Options struct {
	// TextTimestamps stores timestamps as TEXT instead of TIMESTAMPTZ.
	TextTimestamps bool
}

// Store talks to Postgres one statement per row. Its bulk channel queues one
// INSERT per row into a pgx.Batch that runs as a single implicit transaction.
type Store struct {
	pool *pgxpool.Pool
	opts Options
}

func NewStore(ctx context.Context, dsn string, opts Options) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, opts: opts}, nil
}

// Ping verifies the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateSchema creates the four benchmark tables if they do not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range SchemaSQL(s.opts.TextTimestamps) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *Store) BulkChannel(ctx context.Context, kind model.Kind) (storage.BulkSink, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(kind))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &batchSink{store: s, kind: kind, batch: &pgx.Batch{}, sql: insertSQL(kind)}, nil
}

func (s *Store) Execute(ctx context.Context, rec model.Record) error {
	_, err := s.pool.Exec(ctx, insertSQL(rec.Kind()), encodeValues(rec, s.opts.TextTimestamps)...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.Kind(), err)
	}
	return nil
}

func (s *Store) QueryRandomRow(ctx context.Context, kind model.Kind) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("invalid kind %d", int(kind))
	}
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY RANDOM() LIMIT 1", table(kind)))
	if err != nil {
		return false, fmt.Errorf("random row %s: %w", kind, err)
	}
	defer rows.Close()

	found := false
	for rows.Next() {
		if _, err := rows.Values(); err != nil {
			return false, fmt.Errorf("random row %s: %w", kind, err)
		}
		found = true
	}
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
	var bound any = since.UTC()
	if s.opts.TextTimestamps {
		bound = since.UTC().Format(model.TextLayout)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE %s >= $1", table(kind), pgx.Identifier{column}.Sanitize())
	rows, err := s.pool.Query(ctx, query, bound)
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
	tables := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		if !kind.Valid() {
			return fmt.Errorf("invalid kind %d", int(kind))
		}
		tables = append(tables, table(kind))
	}
	if _, err := s.pool.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}

type batchSink struct {
	store  *Store
	kind   model.Kind
	sql    string
	batch  *pgx.Batch
	closed bool
}

func (b *batchSink) Write(ctx context.Context, rec model.Record) error {
	if b.closed {
		return storage.ErrClosed
	}
	if rec.Kind() != b.kind {
		return fmt.Errorf("%s row written to %s channel", rec.Kind(), b.kind)
	}
	b.batch.Queue(b.sql, encodeValues(rec, b.store.opts.TextTimestamps)...)
	return nil
}

func (b *batchSink) Commit(ctx context.Context) (int64, error) {
	if b.closed {
		return 0, storage.ErrClosed
	}
	b.closed = true
	queued := b.batch.Len()
	if queued == 0 {
		return 0, nil
	}

	br := b.store.pool.SendBatch(ctx, b.batch)
	defer br.Close()

	var inserted int64
	for i := 0; i < queued; i++ {
		tag, err := br.Exec()
		if err != nil {
			return 0, fmt.Errorf("insert %s batch: %w", b.kind, err)
		}
		inserted += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("insert %s batch: %w", b.kind, err)
	}
	return inserted, nil
}

func (b *batchSink) Abort() {
	b.closed = true
	b.batch = &pgx.Batch{}
}

func table(kind model.Kind) string {
	return pgx.Identifier{kind.Table()}.Sanitize()
}

func insertSQL(kind model.Kind) string {
	columns := kind.Columns()
	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = pgx.Identifier{column}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table(kind), strings.Join(quoted, ", "), strings.Join(params, ", "))
}

// encodeValues maps model values onto driver values. Timestamps become
// time.Time for TIMESTAMPTZ columns, or their text form for TEXT columns and
// for opaque values that never parsed.
func encodeValues(rec model.Record, textTimestamps bool) []any {
	values := rec.Values()
	out := make([]any, len(values))
	for i, value := range values {
		ts, ok := value.(model.Timestamp)
		if !ok {
			out[i] = value
			continue
		}
		if textTimestamps || !ts.Valid() {
			out[i] = ts.Text()
		} else {
			out[i] = ts.Time
		}
	}
	return out
}
