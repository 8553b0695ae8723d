package storage

import (
	"context"
	"errors"
	"time"

	"chainBench/internal/model"
)

// ErrClosed is returned when a bulk channel is used after Commit or Abort.
var ErrClosed = errors.New("bulk channel closed")

// Store is the benchmark target. Implementations differ only in transport.
type Store interface {
	// BulkChannel opens a streaming channel to the kind's table. Rows written to
	// it become visible atomically on Commit.
	BulkChannel(ctx context.Context, kind model.Kind) (BulkSink, error)
	// Execute inserts a single row.
	Execute(ctx context.Context, rec model.Record) error
	// QueryRandomRow fetches one unordered random row; false when the table is empty.
	QueryRandomRow(ctx context.Context, kind model.Kind) (bool, error)
	// QueryRange returns the number of rows whose timestamp is >= since.
	QueryRange(ctx context.Context, kind model.Kind, since time.Time) (int, error)
	// Reset truncates the listed tables.
	Reset(ctx context.Context, kinds ...model.Kind) error
}

// BulkSink accepts rows for one batch.
type BulkSink interface {
	Write(ctx context.Context, rec model.Record) error
	Commit(ctx context.Context) (int64, error)
	Abort()
}

// Admin is implemented by stores that manage their own schema.
type Admin interface {
	CreateSchema(ctx context.Context) error
	Close()
}

// ReportSink persists finished benchmark reports.
type ReportSink interface {
	PutReport(report any) error
}
