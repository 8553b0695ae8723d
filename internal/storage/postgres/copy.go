package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chainBench/internal/model"
	"chainBench/internal/storage"
)

// copyBuffer bounds how many encoded rows may wait for the COPY stream.
const copyBuffer = 256

// CopyStore streams bulk batches through the binary COPY protocol. Single-row
// operations are inherited from Store.
type CopyStore struct {
	*Store
}

func NewCopyStore(ctx context.Context, dsn string, opts Options) (*CopyStore, error) {
	store, err := NewStore(ctx, dsn, opts)
	if err != nil {
		return nil, err
	}
	return &CopyStore{Store: store}, nil
}

// BulkChannel starts a COPY FROM STDIN for the kind's table. Rows written to
// the sink are sent while the batch is still being produced; Commit ends the
// stream and waits for the server to acknowledge it.
func (s *CopyStore) BulkChannel(ctx context.Context, kind model.Kind) (storage.BulkSink, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(kind))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	copyCtx, cancel := context.WithCancel(ctx)
	sink := &copySink{
		store:  s.Store,
		kind:   kind,
		rows:   make(chan []any, copyBuffer),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	src := &rowStream{ctx: copyCtx, rows: sink.rows}

	go func() {
		defer close(sink.done)
		sink.count, sink.err = s.pool.CopyFrom(copyCtx, pgx.Identifier{kind.Table()}, kind.Columns(), src)
	}()

	return sink, nil
}

type copySink struct {
	store  *Store
	kind   model.Kind
	rows   chan []any
	done   chan struct{}
	cancel context.CancelFunc
	closed bool

	// written by the COPY goroutine before done is closed
	count int64
	err   error
}

func (c *copySink) Write(ctx context.Context, rec model.Record) error {
	if c.closed {
		return storage.ErrClosed
	}
	if rec.Kind() != c.kind {
		return fmt.Errorf("%s row written to %s channel", rec.Kind(), c.kind)
	}

	values := encodeValues(rec, c.store.opts.TextTimestamps)
	select {
	case c.rows <- values:
		return nil
	case <-c.done:
		if c.err != nil {
			return fmt.Errorf("copy %s: %w", c.kind, c.err)
		}
		return fmt.Errorf("copy %s: stream ended early", c.kind)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *copySink) Commit(ctx context.Context) (int64, error) {
	if c.closed {
		return 0, storage.ErrClosed
	}
	c.closed = true
	close(c.rows)

	select {
	case <-c.done:
	case <-ctx.Done():
		c.cancel()
		<-c.done
	}
	c.cancel()

	if c.err != nil {
		return 0, fmt.Errorf("copy %s: %w", c.kind, c.err)
	}
	return c.count, nil
}

func (c *copySink) Abort() {
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	<-c.done
}

var errStreamCancelled = errors.New("copy stream cancelled")

// rowStream adapts the sink channel to pgx.CopyFromSource.
type rowStream struct {
	ctx  context.Context
	rows <-chan []any
	cur  []any
	err  error
}

func (r *rowStream) Next() bool {
	select {
	case row, ok := <-r.rows:
		if !ok {
			return false
		}
		r.cur = row
		return true
	case <-r.ctx.Done():
		r.err = errStreamCancelled
		return false
	}
}

func (r *rowStream) Values() ([]any, error) {
	return r.cur, nil
}

func (r *rowStream) Err() error {
	return r.err
}
