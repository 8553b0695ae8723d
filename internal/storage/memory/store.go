package memory

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"chainBench/internal/model"
	"chainBench/internal/storage"
)

// Store keeps rows in process memory. It records every committed batch size so
// batching behavior can be checked without a database.
type Store struct {
	// FailCommit, when set, is consulted before a batch commits; batch counts from 0 per kind.
	FailCommit func(kind model.Kind, batch int) error
	// FailExecute, when set, is consulted before a single-row insert.
	FailExecute func(rec model.Record) error
	// Latency is slept on every store call to emulate a round trip.
	Latency time.Duration

	mu      sync.Mutex
	rows    map[model.Kind][]model.Record
	batches map[model.Kind][]int
	reads   int
	sampled map[model.Kind]model.Record
	rng     *rand.Rand
}

func NewStore() *Store {
	return &Store{
		rows:    make(map[model.Kind][]model.Record),
		batches: make(map[model.Kind][]int),
		sampled: make(map[model.Kind]model.Record),
		rng:     rand.New(rand.NewPCG(1, 2)),
	}
}

func (s *Store) BulkChannel(ctx context.Context, kind model.Kind) (storage.BulkSink, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(kind))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &sink{store: s, kind: kind}, nil
}

func (s *Store) Execute(ctx context.Context, rec model.Record) error {
	if err := s.roundTrip(ctx); err != nil {
		return err
	}
	if s.FailExecute != nil {
		if err := s.FailExecute(rec); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.rows[rec.Kind()] = append(s.rows[rec.Kind()], rec)
	s.mu.Unlock()
	return nil
}

func (s *Store) QueryRandomRow(ctx context.Context, kind model.Kind) (bool, error) {
	if err := s.roundTrip(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	rows := s.rows[kind]
	if len(rows) == 0 {
		return false, nil
	}
	s.sampled[kind] = rows[s.rng.IntN(len(rows))]
	return true, nil
}

func (s *Store) QueryRange(ctx context.Context, kind model.Kind, since time.Time) (int, error) {
	if kind.TimestampColumn() == "" {
		return 0, fmt.Errorf("%s has no timestamp column", kind)
	}
	if err := s.roundTrip(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, rec := range s.rows[kind] {
		var ts model.Timestamp
		switch typed := rec.(type) {
		case model.Block:
			ts = typed.BlockTimestamp
		case model.Transaction:
			ts = typed.Timestamp
		}
		if ts.Valid() && !ts.Time.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *Store) Reset(ctx context.Context, kinds ...model.Kind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range kinds {
		delete(s.rows, kind)
		delete(s.batches, kind)
		delete(s.sampled, kind)
	}
	return nil
}

func (s *Store) CreateSchema(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Close() {}

// Rows returns a copy of the rows stored for kind.
func (s *Store) Rows(kind model.Kind) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Record(nil), s.rows[kind]...)
}

// Batches returns the committed batch sizes for kind, in commit order.
func (s *Store) Batches(kind model.Kind) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.batches[kind]...)
}

// Reads returns how many random-row reads were served.
func (s *Store) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// LastRead returns the row the latest random read of kind returned.
func (s *Store) LastRead(kind model.Kind) (model.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sampled[kind]
	return rec, ok
}

func (s *Store) roundTrip(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.Latency > 0 {
		time.Sleep(s.Latency)
	}
	return nil
}

type sink struct {
	store  *Store
	kind   model.Kind
	rows   []model.Record
	closed bool
}

func (k *sink) Write(ctx context.Context, rec model.Record) error {
	if k.closed {
		return storage.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Kind() != k.kind {
		return fmt.Errorf("%s row written to %s channel", rec.Kind(), k.kind)
	}
	k.rows = append(k.rows, rec)
	return nil
}

func (k *sink) Commit(ctx context.Context) (int64, error) {
	if k.closed {
		return 0, storage.ErrClosed
	}
	k.closed = true
	if err := k.store.roundTrip(ctx); err != nil {
		return 0, err
	}

	s := k.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCommit != nil {
		if err := s.FailCommit(k.kind, len(s.batches[k.kind])); err != nil {
			return 0, err
		}
	}
	s.rows[k.kind] = append(s.rows[k.kind], k.rows...)
	s.batches[k.kind] = append(s.batches[k.kind], len(k.rows))
	return int64(len(k.rows)), nil
}

func (k *sink) Abort() {
	k.closed = true
	k.rows = nil
}
