package workload

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chainBench/internal/model"
	"chainBench/internal/storage"
)

// BulkConfig controls how the bulk loader batches and dispatches rows.
type BulkConfig struct {
	Strategy Strategy
	// Limit caps the rows loaded per kind; 0 loads every row.
	Limit int
	// Parallel loads each kind on its own channel concurrently. Batches of one
	// kind still commit in order.
	Parallel bool
}

// KindLoad is the bulk outcome of one record kind.
type KindLoad struct {
	Records int64         `json:"records"`
	Batches int           `json:"batches"`
	Elapsed time.Duration `json:"elapsed"`
}

// BulkResult is the outcome of a bulk load across all kinds.
type BulkResult struct {
	Strategy string                  `json:"strategy"`
	Records  int64                   `json:"records"`
	Batches  int                     `json:"batches"`
	Elapsed  time.Duration           `json:"elapsed"`
	Rate     float64                 `json:"rate"`
	PerKind  map[model.Kind]KindLoad `json:"per_kind"`
}

// BulkLoader streams collections into a store batch by batch.
type BulkLoader struct {
	store  storage.Store
	cfg    BulkConfig
	logger *zap.Logger
}

func NewBulkLoader(store storage.Store, cfg BulkConfig, logger *zap.Logger) (*BulkLoader, error) {
	if err := validateStrategy(cfg.Strategy); err != nil {
		return nil, err
	}
	if cfg.Limit < 0 {
		return nil, configErrorf("bulk-limit", "must be non-negative, got %d", cfg.Limit)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkLoader{store: store, cfg: cfg, logger: logger}, nil
}

// Load writes every collection in kind order and reports records per second
// across all kinds. The first failing batch aborts the load with a *BulkError.
func (l *BulkLoader) Load(ctx context.Context, provider Provider) (BulkResult, error) {
	plans := make(map[model.Kind][][]model.Record, len(model.Kinds))
	for _, kind := range model.Kinds {
		recs := provider.All(kind)
		if l.cfg.Limit > 0 && len(recs) > l.cfg.Limit {
			recs = recs[:l.cfg.Limit]
		}
		plans[kind] = l.cfg.Strategy.Split(recs)
	}

	result := BulkResult{
		Strategy: l.cfg.Strategy.String(),
		PerKind:  make(map[model.Kind]KindLoad, len(model.Kinds)),
	}
	var (
		mu        sync.Mutex
		completed atomic.Int64
	)
	record := func(kind model.Kind, load KindLoad) {
		mu.Lock()
		defer mu.Unlock()
		result.PerKind[kind] = load
		result.Records += load.Records
		result.Batches += load.Batches
	}

	start := time.Now()
	var err error
	if l.cfg.Parallel {
		group, groupCtx := errgroup.WithContext(ctx)
		for _, kind := range model.Kinds {
			group.Go(func() error {
				load, err := l.loadKind(groupCtx, kind, plans[kind], &completed)
				record(kind, load)
				return err
			})
		}
		err = group.Wait()
	} else {
		for _, kind := range model.Kinds {
			var load KindLoad
			load, err = l.loadKind(ctx, kind, plans[kind], &completed)
			record(kind, load)
			if err != nil {
				break
			}
		}
	}
	result.Elapsed = time.Since(start)
	if err != nil {
		return result, err
	}

	result.Rate = perSecond(result.Records, result.Elapsed)
	return result, nil
}

func (l *BulkLoader) loadKind(ctx context.Context, kind model.Kind, batches [][]model.Record, completed *atomic.Int64) (KindLoad, error) {
	var load KindLoad
	start := time.Now()
	for i, batch := range batches {
		n, err := l.loadBatch(ctx, kind, batch)
		if err != nil {
			load.Elapsed = time.Since(start)
			return load, &BulkError{Kind: kind, BatchesCompleted: int(completed.Load()), Err: err}
		}
		completed.Add(1)
		load.Records += n
		load.Batches++
		l.logger.Debug("batch committed",
			zap.String("kind", kind.String()),
			zap.Int("batch", i),
			zap.Int64("rows", n),
		)
	}
	load.Elapsed = time.Since(start)
	return load, nil
}

func (l *BulkLoader) loadBatch(ctx context.Context, kind model.Kind, batch []model.Record) (int64, error) {
	sink, err := l.store.BulkChannel(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("open bulk channel: %w", err)
	}
	for _, rec := range batch {
		if err := sink.Write(ctx, rec); err != nil {
			sink.Abort()
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	n, err := sink.Commit(ctx)
	if err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return n, nil
}

// perSecond is n divided by elapsed seconds, or 0 when either is not positive.
func perSecond[N int | int64](n N, elapsed time.Duration) float64 {
	if n <= 0 || elapsed <= 0 {
		return 0
	}
	return float64(n) / elapsed.Seconds()
}
