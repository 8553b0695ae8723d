package workload

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"chainBench/internal/model"
	"chainBench/internal/storage"
)

// RangeResult is one timed range scan.
type RangeResult struct {
	Window  time.Duration `json:"window"`
	Latency time.Duration `json:"latency"`
	Rows    int           `json:"rows"`
}

// Prober times "timestamp >= now - window" scans on the blocks table.
type Prober struct {
	store  storage.Store
	now    func() time.Time
	logger *zap.Logger
}

func NewProber(store storage.Store, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{store: store, now: time.Now, logger: logger}
}

// Probe issues one scan per window and returns the results in window order.
// The lower bound is taken when each scan is issued.
func (p *Prober) Probe(ctx context.Context, windows []time.Duration) ([]RangeResult, error) {
	results := make([]RangeResult, 0, len(windows))
	for _, window := range windows {
		since := p.now().Add(-window)
		start := time.Now()
		rows, err := p.store.QueryRange(ctx, model.KindBlock, since)
		latency := time.Since(start)
		if err != nil {
			return results, fmt.Errorf("range %s: %w", window, err)
		}
		p.logger.Debug("range scan", zap.Duration("window", window), zap.Duration("latency", latency), zap.Int("rows", rows))
		results = append(results, RangeResult{Window: window, Latency: latency, Rows: rows})
	}
	return results, nil
}
