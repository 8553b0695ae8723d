package workload

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"chainBench/internal/model"
	"chainBench/internal/storage"
)

// Provider is the read-only record corpus a benchmark draws from.
type Provider interface {
	All(kind model.Kind) []model.Record
	Len(kind model.Kind) int
	SampleOne(kind model.Kind, rng *rand.Rand) (model.Record, bool)
}

// Pass is one fixed-length workload run. Every step draws FanOut operations.
type Pass struct {
	Name   string
	Steps  int
	FanOut int
}

// LatencySummary describes per-operation store round trips.
type LatencySummary struct {
	Mean time.Duration `json:"mean"`
	P50  time.Duration `json:"p50"`
	P95  time.Duration `json:"p95"`
	P99  time.Duration `json:"p99"`
	Max  time.Duration `json:"max"`
}

// WorkloadResult is the outcome of one pass. Rate counts steps, OpsRate counts
// operations; skipped operations count toward both.
type WorkloadResult struct {
	Pass    string         `json:"pass"`
	Steps   int            `json:"steps"`
	Ops     int            `json:"ops"`
	Inserts int            `json:"inserts"`
	Reads   int            `json:"reads"`
	Skipped int            `json:"skipped"`
	Elapsed time.Duration  `json:"elapsed"`
	Rate    float64        `json:"rate"`
	OpsRate float64        `json:"ops_rate"`
	Latency LatencySummary `json:"latency"`
}

// Runner executes generated operations one at a time; each store call
// returns before the next one is issued.
type Runner struct {
	store    storage.Store
	provider Provider
	rng      *rand.Rand
	logger   *zap.Logger
}

// NewRunner builds a runner. rng drives record sampling and is separate from
// the generator's stream.
func NewRunner(store storage.Store, provider Provider, rng *rand.Rand, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{store: store, provider: provider, rng: rng, logger: logger}
}

func (r *Runner) Run(ctx context.Context, gen *Generator, pass Pass) (WorkloadResult, error) {
	result := WorkloadResult{Pass: pass.Name}
	if pass.Steps < 0 {
		return result, configErrorf(pass.Name+"-steps", "must be non-negative, got %d", pass.Steps)
	}
	if pass.FanOut < 1 {
		return result, configErrorf(pass.Name+"-fanout", "must be positive, got %d", pass.FanOut)
	}
	if pass.Steps == 0 {
		return result, nil
	}

	latencies := make([]float64, 0, pass.Steps*pass.FanOut)
	start := time.Now()
	for step := 0; step < pass.Steps; step++ {
		for i := 0; i < pass.FanOut; i++ {
			op := gen.Next()
			result.Ops++
			took, skipped, err := r.execute(ctx, op)
			if err != nil {
				result.Elapsed = time.Since(start)
				result.Steps = step
				return result, fmt.Errorf("%s step %d %s: %w", pass.Name, step, op, err)
			}
			if skipped {
				result.Skipped++
				continue
			}
			if op.Action == Insert {
				result.Inserts++
			} else {
				result.Reads++
			}
			latencies = append(latencies, took.Seconds())
		}
	}
	result.Elapsed = time.Since(start)
	result.Steps = pass.Steps

	result.Rate = perSecond(result.Steps, result.Elapsed)
	result.OpsRate = perSecond(result.Ops, result.Elapsed)
	result.Latency = summarize(latencies)
	return result, nil
}

// execute runs one operation. Inserts against an empty collection are skipped;
// reads of an empty table still reach the store.
func (r *Runner) execute(ctx context.Context, op Op) (time.Duration, bool, error) {
	switch op.Action {
	case Insert:
		rec, ok := r.provider.SampleOne(op.Kind, r.rng)
		if !ok {
			return 0, true, nil
		}
		start := time.Now()
		err := r.store.Execute(ctx, rec)
		return time.Since(start), false, err
	case Read:
		start := time.Now()
		_, err := r.store.QueryRandomRow(ctx, op.Kind)
		return time.Since(start), false, err
	default:
		return 0, false, fmt.Errorf("unknown action %d", int(op.Action))
	}
}

func summarize(seconds []float64) LatencySummary {
	if len(seconds) == 0 {
		return LatencySummary{}
	}
	var summary LatencySummary
	if mean, err := stats.Mean(seconds); err == nil {
		summary.Mean = toDuration(mean)
	}
	if p50, err := stats.Percentile(seconds, 50); err == nil {
		summary.P50 = toDuration(p50)
	}
	if p95, err := stats.Percentile(seconds, 95); err == nil {
		summary.P95 = toDuration(p95)
	}
	if p99, err := stats.Percentile(seconds, 99); err == nil {
		summary.P99 = toDuration(p99)
	}
	if max, err := stats.Max(seconds); err == nil {
		summary.Max = toDuration(max)
	}
	return summary
}

func toDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
