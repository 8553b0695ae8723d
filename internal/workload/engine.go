package workload

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chainBench/internal/model"
	"chainBench/internal/storage"
	"chainBench/internal/sysstat"
)

// RunAllPatterns runs the selected patterns in order against store: bulk load,
// single inserts, mixed traffic, range scans. Tables are reset before the
// single and mixed passes when an earlier pattern wrote to them.
//
// A failing pattern is recorded in the report and the next one still runs.
// The returned error is non-nil only for an invalid config.
func RunAllPatterns(ctx context.Context, store storage.Store, provider Provider, cfg Config, logger *zap.Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	e := &engine{store: store, provider: provider, cfg: cfg, seed: seed, logger: logger}
	if cfg.SampleResources {
		sampler, err := sysstat.NewSampler()
		if err != nil {
			logger.Warn("resource sampling disabled", zap.Error(err))
		} else {
			e.sampler = sampler
		}
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Driver:    cfg.Driver,
		Protocol:  cfg.Protocol,
		Seed:      seed,
		StartedAt: time.Now().UTC(),
	}
	logger.Info("benchmark started",
		zap.String("run_id", report.RunID),
		zap.Uint64("seed", seed),
		zap.Any("patterns", cfg.Patterns),
	)

	if cfg.selected(PatternBulk) {
		report.Bulk = e.runBulk(ctx)
	}
	if cfg.selected(PatternSingle) {
		report.Single = e.runPass(ctx, PatternSingle, PureWrite(), cfg.Single, 1)
	}
	if cfg.selected(PatternMixed) {
		report.Mixed = e.runPass(ctx, PatternMixed, cfg.mixture(), cfg.Mixed, 2)
	}
	if cfg.selected(PatternRange) {
		report.Range = e.runRange(ctx)
	}

	report.FinishedAt = time.Now().UTC()
	logger.Info("benchmark finished",
		zap.String("run_id", report.RunID),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
		zap.Int("failed_patterns", len(report.Errors())),
	)
	return report, nil
}

type engine struct {
	store    storage.Store
	provider Provider
	cfg      Config
	seed     uint64
	sampler  *sysstat.Sampler
	logger   *zap.Logger

	// dirty is set once a pattern may have written rows.
	dirty bool
}

func (e *engine) runBulk(ctx context.Context) *PatternReport[BulkResult] {
	out := &PatternReport[BulkResult]{}
	loader, err := NewBulkLoader(e.store, e.cfg.Bulk, e.logger)
	if err != nil {
		out.Error = e.fail(PatternBulk, err)
		return out
	}

	e.logger.Info("pattern started", zap.String("pattern", string(PatternBulk)), zap.String("strategy", e.cfg.Bulk.Strategy.String()))
	e.dirty = true
	span := e.startSpan()
	result, err := loader.Load(ctx, e.provider)
	out.Resources = span.stop()
	if err != nil {
		out.Error = e.fail(PatternBulk, err)
		return out
	}
	out.Result = &result
	e.logger.Info("pattern completed",
		zap.String("pattern", string(PatternBulk)),
		zap.Int64("records", result.Records),
		zap.Int("batches", result.Batches),
		zap.Duration("elapsed", result.Elapsed),
		zap.Float64("rate", result.Rate),
	)
	return out
}

func (e *engine) runPass(ctx context.Context, pattern Pattern, mixture Mixture, pass Pass, stream uint64) *PatternReport[WorkloadResult] {
	out := &PatternReport[WorkloadResult]{}
	if e.dirty {
		if err := e.store.Reset(ctx, model.Kinds...); err != nil {
			out.Error = e.fail(pattern, fmt.Errorf("reset tables: %w", err))
			return out
		}
	}

	gen, err := NewGenerator(mixture, rand.New(rand.NewPCG(e.seed, stream)))
	if err != nil {
		out.Error = e.fail(pattern, err)
		return out
	}
	runner := NewRunner(e.store, e.provider, rand.New(rand.NewPCG(e.seed+1, stream)), e.logger)

	e.logger.Info("pattern started",
		zap.String("pattern", string(pattern)),
		zap.Int("steps", pass.Steps),
		zap.Int("fanout", pass.FanOut),
	)
	e.dirty = true
	span := e.startSpan()
	result, err := runner.Run(ctx, gen, pass)
	out.Resources = span.stop()
	if err != nil {
		out.Error = e.fail(pattern, err)
		return out
	}
	out.Result = &result
	e.logger.Info("pattern completed",
		zap.String("pattern", string(pattern)),
		zap.Int("steps", result.Steps),
		zap.Int("skipped", result.Skipped),
		zap.Duration("elapsed", result.Elapsed),
		zap.Float64("rate", result.Rate),
		zap.Duration("p99", result.Latency.P99),
	)
	return out
}

func (e *engine) runRange(ctx context.Context) *PatternReport[[]RangeResult] {
	out := &PatternReport[[]RangeResult]{}
	prober := NewProber(e.store, e.logger)

	e.logger.Info("pattern started", zap.String("pattern", string(PatternRange)), zap.Int("windows", len(e.cfg.Windows)))
	span := e.startSpan()
	results, err := prober.Probe(ctx, e.cfg.Windows)
	out.Resources = span.stop()
	if err != nil {
		out.Error = e.fail(PatternRange, err)
		return out
	}
	out.Result = &results
	e.logger.Info("pattern completed", zap.String("pattern", string(PatternRange)), zap.Int("scans", len(results)))
	return out
}

func (e *engine) fail(pattern Pattern, err error) *PatternError {
	perr := newPatternError(pattern, err)
	e.logger.Error("pattern failed",
		zap.String("pattern", string(pattern)),
		zap.String("kind", string(perr.Kind)),
		zap.Error(err),
	)
	return perr
}

type resourceSpan struct {
	span *sysstat.Span
}

func (e *engine) startSpan() resourceSpan {
	if e.sampler == nil {
		return resourceSpan{}
	}
	return resourceSpan{span: e.sampler.Start()}
}

func (r resourceSpan) stop() *sysstat.Usage {
	if r.span == nil {
		return nil
	}
	usage := r.span.Stop()
	return &usage
}
