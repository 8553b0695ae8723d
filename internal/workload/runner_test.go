package workload

import (
	"context"
	"errors"
	"testing"
	"time"

	"chainBench/internal/fixtures"
	"chainBench/internal/model"
	"chainBench/internal/storage/memory"
)

func TestRunnerPureWrite(t *testing.T) {
	store := memory.NewStore()
	runner := NewRunner(store, tinyDataset(t, 10), seeded(2), nil)
	gen := mustGenerator(t, PureWrite(), seeded(1))

	result, err := runner.Run(context.Background(), gen, Pass{Name: "single", Steps: 250, FanOut: 4})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Steps != 250 || result.Ops != 1000 || result.Inserts != 1000 || result.Skipped != 0 {
		t.Fatalf("unexpected counts %+v", result)
	}
	stored := 0
	for _, kind := range model.Kinds {
		stored += len(store.Rows(kind))
	}
	if stored != 1000 {
		t.Fatalf("stored %d rows, want 1000", stored)
	}
	if result.Rate <= 0 || result.Rate != 250/result.Elapsed.Seconds() {
		t.Fatalf("rate = %v, want steps/elapsed", result.Rate)
	}
	if result.OpsRate != 1000/result.Elapsed.Seconds() {
		t.Fatalf("ops rate = %v, want ops/elapsed", result.OpsRate)
	}
	if result.Latency.Max < result.Latency.P50 || result.Latency.P99 < result.Latency.P50 {
		t.Fatalf("inconsistent latency summary %+v", result.Latency)
	}
}

func TestRunnerEmptyCollectionsAreSkipped(t *testing.T) {
	store := memory.NewStore()
	store.Latency = time.Microsecond
	dataset := fixtures.NewDataset()
	dataset.Add(model.Block{BlockNumber: 1})

	runner := NewRunner(store, dataset, seeded(2), nil)
	gen := mustGenerator(t, PureWrite(), seeded(3))
	result, err := runner.Run(context.Background(), gen, Pass{Name: "single", Steps: 100, FanOut: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Steps != 100 {
		t.Fatalf("steps = %d, want 100", result.Steps)
	}
	if result.Inserts+result.Skipped != 100 || result.Skipped == 0 {
		t.Fatalf("inserts=%d skipped=%d", result.Inserts, result.Skipped)
	}
	if len(store.Rows(model.KindBlock)) != result.Inserts {
		t.Fatalf("stored %d blocks, reported %d inserts", len(store.Rows(model.KindBlock)), result.Inserts)
	}
	if result.Rate != 100/result.Elapsed.Seconds() {
		t.Fatalf("skipped steps must count toward the rate")
	}
}

func TestRunnerReadsEmptyTables(t *testing.T) {
	store := memory.NewStore()
	runner := NewRunner(store, fixtures.NewDataset(), seeded(2), nil)
	read := Mixture{{Action: Read, Weight: 1, Kinds: uniformKinds()}}

	result, err := runner.Run(context.Background(), mustGenerator(t, read, seeded(4)), Pass{Name: "mixed", Steps: 20, FanOut: 1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Reads != 20 || store.Reads() != 20 {
		t.Fatalf("reads=%d store reads=%d, want 20", result.Reads, store.Reads())
	}
}

func TestRunnerZeroSteps(t *testing.T) {
	runner := NewRunner(memory.NewStore(), tinyDataset(t, 1), seeded(2), nil)
	result, err := runner.Run(context.Background(), mustGenerator(t, PureWrite(), seeded(1)), Pass{Name: "single", Steps: 0, FanOut: 4})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Rate != 0 || result.OpsRate != 0 || result.Ops != 0 {
		t.Fatalf("zero-step pass must report zero rates: %+v", result)
	}
}

func TestRunnerStopsOnStoreError(t *testing.T) {
	boom := errors.New("connection refused")
	store := memory.NewStore()
	calls := 0
	store.FailExecute = func(model.Record) error {
		calls++
		if calls == 3 {
			return boom
		}
		return nil
	}

	runner := NewRunner(store, tinyDataset(t, 5), seeded(2), nil)
	result, err := runner.Run(context.Background(), mustGenerator(t, PureWrite(), seeded(1)), Pass{Name: "single", Steps: 10, FanOut: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if result.Steps != 2 || result.Rate != 0 {
		t.Fatalf("unexpected partial result %+v", result)
	}
}

func TestRunnerRejectsBadPass(t *testing.T) {
	runner := NewRunner(memory.NewStore(), tinyDataset(t, 1), seeded(2), nil)
	_, err := runner.Run(context.Background(), mustGenerator(t, PureWrite(), seeded(1)), Pass{Name: "single", Steps: 1, FanOut: 0})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}
