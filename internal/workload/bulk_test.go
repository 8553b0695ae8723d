package workload

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/goleak"

	"chainBench/internal/fixtures"
	"chainBench/internal/model"
	"chainBench/internal/storage/memory"
)

func TestBulkLoadTinyFixtures(t *testing.T) {
	store := memory.NewStore()
	loader, err := NewBulkLoader(store, BulkConfig{Strategy: FixedSize(3)}, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}

	result, err := loader.Load(context.Background(), tinyDataset(t, 10))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for _, kind := range model.Kinds {
		if got := store.Batches(kind); !reflect.DeepEqual(got, []int{3, 3, 3, 1}) {
			t.Fatalf("%s batches = %v, want [3 3 3 1]", kind, got)
		}
		if result.PerKind[kind].Records != 10 {
			t.Fatalf("%s records = %d, want 10", kind, result.PerKind[kind].Records)
		}
	}
	if result.Records != 40 || result.Batches != 16 {
		t.Fatalf("records=%d batches=%d, want 40 and 16", result.Records, result.Batches)
	}
	if result.Elapsed <= 0 {
		t.Fatalf("elapsed = %s, want > 0", result.Elapsed)
	}
	if want := 40 / result.Elapsed.Seconds(); result.Rate != want {
		t.Fatalf("rate = %v, want %v", result.Rate, want)
	}
}

func TestBulkLoadEmptyCollection(t *testing.T) {
	store := memory.NewStore()
	dataset := fixtures.NewDataset()
	dataset.Add(model.Block{BlockNumber: 1}, model.Block{BlockNumber: 2})

	loader, err := NewBulkLoader(store, BulkConfig{Strategy: Proportional(100)}, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	result, err := loader.Load(context.Background(), dataset)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Records != 2 || result.Batches != 2 {
		t.Fatalf("records=%d batches=%d, want 2 and 2", result.Records, result.Batches)
	}
	if len(store.Batches(model.KindPool)) != 0 {
		t.Fatalf("expected no pool batches")
	}
}

func TestBulkLoadNothingHasZeroRate(t *testing.T) {
	loader, err := NewBulkLoader(memory.NewStore(), BulkConfig{Strategy: FixedSize(10)}, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	result, err := loader.Load(context.Background(), fixtures.NewDataset())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Records != 0 || result.Rate != 0 {
		t.Fatalf("records=%d rate=%v, want 0 and 0", result.Records, result.Rate)
	}
}

func TestBulkLoadLimit(t *testing.T) {
	store := memory.NewStore()
	loader, err := NewBulkLoader(store, BulkConfig{Strategy: FixedSize(4), Limit: 6}, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	result, err := loader.Load(context.Background(), tinyDataset(t, 10))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Records != 24 {
		t.Fatalf("records = %d, want 24", result.Records)
	}
	if got := store.Batches(model.KindTransfer); !reflect.DeepEqual(got, []int{4, 2}) {
		t.Fatalf("transfer batches = %v, want [4 2]", got)
	}
}

func TestBulkLoadFailsFast(t *testing.T) {
	boom := errors.New("connection reset")
	store := memory.NewStore()
	store.FailCommit = func(kind model.Kind, batch int) error {
		if kind == model.KindTransaction && batch == 1 {
			return boom
		}
		return nil
	}

	loader, err := NewBulkLoader(store, BulkConfig{Strategy: FixedSize(3)}, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	_, err = loader.Load(context.Background(), tinyDataset(t, 10))

	var bulkErr *BulkError
	if !errors.As(err, &bulkErr) {
		t.Fatalf("expected *BulkError, got %v", err)
	}
	if bulkErr.Kind != model.KindTransaction || bulkErr.BatchesCompleted != 5 {
		t.Fatalf("unexpected bulk error %+v", bulkErr)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("cause not wrapped: %v", err)
	}
	if len(store.Batches(model.KindTransfer)) != 0 || len(store.Batches(model.KindPool)) != 0 {
		t.Fatalf("later kinds must not load after a failure")
	}
}

func TestBulkLoadParallel(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.NewStore()
	store.Latency = time.Millisecond
	loader, err := NewBulkLoader(store, BulkConfig{Strategy: FixedSize(3), Parallel: true}, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	result, err := loader.Load(context.Background(), tinyDataset(t, 10))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if result.Records != 40 {
		t.Fatalf("records = %d, want 40", result.Records)
	}
	var slowest time.Duration
	for _, kind := range model.Kinds {
		if got := store.Batches(kind); !reflect.DeepEqual(got, []int{3, 3, 3, 1}) {
			t.Fatalf("%s batches = %v, want [3 3 3 1]", kind, got)
		}
		slowest = max(slowest, result.PerKind[kind].Elapsed)
	}
	if result.Elapsed < slowest {
		t.Fatalf("elapsed %s shorter than slowest kind %s", result.Elapsed, slowest)
	}
}

func TestBulkLoadParallelFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := memory.NewStore()
	store.FailCommit = func(kind model.Kind, batch int) error {
		if kind == model.KindPool {
			return errors.New("disk full")
		}
		return nil
	}
	loader, err := NewBulkLoader(store, BulkConfig{Strategy: FixedSize(3), Parallel: true}, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	_, err = loader.Load(context.Background(), tinyDataset(t, 10))

	var bulkErr *BulkError
	if !errors.As(err, &bulkErr) || bulkErr.Kind != model.KindPool {
		t.Fatalf("expected pool *BulkError, got %v", err)
	}
}

func TestNewBulkLoaderRejectsBadConfig(t *testing.T) {
	_, err := NewBulkLoader(memory.NewStore(), BulkConfig{Strategy: FixedSize(0)}, nil)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}
