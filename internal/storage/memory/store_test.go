package memory

import (
	"context"
	"testing"

	"chainBench/internal/model"
)

func TestQueryRandomRowSamplesStoredRows(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	found, err := store.QueryRandomRow(ctx, model.KindPool)
	if err != nil {
		t.Fatalf("read empty: %v", err)
	}
	if found {
		t.Fatalf("empty table reported a row")
	}
	if _, ok := store.LastRead(model.KindPool); ok {
		t.Fatalf("empty read recorded a row")
	}

	stored := make(map[int64]bool)
	for i := int64(1); i <= 3; i++ {
		if err := store.Execute(ctx, model.Pool{Address: "0xa", InitBlock: i}); err != nil {
			t.Fatalf("execute: %v", err)
		}
		stored[i] = true
	}

	seen := make(map[int64]bool)
	for i := 0; i < 200; i++ {
		found, err := store.QueryRandomRow(ctx, model.KindPool)
		if err != nil || !found {
			t.Fatalf("read %d: found=%v err=%v", i, found, err)
		}
		rec, ok := store.LastRead(model.KindPool)
		if !ok {
			t.Fatalf("read %d not recorded", i)
		}
		block := rec.(model.Pool).InitBlock
		if !stored[block] {
			t.Fatalf("read returned unknown row %d", block)
		}
		seen[block] = true
	}
	if len(seen) != 3 {
		t.Fatalf("sampled %d distinct rows, want 3", len(seen))
	}
	if store.Reads() != 201 {
		t.Fatalf("reads = %d, want 201", store.Reads())
	}

	if err := store.Reset(ctx, model.KindPool); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok := store.LastRead(model.KindPool); ok {
		t.Fatalf("reset kept the last read")
	}
}
