package workload

import (
	"testing"

	"chainBench/internal/fixtures"
	"chainBench/internal/model"
)

// tinyDataset holds n rows of every kind.
func tinyDataset(t *testing.T, n int) *fixtures.Dataset {
	t.Helper()
	opts := fixtures.DefaultGenerateOptions()
	opts.Blocks = n
	opts.TxPerBlock = 1
	opts.TransfersPerBlock = 1
	opts.PoolsPerBlock = 1
	dataset, err := fixtures.Generate(opts)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, kind := range model.Kinds {
		if dataset.Len(kind) != n {
			t.Fatalf("%s: %d rows, want %d", kind, dataset.Len(kind), n)
		}
	}
	return dataset
}
