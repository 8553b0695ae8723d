package workload

import (
	"fmt"

	"github.com/samber/lo"

	"chainBench/internal/model"
)

// Strategy partitions a collection into contiguous, non-overlapping batches.
// Batches share the backing array of the input and must not be modified.
type Strategy interface {
	Split(recs []model.Record) [][]model.Record
	String() string
}

// FixedSize cuts batches of a constant number of rows; the last batch holds
// the remainder. It suits row-at-a-time INSERT transports.
type FixedSize int

func (f FixedSize) Split(recs []model.Record) [][]model.Record {
	if f < 1 {
		return nil
	}
	return lo.Chunk(recs, int(f))
}

func (f FixedSize) String() string {
	return fmt.Sprintf("fixed(%d)", int(f))
}

// Proportional divides a collection into a fixed number of batches whose sizes
// differ by at most one row, so batch count does not grow with the data. It
// suits streaming COPY transports. Collections shorter than the batch count
// get one row per batch.
type Proportional int

func (p Proportional) Split(recs []model.Record) [][]model.Record {
	if p < 1 || len(recs) == 0 {
		return nil
	}
	count := min(int(p), len(recs))
	base, extra := len(recs)/count, len(recs)%count

	batches := make([][]model.Record, 0, count)
	start := 0
	for i := 0; i < count; i++ {
		size := base
		if i < extra {
			size++
		}
		batches = append(batches, recs[start:start+size])
		start += size
	}
	return batches
}

func (p Proportional) String() string {
	return fmt.Sprintf("proportional(%d)", int(p))
}

func validateStrategy(s Strategy) error {
	switch typed := s.(type) {
	case nil:
		return configErrorf("batch-strategy", "no batching strategy")
	case FixedSize:
		if typed < 1 {
			return configErrorf("batch-size", "must be positive, got %d", int(typed))
		}
	case Proportional:
		if typed < 1 {
			return configErrorf("batch-count", "must be positive, got %d", int(typed))
		}
	}
	return nil
}
