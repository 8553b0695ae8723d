// Package fixtures holds the in-memory record corpus a benchmark runs against,
// and reads, writes and produces its JSON fixture files.
package fixtures

import (
	"math/rand/v2"

	"chainBench/internal/model"
)

// Dataset is four homogeneous, read-only record collections.
type Dataset struct {
	records map[model.Kind][]model.Record
}

func NewDataset() *Dataset {
	return &Dataset{records: make(map[model.Kind][]model.Record, len(model.Kinds))}
}

// Add appends records to their kind's collection. It must not be called once a
// benchmark has started reading the dataset.
func (d *Dataset) Add(recs ...model.Record) {
	for _, rec := range recs {
		d.records[rec.Kind()] = append(d.records[rec.Kind()], rec)
	}
}

// All returns the kind's collection in fixture order. Callers must not modify it.
func (d *Dataset) All(kind model.Kind) []model.Record {
	return d.records[kind]
}

func (d *Dataset) Len(kind model.Kind) int {
	return len(d.records[kind])
}

// At returns the i-th record of the kind; it panics when i is out of range.
func (d *Dataset) At(kind model.Kind, i int) model.Record {
	return d.records[kind][i]
}

// SampleOne picks a record of the kind uniformly at random. It reports false
// when the collection is empty.
func (d *Dataset) SampleOne(kind model.Kind, rng *rand.Rand) (model.Record, bool) {
	recs := d.records[kind]
	if len(recs) == 0 {
		return nil, false
	}
	return recs[rng.IntN(len(recs))], true
}

// Total is the number of records across all kinds.
func (d *Dataset) Total() int {
	total := 0
	for _, recs := range d.records {
		total += len(recs)
	}
	return total
}

// OpaqueTimestamps counts records of the kind with a timestamp field that did
// not resolve to an instant.
func (d *Dataset) OpaqueTimestamps(kind model.Kind) int {
	count := 0
	for _, rec := range d.records[kind] {
		for _, value := range rec.Values() {
			if ts, ok := value.(model.Timestamp); ok && !ts.Valid() {
				count++
				break
			}
		}
	}
	return count
}
