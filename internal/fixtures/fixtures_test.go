package fixtures

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"chainBench/internal/model"
)

var (
	addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)
	hashPattern    = regexp.MustCompile(`^0x[0-9a-f]{64}$`)
)

func smallOptions() GenerateOptions {
	opts := DefaultGenerateOptions()
	opts.Blocks = 10
	return opts
}

func TestGenerateShape(t *testing.T) {
	dataset, err := Generate(smallOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := map[model.Kind]int{
		model.KindBlock:       10,
		model.KindTransaction: 100,
		model.KindTransfer:    50,
		model.KindPool:        20,
	}
	for kind, n := range want {
		if got := dataset.Len(kind); got != n {
			t.Fatalf("%s: got %d records, want %d", kind, got, n)
		}
	}
	if dataset.Total() != 180 {
		t.Fatalf("total = %d, want 180", dataset.Total())
	}

	second := dataset.At(model.KindBlock, 1).(model.Block)
	if second.BlockTimestamp.Text() != "2023-01-01T00:00:15" {
		t.Fatalf("unexpected block time %s", second.BlockTimestamp)
	}
	if !hashPattern.MatchString(second.BlockHash) {
		t.Fatalf("bad block hash %q", second.BlockHash)
	}

	tx := dataset.At(model.KindTransaction, 11).(model.Transaction)
	if tx.Block != 1 || tx.Index != 11 {
		t.Fatalf("unexpected tx position block=%d index=%d", tx.Block, tx.Index)
	}
	if !addressPattern.MatchString(tx.From) || !addressPattern.MatchString(tx.To) {
		t.Fatalf("bad tx addresses %q %q", tx.From, tx.To)
	}

	pool := dataset.At(model.KindPool, 2).(model.Pool)
	if pool.InitBlock != 1 || pool.CreatedAt != second.BlockTimestamp.Time.Unix() {
		t.Fatalf("unexpected pool %+v", pool)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a, err := Generate(smallOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := Generate(smallOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, kind := range model.Kinds {
		for i := 0; i < a.Len(kind); i++ {
			if a.At(kind, i) != b.At(kind, i) {
				t.Fatalf("%s[%d] differs between runs", kind, i)
			}
		}
	}
}

func TestGenerateRejectsNegative(t *testing.T) {
	opts := smallOptions()
	opts.TxPerBlock = -1
	if _, err := Generate(opts); err == nil {
		t.Fatalf("expected error for negative count")
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dataset, err := Generate(smallOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := Write(dir, dataset); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, warnings := Load(dir, nil)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	for _, kind := range model.Kinds {
		if loaded.Len(kind) != dataset.Len(kind) {
			t.Fatalf("%s: loaded %d, wrote %d", kind, loaded.Len(kind), dataset.Len(kind))
		}
	}
	got := loaded.At(model.KindBlock, 3).(model.Block)
	want := dataset.At(model.KindBlock, 3).(model.Block)
	if got.BlockHash != want.BlockHash || got.BlockTimestamp.Text() != want.BlockTimestamp.Text() {
		t.Fatalf("block mismatch: %+v != %+v", got, want)
	}
}

func TestLoadWarnsAndContinues(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("blocks.json", `[{"block_number":1,"block_hash":"0x1","parent_hash":"0x0","block_timestamp":"2023-01-01T00:00:00","created_at":"yesterday","updated_at":1672531200}]`)
	write("transactions.json", `{not json`)
	write("pools.json", `[]`)

	dataset, warnings := Load(dir, nil)
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
	if warnings[0].Kind != model.KindTransaction || IsMissing(warnings[0]) {
		t.Fatalf("unexpected first warning %v", warnings[0])
	}
	if warnings[1].Kind != model.KindTransfer || !IsMissing(warnings[1]) {
		t.Fatalf("unexpected second warning %v", warnings[1])
	}

	if dataset.Len(model.KindBlock) != 1 || dataset.Len(model.KindTransaction) != 0 {
		t.Fatalf("unexpected lengths blocks=%d txs=%d", dataset.Len(model.KindBlock), dataset.Len(model.KindTransaction))
	}
	block := dataset.At(model.KindBlock, 0).(model.Block)
	if block.CreatedAt.Valid() || block.CreatedAt.Text() != "yesterday" {
		t.Fatalf("opaque timestamp not kept: %+v", block.CreatedAt)
	}
	if !block.UpdatedAt.Time.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("epoch timestamp not parsed: %+v", block.UpdatedAt)
	}
	if got := dataset.OpaqueTimestamps(model.KindBlock); got != 1 {
		t.Fatalf("opaque block timestamps = %d, want 1", got)
	}
}

func TestSampleOne(t *testing.T) {
	dataset := NewDataset()
	rng := rand.New(rand.NewPCG(7, 7))
	if _, ok := dataset.SampleOne(model.KindPool, rng); ok {
		t.Fatalf("expected no sample from empty collection")
	}

	for i := int64(0); i < 4; i++ {
		dataset.Add(model.Pool{InitBlock: i})
	}
	seen := make(map[int64]int)
	for i := 0; i < 4000; i++ {
		rec, ok := dataset.SampleOne(model.KindPool, rng)
		if !ok {
			t.Fatalf("expected sample")
		}
		seen[rec.(model.Pool).InitBlock]++
	}
	for block, n := range seen {
		if n < 850 || n > 1150 {
			t.Fatalf("pool %d sampled %d times, want about 1000", block, n)
		}
	}
	if len(seen) != 4 {
		t.Fatalf("sampled %d distinct pools, want 4", len(seen))
	}
}

func TestOpaqueTimestamps(t *testing.T) {
	dataset, err := Generate(smallOptions())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, kind := range model.Kinds {
		if got := dataset.OpaqueTimestamps(kind); got != 0 {
			t.Fatalf("generated %s has %d opaque timestamps", kind, got)
		}
	}

	dataset.Add(
		model.Transaction{Timestamp: model.ParseTimestamp("")},
		model.Transaction{Timestamp: model.ParseTimestamp("block 12")},
		model.Transaction{Timestamp: model.ParseTimestamp("1672531200")},
	)
	if got := dataset.OpaqueTimestamps(model.KindTransaction); got != 2 {
		t.Fatalf("opaque transaction timestamps = %d, want 2", got)
	}
	if got := dataset.OpaqueTimestamps(model.KindPool); got != 0 {
		t.Fatalf("pools have no timestamp fields, got %d", got)
	}
}
