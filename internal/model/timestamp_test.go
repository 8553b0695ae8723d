package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimestampLayouts(t *testing.T) {
	want := time.Date(2023, 1, 1, 0, 0, 15, 0, time.UTC)
	cases := []string{
		"2023-01-01T00:00:15",
		"2023-01-01T00:00:15Z",
		"2023-01-01T02:00:15+02:00",
		"2023-01-01 00:00:15",
		"1672531215",
	}
	for _, input := range cases {
		ts := ParseTimestamp(input)
		if !ts.Valid() {
			t.Fatalf("%q: expected valid timestamp", input)
		}
		if !ts.Time.Equal(want) {
			t.Fatalf("%q: got %s want %s", input, ts.Time, want)
		}
		if ts.Text() != input {
			t.Fatalf("%q: text changed to %q", input, ts.Text())
		}
	}
}

func TestParseTimestampOpaque(t *testing.T) {
	ts := ParseTimestamp("block 42 o'clock")
	if ts.Valid() {
		t.Fatalf("expected opaque timestamp")
	}
	if ts.Text() != "block 42 o'clock" {
		t.Fatalf("opaque text mismatch: %q", ts.Text())
	}
}

func TestBlockJSONRoundTripKeepsTimestampText(t *testing.T) {
	input := `{"block_number":7,"block_hash":"0xaa","parent_hash":"0xbb",` +
		`"block_timestamp":"2023-01-01T00:01:45","created_at":"2023-01-01T00:01:45+00:00","updated_at":1672531305}`

	var block Block
	if err := json.Unmarshal([]byte(input), &block); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if block.BlockNumber != 7 || !block.BlockTimestamp.Valid() {
		t.Fatalf("decoded block mismatch: %+v", block)
	}
	if !block.BlockTimestamp.Time.Equal(block.UpdatedAt.Time) {
		t.Fatalf("timestamp instants differ: %s != %s", block.BlockTimestamp.Time, block.UpdatedAt.Time)
	}

	out, err := json.Marshal(block)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var again Block
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if again.CreatedAt.Text() != "2023-01-01T00:01:45+00:00" {
		t.Fatalf("created_at text changed: %q", again.CreatedAt.Text())
	}
	if again.UpdatedAt.Text() != "1672531305" {
		t.Fatalf("updated_at text changed: %q", again.UpdatedAt.Text())
	}
}

func TestKindColumnsMatchValues(t *testing.T) {
	records := []Record{Block{}, Transaction{}, Transfer{}, Pool{}}
	for i, rec := range records {
		if rec.Kind() != Kinds[i] {
			t.Fatalf("kind order mismatch at %d: %s", i, rec.Kind())
		}
		if len(rec.Values()) != len(rec.Kind().Columns()) {
			t.Fatalf("%s: %d values for %d columns", rec.Kind(), len(rec.Values()), len(rec.Kind().Columns()))
		}
	}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind(" Transactions ")
	if err != nil || kind != KindTransaction {
		t.Fatalf("parse kind: %v %v", kind, err)
	}
	if _, err := ParseKind("receipts"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
