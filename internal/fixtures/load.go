package fixtures

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"chainBench/internal/model"
)

var fileNames = map[model.Kind]string{
	model.KindBlock:       "blocks.json",
	model.KindTransaction: "transactions.json",
	model.KindTransfer:    "transfers.json",
	model.KindPool:        "pools.json",
}

// FileName returns the fixture file name for the kind.
func FileName(kind model.Kind) string {
	return fileNames[kind]
}

// LoadWarning records a fixture file that could not be read. The kind's
// collection is left empty and the run continues.
type LoadWarning struct {
	Kind model.Kind
	Path string
	Err  error
}

func (w LoadWarning) Error() string {
	return fmt.Sprintf("load %s from %s: %v", w.Kind, w.Path, w.Err)
}

func (w LoadWarning) Unwrap() error {
	return w.Err
}

// Load reads the four fixture files from dir. A missing or malformed file
// yields a warning and an empty collection instead of an error.
func Load(dir string, logger *zap.Logger) (*Dataset, []LoadWarning) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dataset := NewDataset()
	var warnings []LoadWarning
	for _, kind := range model.Kinds {
		path := filepath.Join(dir, fileNames[kind])
		recs, err := readFile(kind, path)
		if err != nil {
			warning := LoadWarning{Kind: kind, Path: path, Err: err}
			logger.Warn("fixture load failed", zap.String("kind", kind.String()), zap.String("path", path), zap.Error(err))
			warnings = append(warnings, warning)
			continue
		}
		dataset.Add(recs...)
		logger.Info("fixture loaded", zap.String("kind", kind.String()), zap.Int("records", len(recs)))
		if opaque := dataset.OpaqueTimestamps(kind); opaque > 0 {
			logger.Warn("fixture has timestamps that are not instants, they only fit text timestamp columns",
				zap.String("kind", kind.String()), zap.Int("records", opaque))
		}
	}
	return dataset, warnings
}

func readFile(kind model.Kind, path string) ([]model.Record, error) {
	switch kind {
	case model.KindBlock:
		return decodeFile[model.Block](path)
	case model.KindTransaction:
		return decodeFile[model.Transaction](path)
	case model.KindTransfer:
		return decodeFile[model.Transfer](path)
	case model.KindPool:
		return decodeFile[model.Pool](path)
	default:
		return nil, fmt.Errorf("invalid kind %d", int(kind))
	}
}

func decodeFile[T model.Record](path string) ([]model.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []T
	if err := json.NewDecoder(bufio.NewReader(file)).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	recs := make([]model.Record, len(rows))
	for i, row := range rows {
		recs[i] = row
	}
	return recs, nil
}

// Write stores each collection of the dataset as a JSON array under dir.
func Write(dir string, dataset *Dataset) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create fixture dir: %w", err)
	}
	for _, kind := range model.Kinds {
		if err := writeFile(filepath.Join(dir, fileNames[kind]), dataset.All(kind)); err != nil {
			return fmt.Errorf("write %s: %w", kind, err)
		}
	}
	return nil
}

func writeFile(path string, recs []model.Record) (err error) {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tmp)
		}
	}()

	if recs == nil {
		recs = []model.Record{}
	}
	writer := bufio.NewWriter(file)
	if err := json.NewEncoder(writer).Encode(recs); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// IsMissing reports whether a load warning was caused by an absent file.
func IsMissing(w LoadWarning) bool {
	return errors.Is(w.Err, os.ErrNotExist)
}
