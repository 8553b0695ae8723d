package workload

import (
	"errors"
	"fmt"

	"chainBench/internal/model"
)

// ErrorKind classifies a pattern failure.
type ErrorKind string

const (
	ErrorConfig    ErrorKind = "config"
	ErrorTransport ErrorKind = "transport"
	ErrorDataLoad  ErrorKind = "data-load"
)

// ConfigError is an invalid engine configuration. It is raised before any
// pattern runs.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Message)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// BulkError aborts a bulk load. BatchesCompleted counts the batches of every
// kind that committed before the failure.
type BulkError struct {
	Kind             model.Kind
	BatchesCompleted int
	Err              error
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("bulk load %s failed after %d batches: %v", e.Kind, e.BatchesCompleted, e.Err)
}

func (e *BulkError) Unwrap() error {
	return e.Err
}

// PatternError is the recorded failure of one benchmark pattern.
type PatternError struct {
	Pattern Pattern   `json:"pattern"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s pattern %s error: %s", e.Pattern, e.Kind, e.Message)
}

func newPatternError(pattern Pattern, err error) *PatternError {
	kind := ErrorTransport
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		kind = ErrorConfig
	}
	return &PatternError{Pattern: pattern, Kind: kind, Message: err.Error()}
}
