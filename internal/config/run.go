package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"chainBench/internal/workload"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Bulk protocols.
const (
	ProtocolCopy   = "copy"
	ProtocolInsert = "insert"
)

// Timestamp column types.
const (
	TimestampInstant = "timestamptz"
	TimestampText    = "text"
)

// StoreConfig selects and addresses the benchmark target.
type StoreConfig struct {
	Driver          string
	Protocol        string
	DatabaseURL     string
	SQLitePath      string
	TimestampColumn string
	MaxRetries      int
	RetryBackoff    time.Duration
}

// RunConfig holds configuration for the run command.
type RunConfig struct {
	Store StoreConfig

	DataDir       string
	Results       string
	BatchStrategy string
	BatchSize     int
	BatchCount    int
	BulkLimit     int
	ParallelBulk  bool
	SingleSteps   int
	SingleFanOut  int
	MixedSteps    int
	MixedFanOut   int
	WriteRatio    float64
	ReadRatio     float64
	Windows       []string
	Seed          uint64
	Patterns      []string
	SkipSchema    bool
	Resources     bool
	LogLevel      string
}

func storeDefaults(defaults map[string]any) map[string]any {
	defaults["driver"] = DriverPostgres
	defaults["protocol"] = ProtocolCopy
	defaults["sqlite-path"] = "./data/bench.db"
	defaults["timestamp-column"] = TimestampInstant
	defaults["max-retries"] = 5
	defaults["retry-backoff"] = 500 * time.Millisecond
	defaults["log-level"] = "info"
	return defaults
}

// LoadRun merges config file, environment variables, and flags into RunConfig.
func LoadRun(cfgFile string, flags *pflag.FlagSet) (RunConfig, error) {
	v, err := load(cfgFile, flags, storeDefaults(map[string]any{
		"data-dir":       "./data",
		"results":        "./data/results.jsonl",
		"batch-strategy": "auto",
		"batch-size":     1000,
		"batch-count":    100,
		"bulk-limit":     100_000,
		"parallel-bulk":  false,
		"single-steps":   2500,
		"single-fanout":  4,
		"mixed-steps":    50_000,
		"mixed-fanout":   1,
		"write-ratio":    0.8,
		"read-ratio":     0.2,
		"windows":        []string{"1h", "1d", "1w"},
		"seed":           uint64(0),
		"patterns":       []string{"bulk", "single", "mixed", "range"},
		"skip-schema":    false,
		"resources":      true,
	}))
	if err != nil {
		return RunConfig{}, err
	}
	if err := v.BindEnv("database-url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return RunConfig{}, fmt.Errorf("bind env: %w", err)
	}

	cfg := RunConfig{
		Store:         loadStore(v),
		DataDir:       v.GetString("data-dir"),
		Results:       v.GetString("results"),
		BatchStrategy: strings.ToLower(v.GetString("batch-strategy")),
		BatchSize:     v.GetInt("batch-size"),
		BatchCount:    v.GetInt("batch-count"),
		BulkLimit:     v.GetInt("bulk-limit"),
		ParallelBulk:  v.GetBool("parallel-bulk"),
		SingleSteps:   v.GetInt("single-steps"),
		SingleFanOut:  v.GetInt("single-fanout"),
		MixedSteps:    v.GetInt("mixed-steps"),
		MixedFanOut:   v.GetInt("mixed-fanout"),
		WriteRatio:    v.GetFloat64("write-ratio"),
		ReadRatio:     v.GetFloat64("read-ratio"),
		Windows:       getStringSlice(v, "windows"),
		Seed:          v.GetUint64("seed"),
		Patterns:      getStringSlice(v, "patterns"),
		SkipSchema:    v.GetBool("skip-schema"),
		Resources:     v.GetBool("resources"),
		LogLevel:      v.GetString("log-level"),
	}

	return cfg, nil
}

func invalid(field, format string, args ...any) error {
	return &workload.ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the store selection.
func (s StoreConfig) Validate() error {
	switch s.Driver {
	case DriverPostgres:
		if s.DatabaseURL == "" {
			return invalid("database-url", "required for the postgres driver (or set DATABASE_URL)")
		}
	case DriverSQLite:
		if s.SQLitePath == "" {
			return invalid("sqlite-path", "required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return invalid("driver", "unknown driver %q", s.Driver)
	}
	switch s.Protocol {
	case ProtocolCopy, ProtocolInsert:
	default:
		return invalid("protocol", "unknown protocol %q", s.Protocol)
	}
	switch s.TimestampColumn {
	case TimestampInstant, TimestampText:
	default:
		return invalid("timestamp-column", "unknown column type %q", s.TimestampColumn)
	}
	return nil
}

// Workload translates the run settings into the engine configuration.
func (c RunConfig) Workload() (workload.Config, error) {
	if err := c.Store.Validate(); err != nil {
		return workload.Config{}, err
	}

	strategy, err := c.strategy()
	if err != nil {
		return workload.Config{}, err
	}

	windows := make([]time.Duration, 0, len(c.Windows))
	for _, input := range c.Windows {
		window, err := ParseWindow(input)
		if err != nil {
			return workload.Config{}, invalid("windows", "%v", err)
		}
		windows = append(windows, window)
	}

	patterns := make([]workload.Pattern, 0, len(c.Patterns))
	for _, input := range c.Patterns {
		pattern, err := workload.ParsePattern(input)
		if err != nil {
			return workload.Config{}, invalid("patterns", "%v", err)
		}
		patterns = append(patterns, pattern)
	}

	cfg := workload.Config{
		Driver:   c.Store.Driver,
		Protocol: c.Store.Protocol,
		Bulk: workload.BulkConfig{
			Strategy: strategy,
			Limit:    c.BulkLimit,
			Parallel: c.ParallelBulk,
		},
		Single:          workload.Pass{Name: string(workload.PatternSingle), Steps: c.SingleSteps, FanOut: c.SingleFanOut},
		Mixed:           workload.Pass{Name: string(workload.PatternMixed), Steps: c.MixedSteps, FanOut: c.MixedFanOut},
		WriteRatio:      c.WriteRatio,
		ReadRatio:       c.ReadRatio,
		Windows:         windows,
		Seed:            c.Seed,
		Patterns:        patterns,
		SampleResources: c.Resources,
	}
	if err := cfg.Validate(); err != nil {
		return workload.Config{}, err
	}
	return cfg, nil
}

// strategy resolves "auto" to fixed-size batches for INSERT and proportional
// batches for COPY.
func (c RunConfig) strategy() (workload.Strategy, error) {
	name := c.BatchStrategy
	if name == "" || name == "auto" {
		name = "fixed"
		if c.Store.Protocol == ProtocolCopy {
			name = "proportional"
		}
	}
	switch name {
	case "fixed":
		if c.BatchSize < 1 {
			return nil, invalid("batch-size", "must be positive, got %d", c.BatchSize)
		}
		return workload.FixedSize(c.BatchSize), nil
	case "proportional":
		if c.BatchCount < 1 {
			return nil, invalid("batch-count", "must be positive, got %d", c.BatchCount)
		}
		return workload.Proportional(c.BatchCount), nil
	default:
		return nil, invalid("batch-strategy", "unknown strategy %q", c.BatchStrategy)
	}
}

func loadStore(v *viper.Viper) StoreConfig {
	return StoreConfig{
		Driver:          strings.ToLower(v.GetString("driver")),
		Protocol:        strings.ToLower(v.GetString("protocol")),
		DatabaseURL:     v.GetString("database-url"),
		SQLitePath:      v.GetString("sqlite-path"),
		TimestampColumn: strings.ToLower(v.GetString("timestamp-column")),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
	}
}
