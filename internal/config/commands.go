package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"chainBench/internal/fixtures"
)

// GenerateConfig holds configuration for the generate command.
type GenerateConfig struct {
	Out               string
	Blocks            int
	TxPerBlock        int
	TransfersPerBlock int
	PoolsPerBlock     int
	StartBlock        int64
	Start             time.Time
	Seed              uint64
	LogLevel          string
}

// LoadGenerate merges config file, environment variables, and flags into GenerateConfig.
func LoadGenerate(cfgFile string, flags *pflag.FlagSet) (GenerateConfig, error) {
	defaults := fixtures.DefaultGenerateOptions()
	v, err := load(cfgFile, flags, map[string]any{
		"data-dir":            "./data",
		"blocks":              defaults.Blocks,
		"tx-per-block":        defaults.TxPerBlock,
		"transfers-per-block": defaults.TransfersPerBlock,
		"pools-per-block":     defaults.PoolsPerBlock,
		"start-block":         int64(0),
		"start":               defaults.Start.Format(time.RFC3339),
		"seed":                defaults.Seed,
		"log-level":           "info",
	})
	if err != nil {
		return GenerateConfig{}, err
	}

	start, err := time.Parse(time.RFC3339, v.GetString("start"))
	if err != nil {
		return GenerateConfig{}, invalid("start", "want RFC3339 time: %v", err)
	}

	cfg := GenerateConfig{
		Out:               v.GetString("data-dir"),
		Blocks:            v.GetInt("blocks"),
		TxPerBlock:        v.GetInt("tx-per-block"),
		TransfersPerBlock: v.GetInt("transfers-per-block"),
		PoolsPerBlock:     v.GetInt("pools-per-block"),
		StartBlock:        v.GetInt64("start-block"),
		Start:             start.UTC(),
		Seed:              v.GetUint64("seed"),
		LogLevel:          v.GetString("log-level"),
	}
	return cfg, nil
}

// Options converts the config into generator options.
func (c GenerateConfig) Options() fixtures.GenerateOptions {
	return fixtures.GenerateOptions{
		Blocks:            c.Blocks,
		TxPerBlock:        c.TxPerBlock,
		TransfersPerBlock: c.TransfersPerBlock,
		PoolsPerBlock:     c.PoolsPerBlock,
		StartBlock:        c.StartBlock,
		Start:             c.Start,
		Seed:              c.Seed,
	}
}

// SnapshotConfig holds configuration for the snapshot command.
type SnapshotConfig struct {
	RPCURL       string
	Out          string
	FromBlock    uint64
	ToBlock      uint64
	Blocks       uint64
	LogRange     uint64
	Tokens       []string
	Factories    []string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// LoadSnapshot merges config file, environment variables, and flags into SnapshotConfig.
func LoadSnapshot(cfgFile string, flags *pflag.FlagSet) (SnapshotConfig, error) {
	v, err := load(cfgFile, flags, map[string]any{
		"data-dir":      "./data",
		"blocks":        uint64(100),
		"log-range":     uint64(2000),
		"max-retries":   5,
		"retry-backoff": 500 * time.Millisecond,
		"log-level":     "info",
	})
	if err != nil {
		return SnapshotConfig{}, err
	}

	cfg := SnapshotConfig{
		RPCURL:       v.GetString("rpc"),
		Out:          v.GetString("data-dir"),
		FromBlock:    v.GetUint64("from"),
		ToBlock:      v.GetUint64("to"),
		Blocks:       v.GetUint64("blocks"),
		LogRange:     v.GetUint64("log-range"),
		Tokens:       getStringSlice(v, "token"),
		Factories:    getStringSlice(v, "factory"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}
	if cfg.RPCURL == "" {
		return SnapshotConfig{}, invalid("rpc", "rpc url is required")
	}
	return cfg, nil
}

// Range resolves the block range to capture. With no explicit end the range
// is the last Blocks blocks up to latest.
func (c SnapshotConfig) Range(latest uint64) (uint64, uint64, error) {
	to := c.ToBlock
	if to == 0 {
		to = latest
	}
	from := c.FromBlock
	if from == 0 && c.Blocks > 0 {
		if c.Blocks > to {
			from = 0
		} else {
			from = to - c.Blocks + 1
		}
	}
	if to < from {
		return 0, 0, fmt.Errorf("to block %d is before from block %d", to, from)
	}
	return from, to, nil
}

// SchemaConfig holds configuration for the schema command.
type SchemaConfig struct {
	Store    StoreConfig
	Reset    bool
	LogLevel string
}

// LoadSchema merges config file, environment variables, and flags into SchemaConfig.
func LoadSchema(cfgFile string, flags *pflag.FlagSet) (SchemaConfig, error) {
	v, err := load(cfgFile, flags, storeDefaults(map[string]any{"reset": false}))
	if err != nil {
		return SchemaConfig{}, err
	}
	if err := v.BindEnv("database-url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return SchemaConfig{}, fmt.Errorf("bind env: %w", err)
	}

	cfg := SchemaConfig{
		Store:    loadStore(v),
		Reset:    v.GetBool("reset"),
		LogLevel: v.GetString("log-level"),
	}
	if err := cfg.Store.Validate(); err != nil {
		return SchemaConfig{}, err
	}
	return cfg, nil
}
