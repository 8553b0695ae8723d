package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chainBench/internal/config"
	"chainBench/internal/fixtures"
	"chainBench/internal/model"
	"chainBench/internal/retry"
	"chainBench/internal/storage"
	"chainBench/internal/storage/memory"
	"chainBench/internal/storage/postgres"
	"chainBench/internal/storage/sqlite"
)

// target is a store the CLI can create tables on and close.
type target interface {
	storage.Store
	storage.Admin
}

func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (target, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		logger.Info("connecting to postgres",
			zap.String("dsn", redactDSN(cfg.DatabaseURL)),
			zap.String("protocol", cfg.Protocol),
			zap.String("timestamp_column", cfg.TimestampColumn),
		)
		opts := postgres.Options{TextTimestamps: cfg.TimestampColumn == config.TimestampText}

		var (
			store interface {
				target
				Ping(ctx context.Context) error
			}
			err error
		)
		if cfg.Protocol == config.ProtocolCopy {
			store, err = postgres.NewCopyStore(ctx, cfg.DatabaseURL, opts)
		} else {
			store, err = postgres.NewStore(ctx, cfg.DatabaseURL, opts)
		}
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := retry.Do(ctx, cfg.MaxRetries, cfg.RetryBackoff, store.Ping); err != nil {
			store.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return store, nil

	case config.DriverSQLite:
		if cfg.Protocol == config.ProtocolCopy {
			logger.Warn("sqlite has no copy protocol, bulk batches run as insert transactions")
		}
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ping sqlite: %w", err)
		}
		logger.Info("opened sqlite", zap.String("path", cfg.SQLitePath))
		return store, nil

	case config.DriverMemory:
		logger.Info("using in-memory store")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

// resolveTimestampColumn switches Postgres TIMESTAMPTZ columns to TEXT when
// the fixtures hold timestamps that are not instants. It returns the warning
// to report, or "" when cfg is kept.
func resolveTimestampColumn(cfg config.StoreConfig, dataset *fixtures.Dataset, logger *zap.Logger) (config.StoreConfig, string) {
	if cfg.Driver != config.DriverPostgres || cfg.TimestampColumn != config.TimestampInstant {
		return cfg, ""
	}
	opaque := 0
	for _, kind := range model.Kinds {
		opaque += dataset.OpaqueTimestamps(kind)
	}
	if opaque == 0 {
		return cfg, ""
	}

	cfg.TimestampColumn = config.TimestampText
	warning := fmt.Sprintf("%d fixture records have timestamps that are not instants; using text timestamp columns", opaque)
	logger.Warn("falling back to text timestamp columns",
		zap.Int("records", opaque),
		zap.String("timestamp_column", cfg.TimestampColumn),
	)
	return cfg, warning
}
