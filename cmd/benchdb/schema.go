package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chainBench/internal/config"
	"chainBench/internal/model"
)

func runSchema(cmd *cobra.Command, _ []string) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.LoadSchema(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.CreateSchema(ctx); err != nil {
		return err
	}
	logger.Info("schema ready", zap.String("driver", cfg.Store.Driver))

	if cfg.Reset {
		if err := store.Reset(ctx, model.Kinds...); err != nil {
			return fmt.Errorf("reset tables: %w", err)
		}
		logger.Info("tables truncated", zap.Int("tables", len(model.Kinds)))
	}

	return nil
}
