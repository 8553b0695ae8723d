package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chainBench/internal/chain"
	"chainBench/internal/config"
	"chainBench/internal/fixtures"
	"chainBench/internal/model"
	"chainBench/internal/retry"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.LoadSnapshot(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tokens, err := chain.ParseAddresses(cfg.Tokens)
	if err != nil {
		return err
	}
	factories, err := chain.ParseAddresses(cfg.Factories)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return err
	}
	defer client.Close()

	latest, err := retry.Value(ctx, cfg.MaxRetries, cfg.RetryBackoff, client.LatestBlockNumber)
	if err != nil {
		return err
	}
	from, to, err := cfg.Range(latest)
	if err != nil {
		return err
	}

	logger.Info("capturing snapshot",
		zap.Uint64("from_block", from),
		zap.Uint64("to_block", to),
		zap.Uint64("latest_block", latest),
		zap.Int("tokens", len(tokens)),
		zap.Int("factories", len(factories)),
	)

	snapshotter := fixtures.NewSnapshotter(client, fixtures.SnapshotOptions{
		From:         from,
		To:           to,
		LogRange:     cfg.LogRange,
		Tokens:       tokens,
		Factories:    factories,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)

	dataset, err := snapshotter.Capture(ctx)
	if err != nil {
		return err
	}
	if err := fixtures.Write(cfg.Out, dataset); err != nil {
		return err
	}

	fields := []zap.Field{zap.String("dir", cfg.Out)}
	for _, kind := range model.Kinds {
		fields = append(fields, zap.Int(kind.Table(), dataset.Len(kind)))
	}
	logger.Info("snapshot written", fields...)
	return nil
}
