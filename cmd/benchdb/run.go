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
	"chainBench/internal/fixtures"
	"chainBench/internal/model"
	"chainBench/internal/storage"
	"chainBench/internal/workload"
)

func runBenchmark(cmd *cobra.Command, _ []string) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.LoadRun(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	wl, err := cfg.Workload()
	if err != nil {
		return err
	}

	dataset, warnings := fixtures.Load(cfg.DataDir, logger)
	if dataset.Total() == 0 {
		logger.Warn("no fixture records loaded", zap.String("dir", cfg.DataDir))
	}

	storeCfg, fallback := resolveTimestampColumn(cfg.Store, dataset, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, storeCfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if !cfg.SkipSchema {
		if err := store.CreateSchema(ctx); err != nil {
			return err
		}
	}

	fields := []zap.Field{
		zap.String("driver", cfg.Store.Driver),
		zap.String("protocol", cfg.Store.Protocol),
		zap.String("data_dir", cfg.DataDir),
	}
	for _, kind := range model.Kinds {
		fields = append(fields, zap.Int(kind.Table(), dataset.Len(kind)))
	}
	logger.Info("starting benchmark", fields...)

	report, err := workload.RunAllPatterns(ctx, store, dataset, wl, logger)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, w.Error())
	}
	if fallback != "" {
		report.Warnings = append(report.Warnings, fallback)
	}

	printReport(os.Stdout, report)

	if cfg.Results != "" {
		if err := storage.NewHistory(cfg.Results).PutReport(report); err != nil {
			logger.Error("save report failed", zap.Error(err))
		} else {
			logger.Info("report saved", zap.String("path", cfg.Results), zap.String("run_id", report.RunID))
		}
	}

	if errs := report.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d of %d patterns failed", len(errs), len(wl.Patterns))
	}
	return nil
}
