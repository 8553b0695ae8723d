package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chainBench/internal/config"
	"chainBench/internal/fixtures"
	"chainBench/internal/model"
)

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfgFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.LoadGenerate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	dataset, err := fixtures.Generate(cfg.Options())
	if err != nil {
		return err
	}
	if err := fixtures.Write(cfg.Out, dataset); err != nil {
		return err
	}

	fields := []zap.Field{zap.String("dir", cfg.Out), zap.Uint64("seed", cfg.Seed)}
	for _, kind := range model.Kinds {
		fields = append(fields, zap.Int(kind.Table(), dataset.Len(kind)))
	}
	logger.Info("fixtures written", fields...)
	return nil
}
