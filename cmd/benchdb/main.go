package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"chainBench/internal/fixtures"
)

func main() {
	root := &cobra.Command{
		Use:          "benchdb",
		Short:        "Blockchain record store benchmark",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", ".env", "dotenv file read before the environment")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark patterns against a store",
		RunE:  runBenchmark,
	}

	addStoreFlags(runCmd)
	runCmd.Flags().String("data-dir", "./data", "fixture directory")
	runCmd.Flags().String("results", "./data/results.jsonl", "JSONL file reports are appended to (empty disables)")
	runCmd.Flags().String("batch-strategy", "auto", "bulk batching (auto, fixed, proportional)")
	runCmd.Flags().Int("batch-size", 1000, "rows per batch for fixed batching")
	runCmd.Flags().Int("batch-count", 100, "batches per kind for proportional batching")
	runCmd.Flags().Int("bulk-limit", 100_000, "rows loaded per kind, 0 means all")
	runCmd.Flags().Bool("parallel-bulk", false, "load kinds concurrently during bulk load")
	runCmd.Flags().Int("single-steps", 2500, "single-insert steps")
	runCmd.Flags().Int("single-fanout", 4, "operations per single-insert step")
	runCmd.Flags().Int("mixed-steps", 50_000, "mixed workload steps")
	runCmd.Flags().Int("mixed-fanout", 1, "operations per mixed workload step")
	runCmd.Flags().Float64("write-ratio", 0.8, "share of mixed operations that insert")
	runCmd.Flags().Float64("read-ratio", 0.2, "share of mixed operations that read a random row")
	runCmd.Flags().StringSlice("windows", []string{"1h", "1d", "1w"}, "range query windows (Go durations, or d/w suffix)")
	runCmd.Flags().Uint64("seed", 0, "random seed, 0 derives one from the clock")
	runCmd.Flags().StringSlice("patterns", []string{"bulk", "single", "mixed", "range"}, "patterns to run")
	runCmd.Flags().Bool("skip-schema", false, "do not create tables before running")
	runCmd.Flags().Bool("resources", true, "sample process cpu, memory and io per pattern")

	root.AddCommand(runCmd)

	defaults := fixtures.DefaultGenerateOptions()
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic fixture files",
		RunE:  runGenerate,
	}

	generateCmd.Flags().String("data-dir", "./data", "output directory")
	generateCmd.Flags().Int("blocks", defaults.Blocks, "number of blocks")
	generateCmd.Flags().Int("tx-per-block", defaults.TxPerBlock, "transactions per block")
	generateCmd.Flags().Int("transfers-per-block", defaults.TransfersPerBlock, "token transfers per block")
	generateCmd.Flags().Int("pools-per-block", defaults.PoolsPerBlock, "pools created per block")
	generateCmd.Flags().Int64("start-block", 0, "first block number")
	generateCmd.Flags().String("start", defaults.Start.Format(time.RFC3339), "timestamp of the first block (RFC3339)")
	generateCmd.Flags().Uint64("seed", defaults.Seed, "random seed")

	root.AddCommand(generateCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture a block range from an RPC node as fixture files",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("rpc", "", "EVM JSON-RPC URL")
	snapshotCmd.Flags().String("data-dir", "./data", "output directory")
	snapshotCmd.Flags().Uint64("from", 0, "start block (inclusive), 0 means latest minus --blocks")
	snapshotCmd.Flags().Uint64("to", 0, "end block (inclusive), 0 means latest")
	snapshotCmd.Flags().Uint64("blocks", 100, "blocks to capture when --from is not set")
	snapshotCmd.Flags().Uint64("log-range", 2000, "blocks per eth_getLogs request")
	snapshotCmd.Flags().StringSlice("token", nil, "token contracts to capture transfers for (default all)")
	snapshotCmd.Flags().StringSlice("factory", nil, "V3 factory addresses whose pools are captured")
	snapshotCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")

	root.AddCommand(snapshotCmd)

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Create the benchmark tables",
		RunE:  runSchema,
	}

	addStoreFlags(schemaCmd)
	schemaCmd.Flags().Bool("reset", false, "truncate the tables after creating them")

	root.AddCommand(schemaCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("driver", "postgres", "store driver (postgres, sqlite, memory)")
	cmd.Flags().String("protocol", "copy", "bulk protocol (copy, insert)")
	cmd.Flags().String("database-url", "", "Postgres connection string (default $DATABASE_URL)")
	cmd.Flags().String("sqlite-path", "./data/bench.db", "SQLite database file")
	cmd.Flags().String("timestamp-column", "timestamptz", "timestamp column type (timestamptz, text)")
	cmd.Flags().Int("max-retries", 5, "connection attempts beyond the first")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial connection retry backoff")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
