package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "dotvest",
		Short:        "AMM settlement core",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Apply an instruction stream to the settlement core",
		RunE:  runRun,
	}

	runCmd.Flags().String("admin", "", "admin address (hex)")
	runCmd.Flags().String("genesis", "", "genesis JSON path")
	runCmd.Flags().String("in", "", "input instructions JSONL path")
	runCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL path")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN (overrides JSONL output)")
	runCmd.Flags().String("sqlite", "", "SQLite path (overrides JSONL output)")
	runCmd.Flags().Int("batch-size", 100, "events per storage batch")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a swap offline against given reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("reserve-in", "", "input-side reserve")
	quoteCmd.Flags().String("reserve-out", "", "output-side reserve")
	quoteCmd.Flags().String("amount-in", "", "input amount")
	quoteCmd.Flags().Uint64("fee-numerator", 30, "fee numerator out of 10000")

	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
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
