package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dotvest/internal/config"
	"dotvest/internal/engine"
	"dotvest/internal/storage"
	"dotvest/internal/storage/postgres"
	"dotvest/internal/storage/sqlite"
)

func runRun(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !common.IsHexAddress(cfg.Admin) {
		return fmt.Errorf("admin address is required")
	}
	if cfg.Genesis == "" {
		return fmt.Errorf("genesis path is required")
	}
	if cfg.In == "" {
		return fmt.Errorf("instructions path is required")
	}

	genesis, err := engine.ReadGenesis(cfg.Genesis)
	if err != nil {
		return err
	}
	instructions, err := engine.ReadInstructions(cfg.In)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, sinkName, err := newSink(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSink(sink)

	runner := engine.NewRunner(engine.RunConfig{
		Admin:             common.HexToAddress(cfg.Admin),
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
	}, sink, logger)

	if err := runner.ApplyGenesis(genesis); err != nil {
		return err
	}

	logger.Info("settlement start",
		zap.String("genesis", cfg.Genesis),
		zap.String("in", cfg.In),
		zap.String("sink", sinkName),
		zap.Int("instructions", len(instructions)),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx, instructions)
}

func closeSink(sink storage.Storage) {
	switch s := sink.(type) {
	case interface{ Close() }:
		s.Close()
	case interface{ Close() error }:
		_ = s.Close()
	}
}

func newSink(ctx context.Context, cfg config.Config) (storage.Storage, string, error) {
	switch {
	case cfg.PGDSN != "":
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, "", fmt.Errorf("connect postgres: %w", err)
		}
		return store, "postgres", nil
	case cfg.SQLitePath != "":
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		return store, "sqlite", nil
	default:
		return storage.NewJsonlStorage(cfg.Out), "jsonl", nil
	}
}
