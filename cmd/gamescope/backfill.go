package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gameScope/internal/config"
)

func runBackfill(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("backfill start",
		zap.String("contract", cfg.GameContract),
		zap.String("selector", cfg.Selector),
		zap.Uint64("start_block", cfg.StartBlock),
		zap.Uint64("window_size", cfg.WindowSize),
	)

	report, err := app.runner.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("backfill done",
		zap.Int("matched", report.Matched),
		zap.Int("inserted", report.Inserted),
		zap.Int("already_present", report.AlreadyPresent),
		zap.Int("rejected", report.Rejected),
	)
	return nil
}
