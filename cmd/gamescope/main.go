package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gameScope/internal/config"
	"gameScope/internal/server"
)

func main() {
	root := &cobra.Command{
		Use:          "gamescope",
		Short:        "On-chain game play backfill and stats service",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stats and backfill endpoints",
		RunE:  runServe,
	}
	addPipelineFlags(serveCmd)
	serveCmd.Flags().String("listen", ":4000", "listen address")

	root.AddCommand(serveCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Walk the contract history once and ingest matching plays",
		RunE:  runBackfill,
	}
	addPipelineFlags(backfillCmd)

	root.AddCommand(backfillCmd)

	statsCmd := &cobra.Command{
		Use:   "stats [player]",
		Short: "Print one player's summary as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runStats,
	}
	addPipelineFlags(statsCmd)

	root.AddCommand(statsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "chain RPC URL")
	cmd.Flags().String("explorer-url", "https://api.bscscan.com/api", "block explorer API base URL")
	cmd.Flags().String("explorer-api-key", "", "block explorer API key")
	cmd.Flags().String("game-contract", "", "game contract address")
	cmd.Flags().String("player-contract", "", "player NFT contract address")
	cmd.Flags().String("selector", "0x102f211", "play method selector prefix")
	cmd.Flags().Uint64("start-block", 0, "first block of the contract history")
	cmd.Flags().Uint64("window-size", 10_000, "blocks per explorer window")
	cmd.Flags().String("cache-dir", "./cache", "disk cache root")
	cmd.Flags().Duration("cache-ttl", 30*24*time.Hour, "response cache TTL")
	cmd.Flags().String("db-driver", "sqlite", "store backend (sqlite, postgres)")
	cmd.Flags().String("db-path", "./rating.sqlite", "sqlite database path")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, _ []string) error {
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

	controller := server.NewController(app.aggregator, app.runner, logger)
	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: controller.NewRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Listen))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
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
