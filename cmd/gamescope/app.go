package main

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"gameScope/internal/cache"
	"gameScope/internal/chain"
	"gameScope/internal/config"
	"gameScope/internal/decode"
	"gameScope/internal/explorer"
	"gameScope/internal/ingest"
	"gameScope/internal/stats"
	"gameScope/internal/storage"
	"gameScope/internal/storage/postgres"
	"gameScope/internal/storage/sqlite"
)

// app bundles the constructed pipeline. Everything is built once here and
// passed by reference; no ambient globals.
type app struct {
	chain      *chain.Client
	store      storage.Store
	runner     *ingest.Runner
	aggregator *stats.Aggregator
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, func(), error) {
	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}
	if !common.IsHexAddress(cfg.GameContract) {
		return nil, nil, fmt.Errorf("invalid game contract address: %q", cfg.GameContract)
	}
	if !common.IsHexAddress(cfg.PlayerContract) {
		return nil, nil, fmt.Errorf("invalid player contract address: %q", cfg.PlayerContract)
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		chainClient.Close()
		return nil, nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		chainClient.Close()
		return nil, nil, fmt.Errorf("init schema: %w", err)
	}

	decoder, err := decode.NewDecoder()
	if err != nil {
		store.Close()
		chainClient.Close()
		return nil, nil, fmt.Errorf("build decoder: %w", err)
	}

	responseCache := cache.NewResponseCache(cfg.CacheDir, nil, logger)
	recordCache := cache.NewRecordCache(cfg.CacheDir)
	cachedDecoder := decode.NewCachedDecoder(chainClient, decoder, recordCache, logger)

	fetcher := explorer.NewFetcher(explorer.Config{
		BaseURL:      cfg.ExplorerURL,
		APIKey:       cfg.ExplorerAPIKey,
		WindowSize:   cfg.WindowSize,
		TTL:          cfg.CacheTTL,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, responseCache, logger)

	ingestor := ingest.NewIngestor(cachedDecoder, store, logger)
	runner := ingest.NewRunner(ingest.RunConfig{
		Contract:   cfg.GameContract,
		Selector:   cfg.Selector,
		StartBlock: cfg.StartBlock,
	}, fetcher, ingestor, chainClient, logger)

	aggregator := stats.NewAggregator(store, chainClient, common.HexToAddress(cfg.PlayerContract), logger)

	cleanup := func() {
		store.Close()
		chainClient.Close()
	}
	return &app{
		chain:      chainClient,
		store:      store,
		runner:     runner,
		aggregator: aggregator,
	}, cleanup, nil
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		store, err := sqlite.NewStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, nil
	case "postgres":
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown db driver: %q", cfg.DBDriver)
	}
}
