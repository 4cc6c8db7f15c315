package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"gameScope/internal/cache"
	"gameScope/internal/model"
)

// DefaultWindowSize respects the explorer API's per-call result cap.
const DefaultWindowSize = 10_000

// Config holds explorer access settings.
type Config struct {
	BaseURL      string
	APIKey       string
	WindowSize   uint64
	TTL          time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Fetcher walks a contract's transaction history in fixed block windows
// through the response cache, so recomputing a range never re-downloads.
type Fetcher struct {
	cfg    Config
	cache  *cache.ResponseCache
	logger *zap.Logger
}

// envelope is the explorer txlist response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// NewFetcher builds a fetcher over the response cache.
func NewFetcher(cfg Config, responseCache *cache.ResponseCache, logger *zap.Logger) *Fetcher {
	if cfg.WindowSize == 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.TTL <= 0 {
		// Finalized ranges are immutable; any positive TTL works.
		cfg.TTL = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{cfg: cfg, cache: responseCache, logger: logger}
}

func (f *Fetcher) windowURL(contract string, start, end uint64) string {
	return fmt.Sprintf(
		"%s?module=account&action=txlist&address=%s&startblock=%d&endblock=%d&page=1&offset=10000&sort=asc&apikey=%s",
		f.cfg.BaseURL, contract, start, end, f.cfg.APIKey,
	)
}

// ForEach walks [fromBlock, toBlock) window by window and invokes fn for
// every transaction row, in block-ascending order. A non-success explorer
// status means "no data in this window", not a failure; iteration always
// advances until fromBlock reaches toBlock. Errors from fn abort the walk.
func (f *Fetcher) ForEach(ctx context.Context, contract string, fromBlock, toBlock uint64, fn func(model.RawTxRow) error) error {
	for start := fromBlock; start < toBlock; start += f.cfg.WindowSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := start + f.cfg.WindowSize
		url := f.windowURL(contract, start, end)
		f.logger.Info("downloading window", zap.Uint64("start", start), zap.Uint64("end", end))

		var body []byte
		err := withRetry(ctx, f.cfg.MaxRetries, f.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			body, err = f.cache.Get(ctx, url, f.cfg.TTL)
			if err != nil {
				f.logger.Warn("window download failed", zap.Uint64("start", start), zap.Error(err))
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("window [%d, %d): %w", start, end, err)
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("parse window [%d, %d): %w", start, end, err)
		}
		if env.Status != "1" {
			f.logger.Debug("empty window", zap.Uint64("start", start), zap.String("message", env.Message))
			continue
		}

		var rows []model.RawTxRow
		if err := json.Unmarshal(env.Result, &rows); err != nil {
			return fmt.Errorf("parse rows [%d, %d): %w", start, end, err)
		}

		for _, row := range rows {
			if err := fn(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// MatchesSelector reports whether a row's call input is a candidate play
// transaction. Pure admission control before any decode work.
func MatchesSelector(input, selectorPrefix string) bool {
	return selectorPrefix != "" && strings.HasPrefix(input, selectorPrefix)
}
