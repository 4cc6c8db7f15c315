package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gameScope/internal/decode"
	"gameScope/internal/model"
	"gameScope/internal/storage"
)

// TxDecoder produces decoded transaction records by hash.
type TxDecoder interface {
	Decode(ctx context.Context, hash string) (*model.DecodedTransaction, error)
}

// Ingestor writes decoded play transactions into the relational store with
// at-most-once semantics per transaction hash.
type Ingestor struct {
	decoder TxDecoder
	store   storage.Store
	logger  *zap.Logger
}

// NewIngestor builds an ingestor from its collaborators.
func NewIngestor(decoder TxDecoder, store storage.Store, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{decoder: decoder, store: store, logger: logger}
}

// Ingest processes one candidate row. Decode failures and malformed events
// come back as a Rejected result; only storage failures are returned as
// errors, since they abort the whole run.
func (i *Ingestor) Ingest(ctx context.Context, row model.RawTxRow) (Result, error) {
	record, err := i.decoder.Decode(ctx, row.Hash)
	if err != nil {
		return Result{Outcome: OutcomeRejected, Reason: err}, nil
	}

	event, err := record.PlayEvent()
	if err != nil {
		return Result{Outcome: OutcomeRejected, Reason: err}, nil
	}

	ts, err := row.Timestamp()
	if err != nil {
		return Result{Outcome: OutcomeRejected, Reason: fmt.Errorf("%w: %v", model.ErrMalformedEvent, err)}, nil
	}

	win := 0
	if event.UserWin {
		win = 1
	}
	game := model.Game{
		ID:     row.Hash,
		Player: record.Transaction.From,
		GameID: event.GameIndex,
		Date:   ts,
		Win:    win,
	}

	rewards := make([]model.GameReward, 0, len(event.RewardTokens))
	for idx, token := range event.RewardTokens {
		rewards = append(rewards, model.GameReward{Token: token, Amount: event.RewardAmounts[idx]})
	}

	if err := i.store.InsertPlay(ctx, game, event.Players, rewards); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return Result{Outcome: OutcomeAlreadyPresent}, nil
		}
		return Result{}, fmt.Errorf("insert play %s: %w", row.Hash, err)
	}

	return Result{Outcome: OutcomeInserted}, nil
}

var _ TxDecoder = (*decode.CachedDecoder)(nil)
