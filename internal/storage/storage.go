package storage

import (
	"context"
	"errors"

	"gameScope/internal/model"
)

// ErrDuplicate marks a unique-key violation on insert. Ingestion maps it to
// an AlreadyPresent outcome instead of failing.
var ErrDuplicate = errors.New("duplicate row")

// Store is the relational persistence surface of the pipeline.
type Store interface {
	// InitSchema creates the tables if they do not exist.
	InitSchema(ctx context.Context) error

	// InsertPlay writes one game with its player and reward rows in a single
	// transaction. A game with the same id returns ErrDuplicate and writes
	// nothing.
	InsertPlay(ctx context.Context, game model.Game, players []string, rewards []model.GameReward) error

	// ReplacePlayerStats deletes the player's stat rows and inserts the given
	// set atomically.
	ReplacePlayerStats(ctx context.Context, player string, rows []model.PlayerStat) error

	// ListPlayerStats returns the player's stat rows ordered by game id.
	ListPlayerStats(ctx context.Context, player string) ([]model.PlayerStat, error)

	// GroupGamesByPlayer groups the player's games by game id, computing win
	// and total counts. Ratio is left for the caller.
	GroupGamesByPlayer(ctx context.Context, player string) ([]model.PlayerStat, error)

	// Associates returns the distinct player ids that co-occur in the
	// player's games.
	Associates(ctx context.Context, player string) ([]string, error)

	// ListPlayerRewards returns every reward row across the player's games.
	ListPlayerRewards(ctx context.Context, player string) ([]model.GameReward, error)

	// CountGamesByPlayer counts the player's game rows.
	CountGamesByPlayer(ctx context.Context, player string) (int64, error)

	Close()
}
