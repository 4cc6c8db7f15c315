package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"gameScope/internal/model"
	"gameScope/internal/storage"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	player TEXT NOT NULL,
	game_id INTEGER NOT NULL,
	date INTEGER NOT NULL,
	win INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS games_players (
	games_id TEXT NOT NULL,
	player_id TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS games_rewards (
	games_id TEXT NOT NULL,
	token TEXT NOT NULL,
	amount TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS player_stats (
	id TEXT NOT NULL,
	game_id INTEGER NOT NULL,
	win INTEGER NOT NULL,
	total INTEGER NOT NULL,
	ratio REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_player ON games(player);
CREATE INDEX IF NOT EXISTS idx_games_players_game ON games_players(games_id);
CREATE INDEX IF NOT EXISTS idx_games_rewards_game ON games_rewards(games_id);
CREATE INDEX IF NOT EXISTS idx_player_stats_id ON player_stats(id);
`

// Store provides sqlite persistence for game rows and derived stats.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the sqlite database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single writer connection sidesteps sqlite lock contention.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// InitSchema creates the tables if absent.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaDDL)
	return err
}

func isDuplicateErr(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// InsertPlay writes the game with its children in one transaction.
func (s *Store) InsertPlay(ctx context.Context, game model.Game, players []string, rewards []model.GameReward) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO games (id, player, game_id, date, win) VALUES (?, ?, ?, ?, ?)`,
		game.ID, game.Player, game.GameID, game.Date, game.Win,
	)
	if err != nil {
		if isDuplicateErr(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("insert game: %w", err)
	}

	for _, player := range players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO games_players (games_id, player_id) VALUES (?, ?)`,
			game.ID, player,
		); err != nil {
			return fmt.Errorf("insert game player: %w", err)
		}
	}

	for _, reward := range rewards {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO games_rewards (games_id, token, amount) VALUES (?, ?, ?)`,
			game.ID, reward.Token, reward.Amount,
		); err != nil {
			return fmt.Errorf("insert game reward: %w", err)
		}
	}

	return tx.Commit()
}

// ReplacePlayerStats rebuilds the player's stat rows atomically.
func (s *Store) ReplacePlayerStats(ctx context.Context, player string, rows []model.PlayerStat) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_stats WHERE id = ?`, player); err != nil {
		return fmt.Errorf("delete player stats: %w", err)
	}

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO player_stats (id, game_id, win, total, ratio) VALUES (?, ?, ?, ?, ?)`,
			player, row.GameID, row.Win, row.Total, row.Ratio,
		); err != nil {
			return fmt.Errorf("insert player stat: %w", err)
		}
	}

	return tx.Commit()
}

// ListPlayerStats returns the player's stat rows.
func (s *Store) ListPlayerStats(ctx context.Context, player string) ([]model.PlayerStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, game_id, win, total, ratio FROM player_stats WHERE id = ? ORDER BY game_id`,
		player,
	)
	if err != nil {
		return nil, fmt.Errorf("query player stats: %w", err)
	}
	defer rows.Close()

	stats := make([]model.PlayerStat, 0)
	for rows.Next() {
		var stat model.PlayerStat
		if err := rows.Scan(&stat.Player, &stat.GameID, &stat.Win, &stat.Total, &stat.Ratio); err != nil {
			return nil, fmt.Errorf("scan player stat: %w", err)
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// GroupGamesByPlayer groups the player's games by game id.
func (s *Store) GroupGamesByPlayer(ctx context.Context, player string) ([]model.PlayerStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, SUM(win), COUNT(*) FROM games WHERE player = ? GROUP BY game_id ORDER BY game_id`,
		player,
	)
	if err != nil {
		return nil, fmt.Errorf("group games: %w", err)
	}
	defer rows.Close()

	stats := make([]model.PlayerStat, 0)
	for rows.Next() {
		stat := model.PlayerStat{Player: player}
		if err := rows.Scan(&stat.GameID, &stat.Win, &stat.Total); err != nil {
			return nil, fmt.Errorf("scan game group: %w", err)
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// Associates returns the distinct player ids seen in the player's games.
func (s *Store) Associates(ctx context.Context, player string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT p.player_id
		 FROM games_players p
		 JOIN games g ON g.id = p.games_id
		 WHERE g.player = ?
		 ORDER BY p.player_id`,
		player,
	)
	if err != nil {
		return nil, fmt.Errorf("query associates: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan associate: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListPlayerRewards returns every reward across the player's games.
func (s *Store) ListPlayerRewards(ctx context.Context, player string) ([]model.GameReward, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.token, r.amount
		 FROM games_rewards r
		 JOIN games g ON g.id = r.games_id
		 WHERE g.player = ?
		 ORDER BY r.token`,
		player,
	)
	if err != nil {
		return nil, fmt.Errorf("query rewards: %w", err)
	}
	defer rows.Close()

	rewards := make([]model.GameReward, 0)
	for rows.Next() {
		var reward model.GameReward
		if err := rows.Scan(&reward.Token, &reward.Amount); err != nil {
			return nil, fmt.Errorf("scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	return rewards, rows.Err()
}

// CountGamesByPlayer counts the player's game rows.
func (s *Store) CountGamesByPlayer(ctx context.Context, player string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE player = ?`, player).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return count, nil
}
