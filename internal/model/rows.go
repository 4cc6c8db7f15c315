package model

// Game is one ingested play transaction. ID is the transaction hash;
// its uniqueness enforces at-most-once ingestion.
type Game struct {
	ID     string `json:"id"`
	Player string `json:"player"`
	GameID uint64 `json:"game_id"`
	Date   int64  `json:"date"`
	Win    int    `json:"win"`
}

// GameReward is one (token, amount) pair attached to a game. Amount is the
// raw on-chain value kept as a decimal string; 256-bit amounts do not fit
// native integers.
type GameReward struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}

// PlayerStat is a derived per-(player, game) aggregate over Game rows.
// Never authoritative: fully rebuilt from games before every read.
type PlayerStat struct {
	Player string  `json:"id"`
	GameID uint64  `json:"game_id"`
	Win    int64   `json:"win"`
	Total  int64   `json:"total"`
	Ratio  float64 `json:"ratio"`
}
