package model

// PlayTotals sums PlayerStat rows across games.
type PlayTotals struct {
	Plays int64   `json:"plays"`
	Wins  int64   `json:"wins"`
	Ratio float64 `json:"ratio"`
}

// TokenReward is a per-token reward sum normalized to whole-token units.
type TokenReward struct {
	Token string  `json:"token"`
	Sum   float64 `json:"sum"`
}

// PlayerSummary is the caller-facing stats document for one player.
// Total is omitted when the player has no recorded plays.
type PlayerSummary struct {
	Player     string        `json:"player"`
	Stats      []PlayerStat  `json:"stats"`
	Total      *PlayTotals   `json:"total,omitempty"`
	NFTs       []string      `json:"nfts,omitempty"`
	CurrentNFT [][]string    `json:"currentNFT"`
	Balance    int64         `json:"balance"`
	Won        []TokenReward `json:"won"`
}
