package model

// DecodedTransaction is a transaction enriched with ABI-decoded call data
// and event logs. Once written to the record cache it is immutable; chain
// content never changes after finality.
type DecodedTransaction struct {
	Transaction TxInfo         `json:"transaction"`
	Data        *DecodedCall   `json:"data,omitempty"`
	Receipt     ReceiptInfo    `json:"receipt"`
	Logs        []DecodedEvent `json:"logs"`
}

// TxInfo carries the raw transaction fields the pipeline needs.
type TxInfo struct {
	Hash  string `json:"hash"`
	From  string `json:"from"`
	Input string `json:"input"`
}

// DecodedCall is the decoded method call of a play transaction.
type DecodedCall struct {
	Method    string   `json:"method"`
	GameIndex string   `json:"game_index"`
	PlayersID []string `json:"players_id"`
}

// ReceiptInfo holds the receipt status and raw logs.
type ReceiptInfo struct {
	Status uint64   `json:"status"`
	Logs   []RawLog `json:"logs"`
}

// RawLog is a minimal raw log reference kept for traceability.
type RawLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
	Index   uint64   `json:"index"`
}

// DecodedEvent is one ABI-decoded receipt log. Pointer fields distinguish
// "absent" from zero values so malformed events are detected explicitly.
type DecodedEvent struct {
	Name          string   `json:"name"`
	User          string   `json:"user,omitempty"`
	GameIndex     *uint64  `json:"game_index,omitempty"`
	UserWin       *bool    `json:"user_win,omitempty"`
	RewardTokens  []string `json:"reward_tokens,omitempty"`
	RewardAmounts []string `json:"reward_amounts,omitempty"`
}
