package model

import (
	"fmt"
	"strconv"
)

// RawTxRow is one transaction row from the explorer txlist envelope.
// The explorer serializes every numeric field as a string.
type RawTxRow struct {
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Input       string `json:"input"`
}

// Timestamp parses the row timestamp into unix seconds.
func (r RawTxRow) Timestamp() (int64, error) {
	ts, err := strconv.ParseInt(r.TimeStamp, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse timestamp %q: %w", r.TimeStamp, err)
	}
	return ts, nil
}
