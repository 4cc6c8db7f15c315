package model

import (
	"errors"
	"reflect"
	"testing"
)

func validDecoded() *DecodedTransaction {
	idx := uint64(5)
	win := true
	return &DecodedTransaction{
		Transaction: TxInfo{Hash: "0xabc", From: "0xplayer"},
		Data: &DecodedCall{
			Method:    "gamePlay",
			GameIndex: "5",
			PlayersID: []string{"11", "12"},
		},
		Logs: []DecodedEvent{{
			Name:          "GamePlay",
			GameIndex:     &idx,
			UserWin:       &win,
			RewardTokens:  []string{"0xtoken"},
			RewardAmounts: []string{"1000000000000000000"},
		}},
	}
}

func TestPlayEventExtraction(t *testing.T) {
	ev, err := validDecoded().PlayEvent()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := PlayEvent{
		GameIndex:     5,
		UserWin:       true,
		Players:       []string{"11", "12"},
		RewardTokens:  []string{"0xtoken"},
		RewardAmounts: []string{"1000000000000000000"},
	}
	if !reflect.DeepEqual(ev, want) {
		t.Fatalf("event mismatch: %+v != %+v", ev, want)
	}
}

func TestPlayEventMalformed(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(dt *DecodedTransaction)
	}{
		{"no call data", func(dt *DecodedTransaction) { dt.Data = nil }},
		{"no logs", func(dt *DecodedTransaction) { dt.Logs = nil }},
		{"empty players", func(dt *DecodedTransaction) { dt.Data.PlayersID = nil }},
		{"missing gameIndex", func(dt *DecodedTransaction) { dt.Logs[0].GameIndex = nil }},
		{"missing userWin", func(dt *DecodedTransaction) { dt.Logs[0].UserWin = nil }},
		{"reward length mismatch", func(dt *DecodedTransaction) {
			dt.Logs[0].RewardAmounts = append(dt.Logs[0].RewardAmounts, "7")
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dt := validDecoded()
			tc.mutate(dt)
			if _, err := dt.PlayEvent(); !errors.Is(err, ErrMalformedEvent) {
				t.Fatalf("expected ErrMalformedEvent, got %v", err)
			}
		})
	}
}
