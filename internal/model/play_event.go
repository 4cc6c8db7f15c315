package model

import (
	"errors"
	"fmt"
)

// ErrMalformedEvent marks a decoded transaction whose play event is missing
// required fields or carries mismatched reward arrays.
var ErrMalformedEvent = errors.New("malformed play event")

// PlayEvent is the structured view of a play transaction, valid only when
// the decoded method matches the game-play selector.
type PlayEvent struct {
	GameIndex     uint64
	UserWin       bool
	Players       []string
	RewardTokens  []string
	RewardAmounts []string
}

// PlayEvent extracts the play event from a decoded transaction. Missing
// fields and mismatched reward lengths map to ErrMalformedEvent.
func (dt *DecodedTransaction) PlayEvent() (PlayEvent, error) {
	if dt.Data == nil {
		return PlayEvent{}, fmt.Errorf("%w: call data not decoded", ErrMalformedEvent)
	}
	if len(dt.Logs) == 0 {
		return PlayEvent{}, fmt.Errorf("%w: no decoded logs", ErrMalformedEvent)
	}
	if len(dt.Data.PlayersID) == 0 {
		return PlayEvent{}, fmt.Errorf("%w: empty players list", ErrMalformedEvent)
	}

	ev := dt.Logs[0]
	if ev.GameIndex == nil {
		return PlayEvent{}, fmt.Errorf("%w: missing gameIndex", ErrMalformedEvent)
	}
	if ev.UserWin == nil {
		return PlayEvent{}, fmt.Errorf("%w: missing userWin", ErrMalformedEvent)
	}
	if len(ev.RewardTokens) != len(ev.RewardAmounts) {
		return PlayEvent{}, fmt.Errorf("%w: reward tokens (%d) and amounts (%d) differ",
			ErrMalformedEvent, len(ev.RewardTokens), len(ev.RewardAmounts))
	}

	return PlayEvent{
		GameIndex:     *ev.GameIndex,
		UserWin:       *ev.UserWin,
		Players:       dt.Data.PlayersID,
		RewardTokens:  ev.RewardTokens,
		RewardAmounts: ev.RewardAmounts,
	}, nil
}
