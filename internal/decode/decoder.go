package decode

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"gameScope/internal/model"
)

// ErrDecodeFailed marks call input or logs the ABI could not interpret.
// The transaction is skipped, never fatal to a run.
var ErrDecodeFailed = errors.New("decode failed")

// Decoder turns raw call input and receipt logs into typed structures
// using the game contract ABI.
type Decoder struct {
	gameABI     abi.ABI
	playEventID common.Hash
}

// NewDecoder builds a decoder over the game ABI.
func NewDecoder() (*Decoder, error) {
	gameABI, err := GameABI()
	if err != nil {
		return nil, err
	}
	return &Decoder{
		gameABI:     gameABI,
		playEventID: gameABI.Events["GamePlay"].ID,
	}, nil
}

// DecodeInput decodes a transaction's call input into a DecodedCall.
func (d *Decoder) DecodeInput(input []byte) (*model.DecodedCall, error) {
	if len(input) < 4 {
		return nil, fmt.Errorf("%w: input too short", ErrDecodeFailed)
	}

	method, err := d.gameABI.MethodById(input[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: unknown method selector: %v", ErrDecodeFailed, err)
	}

	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: unpack %s: %v", ErrDecodeFailed, method.Name, err)
	}
	if method.Name != "gamePlay" || len(args) != 2 {
		return nil, fmt.Errorf("%w: unexpected method %s", ErrDecodeFailed, method.Name)
	}

	gameIndex, ok := args[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: _gameIndex has type %T", ErrDecodeFailed, args[0])
	}
	playersID, ok := args[1].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: _playersId has type %T", ErrDecodeFailed, args[1])
	}

	call := &model.DecodedCall{
		Method:    method.Name,
		GameIndex: gameIndex.String(),
		PlayersID: make([]string, 0, len(playersID)),
	}
	for _, id := range playersID {
		call.PlayersID = append(call.PlayersID, id.String())
	}
	return call, nil
}

// DecodeLogs decodes the GamePlay events among the receipt logs. Logs with
// foreign topics are ignored; a GamePlay log that fails to unpack is a
// decode failure.
func (d *Decoder) DecodeLogs(logs []*types.Log) ([]model.DecodedEvent, error) {
	events := make([]model.DecodedEvent, 0, len(logs))
	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 || log.Topics[0] != d.playEventID {
			continue
		}

		values, err := d.gameABI.Unpack("GamePlay", log.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: unpack GamePlay log: %v", ErrDecodeFailed, err)
		}
		if len(values) != 4 {
			return nil, fmt.Errorf("%w: unexpected GamePlay arity %d", ErrDecodeFailed, len(values))
		}

		gameIndexBig, ok := values[0].(*big.Int)
		if !ok {
			return nil, fmt.Errorf("%w: gameIndex has type %T", ErrDecodeFailed, values[0])
		}
		userWin, ok := values[1].(bool)
		if !ok {
			return nil, fmt.Errorf("%w: userWin has type %T", ErrDecodeFailed, values[1])
		}
		tokens, ok := values[2].([]common.Address)
		if !ok {
			return nil, fmt.Errorf("%w: rewardTokens has type %T", ErrDecodeFailed, values[2])
		}
		amounts, ok := values[3].([]*big.Int)
		if !ok {
			return nil, fmt.Errorf("%w: rewardAmount has type %T", ErrDecodeFailed, values[3])
		}

		gameIndex := gameIndexBig.Uint64()
		win := userWin
		ev := model.DecodedEvent{
			Name:          "GamePlay",
			GameIndex:     &gameIndex,
			UserWin:       &win,
			RewardTokens:  make([]string, 0, len(tokens)),
			RewardAmounts: make([]string, 0, len(amounts)),
		}
		if len(log.Topics) > 1 {
			ev.User = strings.ToLower(common.BytesToAddress(log.Topics[1].Bytes()).Hex())
		}
		for _, token := range tokens {
			ev.RewardTokens = append(ev.RewardTokens, strings.ToLower(token.Hex()))
		}
		for _, amount := range amounts {
			ev.RewardAmounts = append(ev.RewardAmounts, amount.String())
		}
		events = append(events, ev)
	}
	return events, nil
}
