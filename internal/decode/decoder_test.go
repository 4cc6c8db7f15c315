package decode

import (
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func packPlayInput(t *testing.T, gameIndex int64, players []int64) []byte {
	t.Helper()
	gameABI, err := GameABI()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}

	ids := make([]*big.Int, 0, len(players))
	for _, p := range players {
		ids = append(ids, big.NewInt(p))
	}

	input, err := gameABI.Pack("gamePlay", big.NewInt(gameIndex), ids)
	if err != nil {
		t.Fatalf("pack input: %v", err)
	}
	return input
}

func playLog(t *testing.T, user common.Address, gameIndex int64, win bool, tokens []common.Address, amounts []*big.Int) *types.Log {
	t.Helper()
	gameABI, err := GameABI()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}

	event := gameABI.Events["GamePlay"]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(gameIndex), win, tokens, amounts)
	if err != nil {
		t.Fatalf("pack log data: %v", err)
	}

	return &types.Log{
		Topics: []common.Hash{event.ID, common.BytesToHash(user.Bytes())},
		Data:   data,
	}
}

func TestDecodeInputRoundTrip(t *testing.T) {
	d, err := NewDecoder()
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}

	input := packPlayInput(t, 5, []int64{11, 12, 13})
	call, err := d.DecodeInput(input)
	if err != nil {
		t.Fatalf("decode input: %v", err)
	}

	if call.Method != "gamePlay" {
		t.Fatalf("unexpected method: %s", call.Method)
	}
	if call.GameIndex != "5" {
		t.Fatalf("unexpected game index: %s", call.GameIndex)
	}
	if want := []string{"11", "12", "13"}; !reflect.DeepEqual(call.PlayersID, want) {
		t.Fatalf("players mismatch: %v != %v", call.PlayersID, want)
	}
}

func TestDecodeInputUnknownSelector(t *testing.T) {
	d, err := NewDecoder()
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}

	cases := map[string][]byte{
		"empty":            nil,
		"short":            {0x10, 0x2f},
		"unknown selector": {0xde, 0xad, 0xbe, 0xef, 0x00},
	}
	for name, input := range cases {
		if _, err := d.DecodeInput(input); !errors.Is(err, ErrDecodeFailed) {
			t.Fatalf("%s: expected ErrDecodeFailed, got %v", name, err)
		}
	}
}

func TestDecodeLogsRoundTrip(t *testing.T) {
	d, err := NewDecoder()
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}

	user := common.HexToAddress("0x1111111111111111111111111111111111111111")
	token := common.HexToAddress("0x2222222222222222222222222222222222222222")
	amount, _ := new(big.Int).SetString("1000000000000000000", 10)

	logs := []*types.Log{
		// Foreign event, ignored.
		{Topics: []common.Hash{common.HexToHash("0xff")}},
		playLog(t, user, 5, true, []common.Address{token}, []*big.Int{amount}),
	}

	events, err := d.DecodeLogs(logs)
	if err != nil {
		t.Fatalf("decode logs: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one decoded event, got %d", len(events))
	}

	ev := events[0]
	if ev.Name != "GamePlay" {
		t.Fatalf("unexpected event name: %s", ev.Name)
	}
	if ev.GameIndex == nil || *ev.GameIndex != 5 {
		t.Fatalf("unexpected game index: %v", ev.GameIndex)
	}
	if ev.UserWin == nil || !*ev.UserWin {
		t.Fatalf("unexpected user win: %v", ev.UserWin)
	}
	if len(ev.RewardTokens) != 1 || ev.RewardTokens[0] != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("unexpected reward tokens: %v", ev.RewardTokens)
	}
	if len(ev.RewardAmounts) != 1 || ev.RewardAmounts[0] != "1000000000000000000" {
		t.Fatalf("unexpected reward amounts: %v", ev.RewardAmounts)
	}
	if ev.User != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("unexpected user: %s", ev.User)
	}
}

func TestDecodeLogsTruncatedData(t *testing.T) {
	d, err := NewDecoder()
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}

	gameABI, _ := GameABI()
	log := &types.Log{
		Topics: []common.Hash{gameABI.Events["GamePlay"].ID},
		Data:   []byte{0x01, 0x02},
	}
	if _, err := d.DecodeLogs([]*types.Log{log}); !errors.Is(err, ErrDecodeFailed) {
		t.Fatalf("expected ErrDecodeFailed, got %v", err)
	}
}
