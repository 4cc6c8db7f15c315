package decode

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"gameScope/internal/cache"
)

type fakeChain struct {
	tx      *types.Transaction
	from    common.Address
	receipt *types.Receipt
	err     error

	txCalls int
}

func (f *fakeChain) TransactionByHash(_ context.Context, _ common.Hash) (*types.Transaction, bool, error) {
	f.txCalls++
	if f.err != nil {
		return nil, false, f.err
	}
	return f.tx, false, nil
}

func (f *fakeChain) TransactionSender(_ context.Context, _ *types.Transaction) (common.Address, error) {
	return f.from, nil
}

func (f *fakeChain) TransactionReceipt(_ context.Context, _ common.Hash) (*types.Receipt, error) {
	return f.receipt, nil
}

func newFakeChain(t *testing.T) *fakeChain {
	t.Helper()
	user := common.HexToAddress("0xAAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAA")
	token := common.HexToAddress("0x2222222222222222222222222222222222222222")
	amount := big.NewInt(1e18)

	input := packPlayInput(t, 5, []int64{11})
	tx := types.NewTx(&types.LegacyTx{
		To:   &common.Address{},
		Data: input,
	})

	return &fakeChain{
		tx:   tx,
		from: user,
		receipt: &types.Receipt{
			Status: types.ReceiptStatusSuccessful,
			Logs:   []*types.Log{playLog(t, user, 5, true, []common.Address{token}, []*big.Int{amount})},
		},
	}
}

func TestCachedDecoderComputesAndCaches(t *testing.T) {
	chain := newFakeChain(t)
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	cd := NewCachedDecoder(chain, decoder, cache.NewRecordCache(t.TempDir()), nil)

	hash := "0xabcdef0123"
	for i := 0; i < 2; i++ {
		record, err := cd.Decode(context.Background(), hash)
		if err != nil {
			t.Fatalf("decode %d: %v", i, err)
		}
		if record.Transaction.From != "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" {
			t.Fatalf("unexpected from: %s", record.Transaction.From)
		}
		if record.Data == nil || record.Data.GameIndex != "5" {
			t.Fatalf("unexpected call data: %+v", record.Data)
		}
		if len(record.Logs) != 1 {
			t.Fatalf("expected one decoded log, got %d", len(record.Logs))
		}
	}

	if chain.txCalls != 1 {
		t.Fatalf("RPC should be hit once, got %d calls", chain.txCalls)
	}
}

func TestCachedDecoderFailurePropagates(t *testing.T) {
	chain := newFakeChain(t)
	chain.err = fmt.Errorf("transaction not found")

	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	cd := NewCachedDecoder(chain, decoder, cache.NewRecordCache(t.TempDir()), nil)

	if _, err := cd.Decode(context.Background(), "0xabcdef0123"); err == nil {
		t.Fatal("expected RPC failure to propagate")
	}

	// The failed hash must not have been cached.
	chain.err = nil
	if _, err := cd.Decode(context.Background(), "0xabcdef0123"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if chain.txCalls != 2 {
		t.Fatalf("expected a fresh compute after failure, got %d calls", chain.txCalls)
	}
}
