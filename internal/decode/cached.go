package decode

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"gameScope/internal/cache"
	"gameScope/internal/model"
)

// ChainReader is the narrow RPC surface the decoder needs.
type ChainReader interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
	TransactionSender(ctx context.Context, tx *types.Transaction) (common.Address, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// CachedDecoder produces decoded transaction records, consulting the record
// cache before touching the RPC node. Records are computed at most once per
// hash for the lifetime of the cache directory.
type CachedDecoder struct {
	chain   ChainReader
	decoder *Decoder
	records *cache.RecordCache
	logger  *zap.Logger
}

// NewCachedDecoder builds the adapter from its collaborators.
func NewCachedDecoder(chain ChainReader, decoder *Decoder, records *cache.RecordCache, logger *zap.Logger) *CachedDecoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDecoder{chain: chain, decoder: decoder, records: records, logger: logger}
}

// Decode returns the decoded record for a transaction hash.
func (c *CachedDecoder) Decode(ctx context.Context, hash string) (*model.DecodedTransaction, error) {
	return c.records.GetOrCompute(hash, func() (*model.DecodedTransaction, error) {
		return c.compute(ctx, hash)
	})
}

func (c *CachedDecoder) compute(ctx context.Context, hash string) (*model.DecodedTransaction, error) {
	txHash := common.HexToHash(hash)

	tx, pending, err := c.chain.TransactionByHash(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", hash, err)
	}
	if pending {
		return nil, fmt.Errorf("transaction %s is not mined", hash)
	}

	from, err := c.chain.TransactionSender(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("recover sender %s: %w", hash, err)
	}

	call, err := c.decoder.DecodeInput(tx.Data())
	if err != nil {
		return nil, err
	}

	receipt, err := c.chain.TransactionReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("get receipt %s: %w", hash, err)
	}

	events, err := c.decoder.DecodeLogs(receipt.Logs)
	if err != nil {
		return nil, err
	}

	record := &model.DecodedTransaction{
		Transaction: model.TxInfo{
			Hash:  hash,
			From:  strings.ToLower(from.Hex()),
			Input: hexutil.Encode(tx.Data()),
		},
		Data:    call,
		Receipt: buildReceiptInfo(receipt),
		Logs:    events,
	}
	return record, nil
}

func buildReceiptInfo(receipt *types.Receipt) model.ReceiptInfo {
	info := model.ReceiptInfo{
		Status: receipt.Status,
		Logs:   make([]model.RawLog, 0, len(receipt.Logs)),
	}
	for _, log := range receipt.Logs {
		if log == nil {
			continue
		}
		raw := model.RawLog{
			Address: strings.ToLower(log.Address.Hex()),
			Data:    hexutil.Encode(log.Data),
			Index:   uint64(log.Index),
			Topics:  make([]string, 0, len(log.Topics)),
		}
		for _, topic := range log.Topics {
			raw.Topics = append(raw.Topics, topic.Hex())
		}
		info.Logs = append(info.Logs, raw)
	}
	return info
}
