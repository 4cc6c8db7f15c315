package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const playerABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "arrayUserPlayers",
    "outputs": [{"internalType": "uint256[2][]", "name": "", "type": "uint256[2][]"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	playerABI     abi.ABI
	playerABIOnce sync.Once
	playerABIErr  error
)

// PlayerABI returns the parsed player-NFT contract ABI.
func PlayerABI() (abi.ABI, error) {
	playerABIOnce.Do(func() {
		playerABI, playerABIErr = abi.JSON(strings.NewReader(playerABIJSON))
	})
	return playerABI, playerABIErr
}

// Client wraps go-ethereum RPC and provides the calls the pipeline needs.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, rpcURL string) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// TransactionByHash returns the transaction for a hash.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	return c.ethClient.TransactionByHash(ctx, hash)
}

// TransactionSender recovers the sender of a mined transaction.
func (c *Client) TransactionSender(ctx context.Context, tx *types.Transaction) (common.Address, error) {
	signer := types.LatestSignerForChainID(tx.ChainId())
	return types.Sender(signer, tx)
}

// TransactionReceipt returns the receipt for a hash.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return c.ethClient.TransactionReceipt(ctx, hash)
}

// ArrayUserPlayers calls the player contract view returning the user's
// current holdings as (id, value) pairs.
func (c *Client) ArrayUserPlayers(ctx context.Context, contract, user common.Address) ([][2]*big.Int, error) {
	contractABI, err := PlayerABI()
	if err != nil {
		return nil, err
	}

	input, err := contractABI.Pack("arrayUserPlayers", user)
	if err != nil {
		return nil, fmt.Errorf("pack arrayUserPlayers: %w", err)
	}

	output, err := c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call arrayUserPlayers: %w", err)
	}

	values, err := contractABI.Unpack("arrayUserPlayers", output)
	if err != nil {
		return nil, fmt.Errorf("unpack arrayUserPlayers: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected arrayUserPlayers output arity: %d", len(values))
	}

	pairs, ok := values[0].([][2]*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected arrayUserPlayers output type %T", values[0])
	}
	return pairs, nil
}
