package decode

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const gameABIJSON = `[
  {
    "inputs": [
      {"internalType": "uint256", "name": "_gameIndex", "type": "uint256"},
      {"internalType": "uint256[]", "name": "_playersId", "type": "uint256[]"}
    ],
    "name": "gamePlay",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "user", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "gameIndex", "type": "uint256"},
      {"indexed": false, "internalType": "bool", "name": "userWin", "type": "bool"},
      {"indexed": false, "internalType": "address[]", "name": "rewardTokens", "type": "address[]"},
      {"indexed": false, "internalType": "uint256[]", "name": "rewardAmount", "type": "uint256[]"}
    ],
    "name": "GamePlay",
    "type": "event"
  }
]`

var (
	gameABI     abi.ABI
	gameABIOnce sync.Once
	gameABIErr  error
)

// GameABI returns the parsed game contract ABI.
func GameABI() (abi.ABI, error) {
	gameABIOnce.Do(func() {
		gameABI, gameABIErr = abi.JSON(strings.NewReader(gameABIJSON))
	})
	return gameABI, gameABIErr
}
