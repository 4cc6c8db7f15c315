package stats

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"gameScope/internal/model"
	"gameScope/internal/storage"
)

// weiPerToken normalizes raw reward amounts to whole-token units.
var weiPerToken = new(big.Float).SetFloat64(1e18)

// HoldingsReader provides the player contract view call.
type HoldingsReader interface {
	ArrayUserPlayers(ctx context.Context, contract, user common.Address) ([][2]*big.Int, error)
}

// Aggregator recomputes per-player statistics from game rows. Stat rows are
// derived data: fully rebuilt from games on every read, never merged
// incrementally.
type Aggregator struct {
	store          storage.Store
	chain          HoldingsReader
	playerContract common.Address
	logger         *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAggregator builds an aggregator from its collaborators.
func NewAggregator(store storage.Store, chain HoldingsReader, playerContract common.Address, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		store:          store,
		chain:          chain,
		playerContract: playerContract,
		logger:         logger,
		locks:          make(map[string]*sync.Mutex),
	}
}

// lockPlayer serializes the delete-then-insert rebuild per player. Two
// concurrent requests for different players do not contend.
func (a *Aggregator) lockPlayer(player string) func() {
	a.mu.Lock()
	lock, ok := a.locks[player]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[player] = lock
	}
	a.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// ComputeSummary rebuilds the player's stat rows and assembles the summary.
func (a *Aggregator) ComputeSummary(ctx context.Context, player string) (*model.PlayerSummary, error) {
	unlock := a.lockPlayer(player)
	defer unlock()

	if err := a.rebuild(ctx, player); err != nil {
		return nil, err
	}

	statRows, err := a.store.ListPlayerStats(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("read player stats: %w", err)
	}

	summary := &model.PlayerSummary{
		Player: player,
		Stats:  statRows,
	}

	var plays, wins int64
	for _, row := range statRows {
		plays += row.Total
		wins += row.Win
	}
	if plays > 0 {
		summary.Total = &model.PlayTotals{
			Plays: plays,
			Wins:  wins,
			Ratio: round2(float64(wins) / float64(plays)),
		}

		nfts, err := a.store.Associates(ctx, player)
		if err != nil {
			return nil, fmt.Errorf("read associates: %w", err)
		}
		summary.NFTs = nfts
	}

	holdings, err := a.chain.ArrayUserPlayers(ctx, a.playerContract, common.HexToAddress(player))
	if err != nil {
		return nil, fmt.Errorf("read holdings: %w", err)
	}
	summary.CurrentNFT = formatHoldings(holdings)
	summary.Balance = HoldingsBalance(holdings)

	rewards, err := a.store.ListPlayerRewards(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("read rewards: %w", err)
	}
	summary.Won = SumRewards(rewards)

	return summary, nil
}

// rebuild replaces the player's stat rows from the authoritative game rows.
func (a *Aggregator) rebuild(ctx context.Context, player string) error {
	groups, err := a.store.GroupGamesByPlayer(ctx, player)
	if err != nil {
		return fmt.Errorf("group games: %w", err)
	}

	for i := range groups {
		// A zero-total group cannot occur: it only exists when at least one
		// game row matched the grouping.
		groups[i].Ratio = round2(float64(groups[i].Win) / float64(groups[i].Total))
	}

	if err := a.store.ReplacePlayerStats(ctx, player, groups); err != nil {
		return fmt.Errorf("replace player stats: %w", err)
	}
	return nil
}

func formatHoldings(pairs [][2]*big.Int) [][]string {
	out := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		id, value := "0", "0"
		if pair[0] != nil {
			id = pair[0].String()
		}
		if pair[1] != nil {
			value = pair[1].String()
		}
		out = append(out, []string{id, value})
	}
	return out
}

// HoldingsBalance derives the average-ownership figure from holdings pairs:
// round of mean (value+1). Zero holdings means zero balance.
func HoldingsBalance(pairs [][2]*big.Int) int64 {
	if len(pairs) == 0 {
		return 0
	}

	total := new(big.Int)
	for _, pair := range pairs {
		if pair[1] != nil {
			total.Add(total, pair[1])
		}
		total.Add(total, big.NewInt(1))
	}

	mean, _ := new(big.Float).Quo(
		new(big.Float).SetInt(total),
		new(big.Float).SetInt64(int64(len(pairs))),
	).Float64()
	return int64(math.Round(mean))
}

// SumRewards sums raw reward amounts per token and normalizes by 1e18.
// Amounts are decimal strings; summation stays exact until the final
// division.
func SumRewards(rewards []model.GameReward) []model.TokenReward {
	sums := make(map[string]*big.Int)
	order := make([]string, 0)
	for _, reward := range rewards {
		amount, ok := new(big.Int).SetString(reward.Amount, 10)
		if !ok {
			continue
		}
		sum, seen := sums[reward.Token]
		if !seen {
			sum = new(big.Int)
			sums[reward.Token] = sum
			order = append(order, reward.Token)
		}
		sum.Add(sum, amount)
	}

	out := make([]model.TokenReward, 0, len(order))
	for _, token := range order {
		normalized, _ := new(big.Float).Quo(new(big.Float).SetInt(sums[token]), weiPerToken).Float64()
		out = append(out, model.TokenReward{Token: token, Sum: normalized})
	}
	return out
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
