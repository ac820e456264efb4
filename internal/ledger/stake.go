package ledger

import "github.com/shopspring/decimal"

// NextStake computes the stake for the next wager under the pure compounding
// strategy: the entire net profit of the last win becomes the new stake, and
// after a cycle terminator (loss, target, reset) the stake drops back to the
// configured starting stake. The result is always positive as long as the
// starting stake is; callers still have to verify account balance and market
// liquidity before wagering.
func NextStake(stats Stats) decimal.Decimal {
	if stats.LastWinningProfit.IsPositive() {
		return stats.LastWinningProfit
	}
	return stats.StartingStake
}
