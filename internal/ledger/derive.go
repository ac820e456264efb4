package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cycle results as recorded in cycle history.
const (
	CycleLost          = "Lost"
	CycleTargetReached = "Target Reached"
)

// CycleRecord summarizes one completed betting cycle. FinalStake is set for
// lost cycles, FinalBalance for cycles ended by reaching the target.
type CycleRecord struct {
	CycleNumber  int             `json:"cycle_number"`
	BetsInCycle  int             `json:"bets_in_cycle"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	FinalStake   decimal.Decimal `json:"final_stake"`
	FinalBalance decimal.Decimal `json:"final_balance"`
	Result       string          `json:"result"`
}

// Stats is the materialized projection of the event log. It is a cache, never
// a second source of truth: any Stats value can be reproduced bit-identically
// by replaying the log through Derive.
type Stats struct {
	CurrentCycle        int             `json:"current_cycle"`
	CurrentBetInCycle   int             `json:"current_bet_in_cycle"`
	TotalCycles         int             `json:"total_cycles"`
	TotalBets           int             `json:"total_bets"`
	TotalWins           int             `json:"total_wins"`
	TotalLosses         int             `json:"total_losses"`
	TotalMoneyLost      decimal.Decimal `json:"total_money_lost"`
	HighestCycleReached int             `json:"highest_cycle_reached"`
	Balance             decimal.Decimal `json:"balance"`
	HighestBalance      decimal.Decimal `json:"highest_balance"`
	TotalCommissionPaid decimal.Decimal `json:"total_commission_paid"`
	LastWinningProfit   decimal.Decimal `json:"last_winning_profit"`
	StartingStake       decimal.Decimal `json:"starting_stake"`
	CycleHistory        []CycleRecord   `json:"cycle_history"`
}

func seededStats() Stats {
	one := decimal.NewFromInt(1)
	return Stats{
		CurrentCycle:        1,
		HighestCycleReached: 1,
		Balance:             one,
		HighestBalance:      one,
		StartingStake:       one,
		TotalMoneyLost:      decimal.Zero,
		TotalCommissionPaid: decimal.Zero,
		LastWinningProfit:   decimal.Zero,
	}
}

// Derive replays the event log into materialized stats in a single
// left-to-right pass. It is pure: no clock reads, no I/O, and identical
// input always yields identical output.
func Derive(events []Event) Stats {
	stats := seededStats()

	var cycleStart time.Time
	if len(events) > 0 {
		cycleStart = events[0].Timestamp
	}

	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case SystemReset:
			stats = seededStats()
			stats.StartingStake = p.InitialStake
			stats.Balance = p.InitialStake
			stats.HighestBalance = p.InitialStake
			cycleStart = ev.Timestamp

		case BetPlaced:
			stats.TotalBets++
			stats.CurrentBetInCycle++

		case BetWon:
			stats.TotalWins++
			stats.LastWinningProfit = p.NetProfit
			stats.TotalCommissionPaid = stats.TotalCommissionPaid.Add(p.Commission)
			if p.NewBalance != nil {
				stats.Balance = *p.NewBalance
			} else {
				stats.Balance = stats.Balance.Add(p.NetProfit)
			}
			if stats.Balance.GreaterThan(stats.HighestBalance) {
				stats.HighestBalance = stats.Balance
			}

		case BetLost:
			stats.TotalLosses++
			stats.TotalMoneyLost = stats.TotalMoneyLost.Add(p.Stake)
			stats.CycleHistory = append(stats.CycleHistory, CycleRecord{
				CycleNumber: stats.CurrentCycle,
				BetsInCycle: stats.CurrentBetInCycle,
				StartTime:   cycleStart,
				EndTime:     ev.Timestamp,
				FinalStake:  p.Stake,
				Result:      CycleLost,
			})
			endCycle(&stats, ev.Timestamp, &cycleStart)

		case TargetReached:
			stats.CycleHistory = append(stats.CycleHistory, CycleRecord{
				CycleNumber:  stats.CurrentCycle,
				BetsInCycle:  stats.CurrentBetInCycle,
				StartTime:    cycleStart,
				EndTime:      ev.Timestamp,
				FinalBalance: p.Balance,
				Result:       CycleTargetReached,
			})
			endCycle(&stats, ev.Timestamp, &cycleStart)
		}
	}

	return stats
}

// endCycle applies the common terminator bookkeeping: the cycle in progress
// is done, the next one begins with zero bets and no carried profit.
func endCycle(stats *Stats, at time.Time, cycleStart *time.Time) {
	stats.TotalCycles++
	stats.CurrentCycle++
	stats.CurrentBetInCycle = 0
	stats.LastWinningProfit = decimal.Zero
	if stats.CurrentCycle > stats.HighestCycleReached {
		stats.HighestCycleReached = stats.CurrentCycle
	}
	*cycleStart = at
}
