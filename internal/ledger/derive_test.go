package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// mkEvents stamps payloads into a log with sequential ids and timestamps.
func mkEvents(payloads ...Payload) []Event {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := make([]Event, len(payloads))
	for i, p := range payloads {
		events[i] = Event{
			ID:        int64(i) + 1,
			Type:      p.eventType(),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Payload:   p,
		}
	}
	return events
}

func TestDeriveEmptyLog(t *testing.T) {
	stats := Derive(nil)

	require.Equal(t, 1, stats.CurrentCycle)
	require.Equal(t, 0, stats.CurrentBetInCycle)
	require.Equal(t, 0, stats.TotalBets)
	require.True(t, stats.StartingStake.Equal(dec("1")))
	require.True(t, NextStake(stats).Equal(dec("1")), "empty log stakes the starting stake")
}

func TestDeriveWinCompoundsStake(t *testing.T) {
	stats := Derive(mkEvents(
		BetPlaced{MarketID: "1.1", Odds: dec("3.5"), Stake: dec("1.0")},
		BetWon{MarketID: "1.1", Stake: dec("1.0"), Odds: dec("3.5"),
			GrossProfit: dec("2.65"), NetProfit: dec("2.5"), Commission: dec("0.15")},
	))

	require.True(t, stats.LastWinningProfit.Equal(dec("2.5")))
	require.True(t, NextStake(stats).Equal(dec("2.5")))
	require.Equal(t, 1, stats.CurrentBetInCycle)
	require.Equal(t, 1, stats.TotalWins)
	require.True(t, stats.TotalCommissionPaid.Equal(dec("0.15")))
}

func TestDeriveLossEndsCycle(t *testing.T) {
	stats := Derive(mkEvents(
		BetPlaced{MarketID: "1.1", Odds: dec("3.5"), Stake: dec("1.0")},
		BetWon{MarketID: "1.1", Stake: dec("1.0"), Odds: dec("3.5"),
			GrossProfit: dec("2.65"), NetProfit: dec("2.5"), Commission: dec("0.15")},
		BetPlaced{MarketID: "1.2", Odds: dec("4.0"), Stake: dec("2.5")},
		BetLost{MarketID: "1.2", Stake: dec("2.5"), Odds: dec("4.0")},
	))

	require.Equal(t, 2, stats.CurrentCycle)
	require.Equal(t, 0, stats.CurrentBetInCycle)
	require.Equal(t, 1, stats.TotalLosses)
	require.True(t, stats.TotalMoneyLost.Equal(dec("2.5")))
	require.True(t, stats.LastWinningProfit.IsZero())
	require.True(t, NextStake(stats).Equal(dec("1")), "next cycle restarts at the starting stake")

	require.Len(t, stats.CycleHistory, 1)
	rec := stats.CycleHistory[0]
	require.Equal(t, 1, rec.CycleNumber)
	require.Equal(t, 2, rec.BetsInCycle)
	require.Equal(t, CycleLost, rec.Result)
	require.True(t, rec.FinalStake.Equal(dec("2.5")))
}

func TestDeriveTargetReachedEndsCycle(t *testing.T) {
	stats := Derive(mkEvents(
		BetPlaced{MarketID: "1.1", Odds: dec("3.5"), Stake: dec("1.0")},
		BetWon{MarketID: "1.1", Stake: dec("1.0"), Odds: dec("3.5"),
			GrossProfit: dec("2.65"), NetProfit: dec("2.5"), Commission: dec("0.15")},
		TargetReached{Balance: dec("50000"), Target: dec("50000")},
	))

	require.Equal(t, 1, stats.TotalCycles)
	require.Equal(t, 2, stats.CurrentCycle)
	require.Equal(t, 0, stats.CurrentBetInCycle)
	require.Len(t, stats.CycleHistory, 1)
	require.Equal(t, CycleTargetReached, stats.CycleHistory[0].Result)
	require.True(t, stats.CycleHistory[0].FinalBalance.Equal(dec("50000")))
}

func TestDeriveCycleInvariant(t *testing.T) {
	stats := Derive(mkEvents(
		SystemReset{InitialStake: dec("1.0"), Reason: "manual reset"},
		BetPlaced{MarketID: "1.1", Odds: dec("4.0"), Stake: dec("1.0")},
		BetLost{MarketID: "1.1", Stake: dec("1.0"), Odds: dec("4.0")},
		BetPlaced{MarketID: "1.2", Odds: dec("4.0"), Stake: dec("1.0")},
		BetLost{MarketID: "1.2", Stake: dec("1.0"), Odds: dec("4.0")},
		BetPlaced{MarketID: "1.3", Odds: dec("5.0"), Stake: dec("1.0")},
		BetWon{MarketID: "1.3", Stake: dec("1.0"), Odds: dec("5.0"),
			GrossProfit: dec("4.0"), NetProfit: dec("3.8"), Commission: dec("0.2")},
		TargetReached{Balance: dec("100"), Target: dec("100")},
	))

	require.Equal(t, len(stats.CycleHistory), stats.TotalCycles)
	require.Equal(t, stats.TotalCycles+1, stats.CurrentCycle)
	require.Equal(t, 3, stats.TotalCycles)
	require.Equal(t, 4, stats.CurrentCycle)
	require.Equal(t, 4, stats.HighestCycleReached)
}

func TestDeriveResetWipesHistory(t *testing.T) {
	stats := Derive(mkEvents(
		BetPlaced{MarketID: "1.1", Odds: dec("4.0"), Stake: dec("1.0")},
		BetLost{MarketID: "1.1", Stake: dec("1.0"), Odds: dec("4.0")},
		SystemReset{InitialStake: dec("5.0"), Reason: "manual reset"},
	))

	require.Equal(t, 1, stats.CurrentCycle)
	require.Equal(t, 0, stats.TotalBets)
	require.Equal(t, 0, stats.TotalLosses)
	require.Empty(t, stats.CycleHistory)
	require.True(t, stats.StartingStake.Equal(dec("5.0")))
	require.True(t, stats.Balance.Equal(dec("5.0")))
	require.True(t, NextStake(stats).Equal(dec("5.0")))
}

func TestDeriveBalancePrefersExchangeReport(t *testing.T) {
	reported := dec("123.45")
	stats := Derive(mkEvents(
		SystemReset{InitialStake: dec("10")},
		BetPlaced{MarketID: "1.1", Odds: dec("4.0"), Stake: dec("10")},
		BetWon{MarketID: "1.1", Stake: dec("10"), Odds: dec("4.0"),
			GrossProfit: dec("30"), NetProfit: dec("28.5"), Commission: dec("1.5"),
			NewBalance: &reported},
	))
	require.True(t, stats.Balance.Equal(reported), "exchange-reported balance wins over arithmetic")
	require.True(t, stats.HighestBalance.Equal(reported))
}

func TestDeriveBalanceFallsBackToArithmetic(t *testing.T) {
	stats := Derive(mkEvents(
		SystemReset{InitialStake: dec("10")},
		BetPlaced{MarketID: "1.1", Odds: dec("4.0"), Stake: dec("10")},
		BetWon{MarketID: "1.1", Stake: dec("10"), Odds: dec("4.0"),
			GrossProfit: dec("30"), NetProfit: dec("28.5"), Commission: dec("1.5")},
	))
	require.True(t, stats.Balance.Equal(dec("38.5")))
}

func TestDeriveDeterminism(t *testing.T) {
	events := mkEvents(
		SystemReset{InitialStake: dec("1.0")},
		BetPlaced{MarketID: "1.1", Odds: dec("3.5"), Stake: dec("1.0")},
		BetWon{MarketID: "1.1", Stake: dec("1.0"), Odds: dec("3.5"),
			GrossProfit: dec("2.65"), NetProfit: dec("2.5"), Commission: dec("0.15")},
		BetPlaced{MarketID: "1.2", Odds: dec("4.0"), Stake: dec("2.5")},
		BetLost{MarketID: "1.2", Stake: dec("2.5"), Odds: dec("4.0")},
	)

	first := Derive(events)
	second := Derive(events)
	require.Equal(t, first, second)
}

func TestNextStakeIgnoresNonPositiveProfit(t *testing.T) {
	stats := seededStats()
	stats.StartingStake = dec("2")
	stats.LastWinningProfit = dec("-1")
	require.True(t, NextStake(stats).Equal(dec("2")))

	stats.LastWinningProfit = decimal.Zero
	require.True(t, NextStake(stats).Equal(dec("2")))

	stats.LastWinningProfit = dec("7.25")
	require.True(t, NextStake(stats).Equal(dec("7.25")))
}
