package notifier

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"StakePilot/internal/ledger"
	"StakePilot/internal/model"
	"StakePilot/internal/tracker"
)

func money(d decimal.Decimal) string {
	return humanize.CommafWithDigits(d.InexactFloat64(), 2)
}

// FormatBetPlaced renders a bet-placed notification.
func FormatBetPlaced(bet *model.BetDetails, stats *ledger.Stats) string {
	var b strings.Builder
	b.WriteString("🎯 <b>Bet Placed</b>\n\n")
	fmt.Fprintf(&b, "Event: %s\n", bet.EventName)
	fmt.Fprintf(&b, "Selection: %s\n", bet.TeamName)
	fmt.Fprintf(&b, "Odds: %s\n", bet.Odds.StringFixed(2))
	fmt.Fprintf(&b, "Stake: %s\n", money(bet.Stake))
	if bet.InPlay {
		b.WriteString("In-play: yes\n")
	}
	fmt.Fprintf(&b, "\nCycle %d, bet %d", stats.CurrentCycle, stats.CurrentBetInCycle)
	return b.String()
}

// FormatSettlement renders a settlement notification for a win or loss.
func FormatSettlement(bet *model.BetDetails, s *model.Settlement, stats *ledger.Stats) string {
	var b strings.Builder
	if s.Won {
		b.WriteString("✅ <b>Bet Won</b>\n\n")
		fmt.Fprintf(&b, "Event: %s\n", bet.EventName)
		fmt.Fprintf(&b, "Selection: %s @ %s\n", bet.TeamName, bet.Odds.StringFixed(2))
		fmt.Fprintf(&b, "Net profit: %s (commission %s)\n", money(s.NetProfit), money(s.Commission))
		fmt.Fprintf(&b, "Balance: %s\n", money(s.NewBalance))
		fmt.Fprintf(&b, "\nNext stake compounds to %s", money(s.NetProfit))
	} else {
		b.WriteString("❌ <b>Bet Lost</b>\n\n")
		fmt.Fprintf(&b, "Event: %s\n", bet.EventName)
		fmt.Fprintf(&b, "Selection: %s @ %s\n", bet.TeamName, bet.Odds.StringFixed(2))
		fmt.Fprintf(&b, "Stake lost: %s\n", money(bet.Stake))
		fmt.Fprintf(&b, "\nCycle %d over, starting cycle %d from scratch", stats.CurrentCycle-1, stats.CurrentCycle)
	}
	return b.String()
}

// FormatTargetReached renders the target-hit celebration message.
func FormatTargetReached(stats *ledger.Stats, target decimal.Decimal) string {
	var b strings.Builder
	b.WriteString("🏆 <b>TARGET REACHED</b>\n\n")
	fmt.Fprintf(&b, "Balance: %s\n", money(stats.Balance))
	fmt.Fprintf(&b, "Target: %s\n", money(target))
	fmt.Fprintf(&b, "Bets this cycle: %d\n", betsInLastCycle(stats))
	fmt.Fprintf(&b, "Total bets: %d\n", stats.TotalBets)
	b.WriteString("\nA fresh cycle begins at the starting stake.")
	return b.String()
}

func betsInLastCycle(stats *ledger.Stats) int {
	if n := len(stats.CycleHistory); n > 0 {
		return stats.CycleHistory[n-1].BetsInCycle
	}
	return 0
}

// FormatStats renders the full status summary.
func FormatStats(stats *ledger.Stats, nextStake decimal.Decimal, activeBet *model.BetDetails) string {
	var b strings.Builder
	b.WriteString("📊 <b>Status</b>\n\n")
	fmt.Fprintf(&b, "Cycle: %d (bet %d)\n", stats.CurrentCycle, stats.CurrentBetInCycle)
	fmt.Fprintf(&b, "Balance: %s\n", money(stats.Balance))
	fmt.Fprintf(&b, "Highest balance: %s\n", money(stats.HighestBalance))
	fmt.Fprintf(&b, "Next stake: %s\n", money(nextStake))
	fmt.Fprintf(&b, "Record: %d won / %d lost of %d bets\n", stats.TotalWins, stats.TotalLosses, stats.TotalBets)
	fmt.Fprintf(&b, "Money lost: %s\n", money(stats.TotalMoneyLost))
	fmt.Fprintf(&b, "Commission paid: %s\n", money(stats.TotalCommissionPaid))
	fmt.Fprintf(&b, "Cycles completed: %d (deepest cycle %d)\n", stats.TotalCycles, stats.HighestCycleReached)
	if activeBet != nil {
		fmt.Fprintf(&b, "\n⏳ Active bet: %s @ %s, stake %s (%s)",
			activeBet.TeamName, activeBet.Odds.StringFixed(2), money(activeBet.Stake),
			humanize.Time(activeBet.PlacedAt))
	} else {
		b.WriteString("\nNo bet in flight.")
	}
	return b.String()
}

// FormatHistory renders the most recent settled bets, newest last.
func FormatHistory(bets []tracker.SettledBet, limit int) string {
	if len(bets) == 0 {
		return "No settled bets yet."
	}
	if limit > 0 && len(bets) > limit {
		bets = bets[len(bets)-limit:]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📜 <b>Last %d bets</b>\n\n", len(bets))
	for _, sb := range bets {
		mark := "❌"
		outcome := fmt.Sprintf("-%s", money(sb.Stake))
		if sb.Settlement.Won {
			mark = "✅"
			outcome = fmt.Sprintf("+%s", money(sb.Settlement.NetProfit))
		}
		fmt.Fprintf(&b, "%s %s @ %s  %s\n", mark, sb.TeamName, sb.Odds.StringFixed(2), outcome)
	}
	return b.String()
}

// FormatCycleHistory renders completed cycles.
func FormatCycleHistory(history []ledger.CycleRecord) string {
	if len(history) == 0 {
		return "No completed cycles yet."
	}
	var b strings.Builder
	b.WriteString("🔁 <b>Cycle history</b>\n\n")
	for _, c := range history {
		if c.Result == ledger.CycleTargetReached {
			fmt.Fprintf(&b, "Cycle %d: %s after %d bets, balance %s\n",
				c.CycleNumber, c.Result, c.BetsInCycle, money(c.FinalBalance))
		} else {
			fmt.Fprintf(&b, "Cycle %d: %s after %d bets, final stake %s\n",
				c.CycleNumber, c.Result, c.BetsInCycle, money(c.FinalStake))
		}
	}
	return b.String()
}
