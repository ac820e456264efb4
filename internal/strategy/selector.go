package strategy

import (
	"sort"

	"github.com/shopspring/decimal"

	"StakePilot/internal/model"
)

// Criteria are the selection filters applied to markets and runners.
type Criteria struct {
	MinOdds         decimal.Decimal
	MaxOdds         decimal.Decimal
	MinLiquidity    decimal.Decimal
	LiquidityFactor decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// MaxSpreadPercent returns the widest acceptable back/lay spread for the
// given odds level. Short-priced runners trade tight; longshots are allowed
// a wider book.
func MaxSpreadPercent(odds decimal.Decimal) decimal.Decimal {
	switch {
	case !odds.IsPositive():
		return hundred
	case odds.LessThan(decimal.NewFromInt(2)):
		return decimal.RequireFromString("0.75")
	case odds.LessThan(decimal.NewFromInt(4)):
		return decimal.RequireFromString("1.5")
	case odds.LessThan(decimal.NewFromInt(10)):
		return decimal.RequireFromString("2.5")
	default:
		return decimal.RequireFromString("3.5")
	}
}

// SpreadAcceptable reports whether the gap between the best back and lay
// prices is within the band for the back price. A crossed or empty book is
// never acceptable.
func SpreadAcceptable(back, lay decimal.Decimal) bool {
	if !back.IsPositive() || !lay.IsPositive() || lay.LessThan(back) {
		return false
	}
	spreadPct := lay.Sub(back).Div(back).Mul(hundred)
	return spreadPct.LessThanOrEqual(MaxSpreadPercent(back))
}

// AnalyzeMarket applies the selection filters to a single market book and
// returns the best backable opportunity at the given stake, or nil when the
// market offers none. Only the top two favourites are considered; among
// those that pass, the highest odds win.
func AnalyzeMarket(m *model.Market, stake decimal.Decimal, c Criteria) *model.Opportunity {
	if m.TotalMatched.LessThan(c.MinLiquidity) {
		return nil
	}
	if m.Status != model.MarketOpen && !m.InPlay {
		return nil
	}
	if len(m.Runners) == 0 {
		return nil
	}

	type candidate struct {
		runner model.Runner
		back   model.PriceSize
	}
	var candidates []candidate
	for _, r := range m.Runners {
		back, ok := r.BestBack()
		if !ok || !back.Price.IsPositive() {
			continue
		}
		if lay, ok := r.BestLay(); ok && lay.Price.IsPositive() && !SpreadAcceptable(back.Price, lay.Price) {
			continue
		}
		candidates = append(candidates, candidate{runner: r, back: back})
	}

	// Favourites are the shortest-priced runners.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].back.Price.LessThan(candidates[j].back.Price)
	})
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}

	required := stake.Mul(c.LiquidityFactor)
	var best *model.Opportunity
	for _, cand := range candidates {
		odds := cand.back.Price
		if odds.LessThan(c.MinOdds) || odds.GreaterThan(c.MaxOdds) {
			continue
		}
		if cand.back.Size.LessThan(required) {
			continue
		}
		if best == nil || odds.GreaterThan(best.Odds) {
			best = &model.Opportunity{
				MarketID:        m.ID,
				EventID:         m.EventID,
				EventName:       m.EventName,
				Competition:     m.Competition,
				SelectionID:     cand.runner.SelectionID,
				TeamName:        cand.runner.Name,
				Odds:            odds,
				AvailableVolume: cand.back.Size,
				MarketStartTime: m.StartTime,
				InPlay:          m.InPlay,
			}
		}
	}
	return best
}

// RankMarkets orders markets by traded volume, busiest first, and keeps the
// top n. The input slice is not modified.
func RankMarkets(markets []model.Market, n int) []model.Market {
	ranked := append([]model.Market(nil), markets...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalMatched.GreaterThan(ranked[j].TotalMatched)
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
