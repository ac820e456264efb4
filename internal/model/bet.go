package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetDetails describes a single back bet from placement to settlement.
type BetDetails struct {
	BetRef          string          `json:"bet_ref"`
	MarketID        string          `json:"market_id"`
	EventID         string          `json:"event_id"`
	EventName       string          `json:"event_name"`
	Competition     string          `json:"competition"`
	SelectionID     int64           `json:"selection_id"`
	TeamName        string          `json:"team_name"`
	Odds            decimal.Decimal `json:"odds"`
	Stake           decimal.Decimal `json:"stake"`
	MarketStartTime time.Time       `json:"market_start_time"`
	InPlay          bool            `json:"in_play"`
	PlacedAt        time.Time       `json:"placed_at"`
}

// Settlement is the outcome of a settled bet as reported by the exchange.
// GrossProfit, Commission and NetProfit are zero for losses.
type Settlement struct {
	Settled     bool            `json:"settled"`
	Won         bool            `json:"won"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Commission  decimal.Decimal `json:"commission"`
	NetProfit   decimal.Decimal `json:"net_profit"`
	NewBalance  decimal.Decimal `json:"new_balance"`
	SettledAt   time.Time       `json:"settled_at"`
}

// Opportunity is a runner that passed every selection filter and is worth
// backing at the given stake.
type Opportunity struct {
	MarketID        string          `json:"market_id"`
	EventID         string          `json:"event_id"`
	EventName       string          `json:"event_name"`
	Competition     string          `json:"competition"`
	SelectionID     int64           `json:"selection_id"`
	TeamName        string          `json:"team_name"`
	Odds            decimal.Decimal `json:"odds"`
	AvailableVolume decimal.Decimal `json:"available_volume"`
	MarketStartTime time.Time       `json:"market_start_time"`
	InPlay          bool            `json:"in_play"`
}
