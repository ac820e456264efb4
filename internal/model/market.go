package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market statuses as reported by the exchange.
const (
	MarketOpen      = "OPEN"
	MarketSuspended = "SUSPENDED"
	MarketClosed    = "CLOSED"
	MarketSettled   = "SETTLED"
)

// PriceSize is one rung of an exchange price ladder.
type PriceSize struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// Runner is a single selection within a market, with the best available
// back and lay prices first in each ladder.
type Runner struct {
	SelectionID     int64       `json:"selection_id"`
	Name            string      `json:"name"`
	SortPriority    int         `json:"sort_priority"`
	AvailableToBack []PriceSize `json:"available_to_back"`
	AvailableToLay  []PriceSize `json:"available_to_lay"`
}

// BestBack returns the best available back price, or false if the ladder is
// empty.
func (r Runner) BestBack() (PriceSize, bool) {
	if len(r.AvailableToBack) == 0 {
		return PriceSize{}, false
	}
	return r.AvailableToBack[0], true
}

// BestLay returns the best available lay price, or false if the ladder is
// empty.
func (r Runner) BestLay() (PriceSize, bool) {
	if len(r.AvailableToLay) == 0 {
		return PriceSize{}, false
	}
	return r.AvailableToLay[0], true
}

// Market is an exchange market with its runners and traded volume.
type Market struct {
	ID           string          `json:"id"`
	EventID      string          `json:"event_id"`
	EventName    string          `json:"event_name"`
	Competition  string          `json:"competition"`
	StartTime    time.Time       `json:"start_time"`
	Status       string          `json:"status"`
	InPlay       bool            `json:"in_play"`
	TotalMatched decimal.Decimal `json:"total_matched"`
	Runners      []Runner        `json:"runners"`
}
