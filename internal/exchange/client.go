package exchange

import (
	"github.com/shopspring/decimal"

	"StakePilot/internal/model"
)

// Client is the boundary to the betting exchange. The ledger core never
// talks to the exchange itself; the service layer drives a Client and feeds
// settled results into the ledger.
type Client interface {
	// ListMarkets returns today's candidate markets starting within
	// hoursAhead hours, at most maxResults of them.
	ListMarkets(maxResults, hoursAhead int) ([]model.Market, error)
	// MarketBook returns a fresh view of one market with current prices.
	MarketBook(marketID string) (*model.Market, error)
	// PlaceBet backs a selection and returns the exchange bet reference.
	PlaceBet(marketID string, selectionID int64, odds, stake decimal.Decimal) (string, error)
	// CheckSettlement reports the outcome of a placed bet. Settled is false
	// while the market is still in play or awaiting settlement.
	CheckSettlement(bet *model.BetDetails) (*model.Settlement, error)
	// AccountBalance returns the available account balance.
	AccountBalance() (decimal.Decimal, error)
	Name() string
}
