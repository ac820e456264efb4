package exchange

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"StakePilot/internal/model"
)

// PaperClient simulates the exchange for dry-run mode and tests. Markets and
// outcomes are controllable, settlements are deterministic, and the balance
// is tracked locally.
type PaperClient struct {
	mu sync.Mutex

	Markets        []model.Market
	CommissionRate decimal.Decimal

	// NextWin decides the outcome of the next settlement check.
	NextWin bool
	// SettleAfter is how many settlement checks return "not settled yet"
	// before the outcome is reported.
	SettleAfter int

	balance decimal.Decimal
	pending map[string]int // bet ref -> remaining checks
}

// NewPaperClient creates a simulator seeded with an account balance.
func NewPaperClient(balance, commissionRate decimal.Decimal) *PaperClient {
	return &PaperClient{
		CommissionRate: commissionRate,
		balance:        balance,
		pending:        make(map[string]int),
	}
}

func (p *PaperClient) Name() string { return "paper" }

func (p *PaperClient) ListMarkets(maxResults, _ int) ([]model.Market, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	markets := append([]model.Market(nil), p.Markets...)
	if maxResults > 0 && len(markets) > maxResults {
		markets = markets[:maxResults]
	}
	return markets, nil
}

func (p *PaperClient) MarketBook(marketID string) (*model.Market, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.Markets {
		if p.Markets[i].ID == marketID {
			m := p.Markets[i]
			return &m, nil
		}
	}
	return nil, fmt.Errorf("paper market book %s: market not found", marketID)
}

func (p *PaperClient) PlaceBet(marketID string, selectionID int64, odds, stake decimal.Decimal) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stake.GreaterThan(p.balance) {
		return "", fmt.Errorf("paper place bet on %s: insufficient balance", marketID)
	}
	p.balance = p.balance.Sub(stake)
	ref := uuid.NewString()
	p.pending[ref] = p.SettleAfter
	return ref, nil
}

func (p *PaperClient) CheckSettlement(bet *model.BetDetails) (*model.Settlement, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	remaining, ok := p.pending[bet.BetRef]
	if !ok {
		return nil, fmt.Errorf("paper settlement: unknown bet ref %s", bet.BetRef)
	}
	if remaining > 0 {
		p.pending[bet.BetRef] = remaining - 1
		return &model.Settlement{Settled: false}, nil
	}
	delete(p.pending, bet.BetRef)

	s := &model.Settlement{Settled: true, Won: p.NextWin, SettledAt: time.Now().UTC()}
	if s.Won {
		s.GrossProfit = bet.Stake.Mul(bet.Odds.Sub(decimal.NewFromInt(1)))
		s.Commission = s.GrossProfit.Mul(p.CommissionRate)
		s.NetProfit = s.GrossProfit.Sub(s.Commission)
		p.balance = p.balance.Add(bet.Stake).Add(s.NetProfit)
	}
	s.NewBalance = p.balance
	return s, nil
}

func (p *PaperClient) AccountBalance() (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance, nil
}
