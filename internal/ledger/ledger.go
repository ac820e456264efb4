package ledger

import (
	"sync"

	"github.com/shopspring/decimal"

	"StakePilot/internal/storage"
)

// Ledger is the single entry point for recording betting events and reading
// derived state. One mutex serializes every mutation, including the
// read-then-maybe-append target check: concurrent load-modify-store cycles on
// the event log would silently lose events, so this is a strict serialization
// requirement, not an optimization.
type Ledger struct {
	mu     sync.Mutex
	log    *EventLog
	cached *Stats // derived stats valid until the next append
}

// NewLedger creates a Ledger over an event log persisted in store.
func NewLedger(store *storage.Store) *Ledger {
	return &Ledger{log: NewEventLog(store)}
}

// RecordBetPlaced appends a BET_PLACED event and returns freshly derived stats.
func (l *Ledger) RecordBetPlaced(bet BetPlaced) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.log.Append(bet); err != nil {
		return Stats{}, err
	}
	l.cached = nil
	return l.deriveLocked()
}

// RecordBetResult appends a BET_WON or BET_LOST event for a settled bet and
// returns freshly derived stats. profit is the net profit after commission;
// the gross profit stored on wins is profit + commission.
func (l *Ledger) RecordBetResult(bet BetPlaced, won bool, profit, newBalance, commission decimal.Decimal) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var payload Payload
	if won {
		balance := newBalance
		payload = BetWon{
			MarketID:    bet.MarketID,
			SelectionID: bet.SelectionID,
			Stake:       bet.Stake,
			Odds:        bet.Odds,
			GrossProfit: profit.Add(commission),
			NetProfit:   profit,
			Commission:  commission,
			NewBalance:  &balance,
		}
	} else {
		payload = BetLost{
			MarketID:    bet.MarketID,
			SelectionID: bet.SelectionID,
			Stake:       bet.Stake,
			Odds:        bet.Odds,
		}
	}

	if _, err := l.log.Append(payload); err != nil {
		return Stats{}, err
	}
	l.cached = nil
	return l.deriveLocked()
}

// CheckTargetReached appends a TARGET_REACHED event and returns true when
// balance meets the target; otherwise it returns false with no side effects.
// The check and the append happen under one lock so two callers can never
// both observe target-not-yet-reached and double-append.
func (l *Ledger) CheckTargetReached(balance, target decimal.Decimal) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if balance.LessThan(target) {
		return false, nil
	}
	if _, err := l.log.Append(TargetReached{Balance: balance, Target: target}); err != nil {
		return false, err
	}
	l.cached = nil
	return true, nil
}

// NextStake returns the compound-strategy stake for the next wager.
func (l *Ledger) NextStake() (decimal.Decimal, error) {
	stats, err := l.Stats()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return NextStake(stats), nil
}

// Stats returns the current derived stats, recomputing by full replay when
// the cache is cold. Correctness never depends on the cache.
func (l *Ledger) Stats() (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.deriveLocked()
}

// Events returns the raw event log in append order.
func (l *Ledger) Events() ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.log.ReadAll()
}

// Reset discards all history, seeds the log with a single SYSTEM_RESET event
// carrying startingStake, and returns the derived post-reset stats.
func (l *Ledger) Reset(startingStake decimal.Decimal) (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.log.Reset(startingStake); err != nil {
		return Stats{}, err
	}
	l.cached = nil
	return l.deriveLocked()
}

func (l *Ledger) deriveLocked() (Stats, error) {
	if l.cached != nil {
		return cloneStats(*l.cached), nil
	}
	events, err := l.log.ReadAll()
	if err != nil {
		return Stats{}, err
	}
	stats := Derive(events)
	l.cached = &stats
	return cloneStats(stats), nil
}

// cloneStats copies the history slice so callers cannot mutate the cache.
func cloneStats(s Stats) Stats {
	if s.CycleHistory != nil {
		s.CycleHistory = append([]CycleRecord(nil), s.CycleHistory...)
	}
	return s
}
