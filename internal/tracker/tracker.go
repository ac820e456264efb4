package tracker

import (
	"fmt"
	"sync"
	"time"

	"StakePilot/internal/model"
	"StakePilot/internal/storage"
)

// Store keys for the tracker documents.
const (
	ActiveBetFilename = "active_bet.json"
	HistoryFilename   = "bet_history.json"
)

// SettledBet is a bet plus its outcome, kept in the history document.
type SettledBet struct {
	model.BetDetails
	Settlement model.Settlement `json:"settlement"`
}

type historyDocument struct {
	Bets        []SettledBet `json:"bets"`
	LastUpdated time.Time    `json:"last_updated"`
}

// activeBetDocument wraps the active bet; an empty document means no bet is
// in flight, matching the shape the previous system wrote.
type activeBetDocument struct {
	model.BetDetails
}

// Tracker persists the single in-flight bet and the settled-bet history.
// At most one bet may be active at a time; the strategy never exposes more
// than one wager to the market.
type Tracker struct {
	mu    sync.Mutex
	store *storage.Store
}

// NewTracker returns a Tracker over the given store.
func NewTracker(store *storage.Store) *Tracker {
	return &Tracker{store: store}
}

// ActiveBet returns the in-flight bet, or nil when none is active.
func (t *Tracker) ActiveBet() (*model.BetDetails, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeBetLocked()
}

func (t *Tracker) activeBetLocked() (*model.BetDetails, error) {
	var doc activeBetDocument
	ok, err := t.store.Read(ActiveBetFilename, &doc)
	if err != nil {
		return nil, err
	}
	if !ok || doc.MarketID == "" {
		return nil, nil
	}
	bet := doc.BetDetails
	return &bet, nil
}

// HasActiveBet reports whether a bet is currently in flight.
func (t *Tracker) HasActiveBet() (bool, error) {
	bet, err := t.ActiveBet()
	return bet != nil, err
}

// RecordPlacement stores bet as the active bet. It fails if another bet is
// already in flight; the caller decides the one-at-a-time policy, this is
// the backstop.
func (t *Tracker) RecordPlacement(bet *model.BetDetails) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	active, err := t.activeBetLocked()
	if err != nil {
		return err
	}
	if active != nil {
		return fmt.Errorf("record placement: bet already active on market %s", active.MarketID)
	}
	return t.store.Write(ActiveBetFilename, activeBetDocument{BetDetails: *bet})
}

// RecordSettlement clears the active bet and appends it with its outcome to
// the history document.
func (t *Tracker) RecordSettlement(bet *model.BetDetails, s *model.Settlement) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var doc historyDocument
	if _, err := t.store.Read(HistoryFilename, &doc); err != nil {
		return err
	}
	doc.Bets = append(doc.Bets, SettledBet{BetDetails: *bet, Settlement: *s})
	doc.LastUpdated = time.Now().UTC()
	if err := t.store.Write(HistoryFilename, doc); err != nil {
		return err
	}
	return t.store.Write(ActiveBetFilename, activeBetDocument{})
}

// History returns every settled bet in settlement order.
func (t *Tracker) History() ([]SettledBet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var doc historyDocument
	if _, err := t.store.Read(HistoryFilename, &doc); err != nil {
		return nil, err
	}
	return doc.Bets, nil
}

// Reset clears the active bet and the history. Used alongside a ledger reset.
func (t *Tracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Write(ActiveBetFilename, activeBetDocument{}); err != nil {
		return err
	}
	return t.store.Write(HistoryFilename, historyDocument{Bets: []SettledBet{}, LastUpdated: time.Now().UTC()})
}
