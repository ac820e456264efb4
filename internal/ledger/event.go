package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ErrCorruptLog indicates the persisted event log could not be parsed into
// valid events.
var ErrCorruptLog = errors.New("ledger: corrupt event log")

// EventType identifies the kind of a ledger event.
type EventType string

const (
	EventSystemReset   EventType = "SYSTEM_RESET"
	EventBetPlaced     EventType = "BET_PLACED"
	EventBetWon        EventType = "BET_WON"
	EventBetLost       EventType = "BET_LOST"
	EventTargetReached EventType = "TARGET_REACHED"
)

// Payload is the closed set of per-event payload types. Keeping the union
// closed lets Derive handle every field it reads at compile time instead of
// digging through loose maps.
type Payload interface {
	eventType() EventType
}

// SystemReset wipes all prior history and restarts cycle numbering at 1.
type SystemReset struct {
	InitialStake decimal.Decimal `json:"initial_stake"`
	Reason       string          `json:"reason"`
}

// BetPlaced records a wager offered to the exchange.
type BetPlaced struct {
	MarketID    string          `json:"market_id"`
	SelectionID int64           `json:"selection_id"`
	EventName   string          `json:"event_name,omitempty"`
	TeamName    string          `json:"team_name,omitempty"`
	Odds        decimal.Decimal `json:"odds"`
	Stake       decimal.Decimal `json:"stake"`
	BetRef      string          `json:"bet_ref,omitempty"`
}

// BetWon records a winning settlement. NewBalance is the exchange-reported
// account balance after settlement; it is optional because older documents
// only carried the profit figures.
type BetWon struct {
	MarketID    string           `json:"market_id"`
	SelectionID int64            `json:"selection_id"`
	Stake       decimal.Decimal  `json:"stake"`
	Odds        decimal.Decimal  `json:"odds"`
	GrossProfit decimal.Decimal  `json:"gross_profit"`
	NetProfit   decimal.Decimal  `json:"net_profit"`
	Commission  decimal.Decimal  `json:"commission"`
	NewBalance  *decimal.Decimal `json:"new_balance,omitempty"`
}

// BetLost records a losing settlement. The stake is gone.
type BetLost struct {
	MarketID    string          `json:"market_id"`
	SelectionID int64           `json:"selection_id"`
	Stake       decimal.Decimal `json:"stake"`
	Odds        decimal.Decimal `json:"odds"`
}

// TargetReached records that the account balance met the configured target,
// ending the cycle in profit.
type TargetReached struct {
	Balance decimal.Decimal `json:"balance"`
	Target  decimal.Decimal `json:"target"`
}

func (SystemReset) eventType() EventType   { return EventSystemReset }
func (BetPlaced) eventType() EventType     { return EventBetPlaced }
func (BetWon) eventType() EventType        { return EventBetWon }
func (BetLost) eventType() EventType       { return EventBetLost }
func (TargetReached) eventType() EventType { return EventTargetReached }

// Event is an immutable log entry. IDs are 1-based positions in the log and
// are never reused except through a wholesale reset.
type Event struct {
	ID        int64
	Type      EventType
	Timestamp time.Time
	Payload   Payload
}

type wireEvent struct {
	ID        json.RawMessage `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// MarshalJSON writes the stable document shape {id, type, timestamp, data}.
func (e Event) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	id, err := json.Marshal(e.ID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireEvent{
		ID:        id,
		Type:      e.Type,
		Timestamp: e.Timestamp.UTC(),
		Data:      data,
	})
}

// UnmarshalJSON accepts ids as either integers or strings; documents written
// by the previous system used string ids.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	id, err := parseEventID(w.ID)
	if err != nil {
		return fmt.Errorf("%w: event id %s: %v", ErrCorruptLog, w.ID, err)
	}

	payload, err := decodePayload(w.Type, w.Data)
	if err != nil {
		return err
	}

	e.ID = id
	e.Type = w.Type
	e.Timestamp = w.Timestamp.UTC()
	e.Payload = payload
	return nil
}

func parseEventID(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing id")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(s, 10, 64)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func decodePayload(t EventType, data json.RawMessage) (Payload, error) {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	var (
		payload Payload
		err     error
	)
	switch t {
	case EventSystemReset:
		var p SystemReset
		err = json.Unmarshal(data, &p)
		payload = p
	case EventBetPlaced:
		var p BetPlaced
		err = json.Unmarshal(data, &p)
		payload = p
	case EventBetWon:
		var p BetWon
		err = json.Unmarshal(data, &p)
		payload = p
	case EventBetLost:
		var p BetLost
		err = json.Unmarshal(data, &p)
		payload = p
	case EventTargetReached:
		var p TargetReached
		err = json.Unmarshal(data, &p)
		payload = p
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrCorruptLog, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s payload: %v", ErrCorruptLog, t, err)
	}
	return payload, nil
}
