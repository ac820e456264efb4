package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"StakePilot/internal/storage"
)

// LogFilename is the store key holding the event log document.
const LogFilename = "betting_events.json"

// resetReason is written into SYSTEM_RESET events triggered by operators.
// Kept verbatim for compatibility with documents from the previous system.
const resetReason = "manual reset"

// EventLog is the append-only persistence for betting events. The whole log
// lives in one document: every append loads it, extends it in memory, and
// writes it back through the atomic store. EventLog itself is not safe for
// concurrent use; the Ledger serializes all access to it.
type EventLog struct {
	store *storage.Store
	key   string
}

type logDocument struct {
	Events      []Event   `json:"events"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewEventLog returns an EventLog persisted under LogFilename in store.
func NewEventLog(store *storage.Store) *EventLog {
	return &EventLog{store: store, key: LogFilename}
}

// ReadAll returns every event in append order. A log that has never been
// written yields an empty slice, not an error.
func (l *EventLog) ReadAll() ([]Event, error) {
	var doc logDocument
	ok, err := l.store.Read(l.key, &doc)
	if err != nil {
		if errors.Is(err, storage.ErrCorruptDocument) && !errors.Is(err, ErrCorruptLog) {
			return nil, fmt.Errorf("%w: %v", ErrCorruptLog, err)
		}
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return doc.Events, nil
}

// Append stamps and persists a new event built from payload, returning the
// fully-formed event. The id is the 1-based position in the log.
func (l *EventLog) Append(payload Payload) (Event, error) {
	events, err := l.ReadAll()
	if err != nil {
		return Event{}, err
	}
	ev := Event{
		ID:        int64(len(events)) + 1,
		Type:      payload.eventType(),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	if err := l.write(append(events, ev)); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Reset discards all history and replaces the log with a single SYSTEM_RESET
// event carrying the new initial stake. This is the only supported deletion.
func (l *EventLog) Reset(initialStake decimal.Decimal) (Event, error) {
	ev := Event{
		ID:        1,
		Type:      EventSystemReset,
		Timestamp: time.Now().UTC(),
		Payload:   SystemReset{InitialStake: initialStake, Reason: resetReason},
	}
	if err := l.write([]Event{ev}); err != nil {
		return Event{}, err
	}
	return ev, nil
}

func (l *EventLog) write(events []Event) error {
	doc := logDocument{Events: events, LastUpdated: time.Now().UTC()}
	if err := l.store.Write(l.key, doc); err != nil {
		return fmt.Errorf("persist event log: %w", err)
	}
	return nil
}
