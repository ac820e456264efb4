package recorder

import (
	"StakePilot/internal/ledger"
	"StakePilot/internal/model"
)

// Recorder persists betting history for external analysis (dashboards,
// spreadsheets). It is an analytics sink, never a source of truth: the event
// log owns the state, and a recorder failure must not fail the workflow.
type Recorder interface {
	RecordPlacement(bet *model.BetDetails, stats *ledger.Stats) error
	RecordSettlement(bet *model.BetDetails, s *model.Settlement, stats *ledger.Stats) error
	RecordCycle(rec *ledger.CycleRecord) error
	Close() error
}
