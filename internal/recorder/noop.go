package recorder

import (
	"StakePilot/internal/ledger"
	"StakePilot/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPlacement(_ *model.BetDetails, _ *ledger.Stats) error { return nil }
func (n *NoopRecorder) RecordSettlement(_ *model.BetDetails, _ *model.Settlement, _ *ledger.Stats) error {
	return nil
}
func (n *NoopRecorder) RecordCycle(_ *ledger.CycleRecord) error { return nil }
func (n *NoopRecorder) Close() error                            { return nil }
