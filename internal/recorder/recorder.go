package recorder

import (
	"github.com/google/uuid"

	"pricepeak/internal/model"
)

// SnapshotRecord is the persisted summary of one pipeline pass.
type SnapshotRecord struct {
	RunID     string
	Snapshot  *model.Snapshot
	LastPrice float64
	LastRSI   *float64
	Regime    model.Regime
}

// Recorder persists historical runs for later analysis.
type Recorder interface {
	RecordSnapshot(rec *SnapshotRecord) error
	RecordBacktest(runID string, res *model.BacktestResult) error
	RecordFrontier(runID string, res *model.FrontierResult) error
	Close() error
}

// NewSnapshotRecord extracts the summary fields of snap under runID.
func NewSnapshotRecord(runID string, snap *model.Snapshot) *SnapshotRecord {
	rec := &SnapshotRecord{RunID: runID, Snapshot: snap}
	if last, ok := snap.Blended.Last(); ok {
		rec.LastPrice = last.Price
		rec.LastRSI = last.RSI
		rec.Regime = last.Regime
	}
	return rec
}

// NewRunID returns a fresh identifier shared by every record of one run.
func NewRunID() string {
	return uuid.NewString()
}
