package recorder

import "pricepeak/internal/model"

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSnapshot(_ *SnapshotRecord) error                 { return nil }
func (n *NoopRecorder) RecordBacktest(_ string, _ *model.BacktestResult) error { return nil }
func (n *NoopRecorder) RecordFrontier(_ string, _ *model.FrontierResult) error { return nil }
func (n *NoopRecorder) Close() error                                           { return nil }
