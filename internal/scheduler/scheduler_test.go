package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pricepeak/internal/collector"
	"pricepeak/internal/generator"
	"pricepeak/internal/model"
	"pricepeak/internal/portfolio"
	"pricepeak/internal/random"
	"pricepeak/internal/recorder"
	"pricepeak/internal/summary"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureNotifier) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

type fixedSummarizer struct {
	text string
	err  error
}

func (f fixedSummarizer) Summarize(context.Context, string) (string, error) {
	return f.text, f.err
}

type countingRecorder struct {
	recorder.NoopRecorder
	snapshots, backtests, frontiers int
}

func (c *countingRecorder) RecordSnapshot(*recorder.SnapshotRecord) error { c.snapshots++; return nil }
func (c *countingRecorder) RecordBacktest(string, *model.BacktestResult) error {
	c.backtests++
	return nil
}
func (c *countingRecorder) RecordFrontier(string, *model.FrontierResult) error {
	c.frontiers++
	return nil
}

func newTestScheduler(t *testing.T, initial model.Portfolio, sum summary.Summarizer) (*Scheduler, *captureNotifier, *countingRecorder) {
	t.Helper()
	ctx := context.Background()
	now := func() time.Time { return time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) }
	col := collector.NewCollector(collector.NewSyntheticFetcher(generator.WithClock(now)), random.New(11), zap.NewNop())
	pm, err := portfolio.NewManager(ctx, &portfolio.MemoryStore{}, initial, zap.NewNop())
	require.NoError(t, err)

	n := &captureNotifier{}
	rec := &countingRecorder{}
	base := collector.Request{
		Instruments: []string{"Crude Oil", "Gold"},
		Days:        80,
		Paths:       100,
		Draws:       50,
	}
	return NewScheduler(ctx, col, pm, n, rec, sum, base, zap.NewNop()), n, rec
}

func TestRefresh(t *testing.T) {
	s, _, rec := newTestScheduler(t, model.Portfolio{"Gold": 60, "Crude Oil": 40}, summary.NoopSummarizer{})
	assert.Nil(t, s.Latest())

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, s.Latest())
	assert.Len(t, snap.Blended, 80)
	assert.Equal(t, 1, rec.snapshots)
	assert.Equal(t, 1, rec.backtests)
	assert.Equal(t, 1, rec.frontiers)
}

func TestReportTask(t *testing.T) {
	s, n, _ := newTestScheduler(t, model.Portfolio{"Gold": 100}, fixedSummarizer{text: "Gold is steady."})
	s.RunReportNow()

	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "PricePeak report")
	assert.Contains(t, n.sent[0], "Gold is steady.")
}

func TestReportEscapesCommentary(t *testing.T) {
	s, n, _ := newTestScheduler(t, model.Portfolio{"Gold": 100}, fixedSummarizer{text: "Tracks the S&P 500 <5% apart."})
	s.RunReportNow()

	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "Tracks the S&amp;P 500 &lt;5% apart.")
	assert.NotContains(t, n.sent[0], "S&P")

	reply := s.HandleCommand(context.Background(), "/summary")
	assert.Equal(t, "Tracks the S&amp;P 500 &lt;5% apart.", reply)
}

func TestHandleCommandEscapesErrors(t *testing.T) {
	s, _, _ := newTestScheduler(t, model.Portfolio{"Gold": 100}, summary.NoopSummarizer{})
	reply := s.HandleCommand(context.Background(), "/backtest <b>")
	assert.Contains(t, reply, "&lt;b&gt;")
	assert.NotContains(t, reply, "<b>")
}

func TestReportTaskWithoutSummary(t *testing.T) {
	s, n, _ := newTestScheduler(t, model.Portfolio{"Gold": 100}, summary.NoopSummarizer{})
	s.RunReportNow()

	require.Len(t, n.sent, 1)
	assert.NotContains(t, n.sent[0], "Commentary")
}

func TestHandleCommand(t *testing.T) {
	s, _, _ := newTestScheduler(t, model.Portfolio{"Gold": 70, "Crude Oil": 30}, fixedSummarizer{text: "summary text"})
	ctx := context.Background()

	tests := []struct {
		command string
		want    string
	}{
		{"/portfolio", "Gold: 70%"},
		{"/report", "PricePeak report"},
		{"/risk", "Monte Carlo"},
		{"/backtest", "Backtest</b> Momentum (lookback 20)"},
		{"/backtest meanreversion 10", "Backtest</b> MeanReversion (lookback 10)"},
		{"/backtest momentum 500", "❌"},
		{"/backtest carry", "unknown strategy"},
		{"/backtest momentum x", "invalid lookback"},
		{"/frontier", "Frontier"},
		{"/summary", "summary text"},
		{"hello", "Available commands"},
		{"", "Available commands"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			assert.Contains(t, s.HandleCommand(ctx, tt.command), tt.want)
		})
	}
}

func TestHandleCommandEmptyPortfolio(t *testing.T) {
	s, _, _ := newTestScheduler(t, model.Portfolio{"Gold": 0}, fixedSummarizer{err: errors.New("unused")})
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/risk"), "no weight allocated")
	assert.Contains(t, s.HandleCommand(ctx, "/summary"), "nothing to summarize")
}

func TestRegisterAll(t *testing.T) {
	s, _, _ := newTestScheduler(t, model.Portfolio{"Gold": 100}, summary.NoopSummarizer{})
	assert.NoError(t, s.RegisterAll("0 */15 * * * *", "0 0 8 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)
	assert.Error(t, s.RegisterAll("not a cron", "0 0 8 * * *"))
}
