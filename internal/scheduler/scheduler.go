package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"pricepeak/internal/backtest"
	"pricepeak/internal/collector"
	"pricepeak/internal/model"
	"pricepeak/internal/notifier"
	"pricepeak/internal/portfolio"
	"pricepeak/internal/recorder"
	"pricepeak/internal/strategy"
	"pricepeak/internal/summary"
)

const sendRetries = 3

// Scheduler runs the periodic refresh and report jobs and keeps the latest
// snapshot for commands and the HTTP API.
type Scheduler struct {
	Cron       *cron.Cron
	Collector  *collector.Collector
	Portfolio  *portfolio.Manager
	Notifier   notifier.Notifier
	Recorder   recorder.Recorder
	Summarizer summary.Summarizer
	Base       collector.Request
	Ctx        context.Context

	logger *zap.Logger
	mu     sync.RWMutex
	latest *model.Snapshot
}

// NewScheduler creates a new Scheduler. base holds the pipeline parameters;
// its portfolio is replaced by the manager's allocation on every run.
func NewScheduler(ctx context.Context, col *collector.Collector, pm *portfolio.Manager, n notifier.Notifier,
	rec recorder.Recorder, sum summary.Summarizer, base collector.Request, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Collector:  col,
		Portfolio:  pm,
		Notifier:   n,
		Recorder:   rec,
		Summarizer: sum,
		Base:       base,
		Ctx:        ctx,
		logger:     logger,
	}
}

// RegisterAll registers the refresh and report jobs.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Latest returns the most recent snapshot, or nil before the first refresh.
func (s *Scheduler) Latest() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Refresh runs the pipeline with the current allocation, records the run
// and makes it the latest snapshot.
func (s *Scheduler) Refresh(ctx context.Context) (*model.Snapshot, error) {
	req := s.Base
	req.Portfolio = s.Portfolio.Get()
	snap, err := s.Collector.Collect(ctx, req)
	if err != nil {
		return nil, err
	}

	runID := recorder.NewRunID()
	if err := s.Recorder.RecordSnapshot(recorder.NewSnapshotRecord(runID, snap)); err != nil {
		s.logger.Error("record snapshot", zap.String("run", runID), zap.Error(err))
	}
	if snap.Backtest != nil {
		if err := s.Recorder.RecordBacktest(runID, snap.Backtest); err != nil {
			s.logger.Error("record backtest", zap.String("run", runID), zap.Error(err))
		}
	}
	if snap.Frontier != nil {
		if err := s.Recorder.RecordFrontier(runID, snap.Frontier); err != nil {
			s.logger.Error("record frontier", zap.String("run", runID), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
	s.logger.Info("snapshot refreshed", zap.String("run", runID))
	return snap, nil
}

// RunReportNow executes the report job immediately.
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) refreshTask() {
	s.logger.Info("running refresh task")
	if _, err := s.Refresh(s.Ctx); err != nil {
		s.logger.Error("refresh", zap.Error(err))
	}
}

func (s *Scheduler) reportTask() {
	s.logger.Info("running report task")
	snap, err := s.Refresh(s.Ctx)
	if err != nil {
		s.logger.Error("report collect", zap.Error(err))
		s.trySend("❌ Report failed: " + html.EscapeString(err.Error()))
		return
	}

	report := notifier.FormatReport(snap)
	if text, err := s.Summarize(s.Ctx, snap); err == nil {
		report += "\n🤖 <b>Commentary:</b>\n" + html.EscapeString(text) + "\n"
	} else if !errors.Is(err, summary.ErrDisabled) {
		s.logger.Warn("summary unavailable", zap.Error(err))
	}
	s.trySend(report)
}

// Summarize asks the summarizer for commentary on snap.
func (s *Scheduler) Summarize(ctx context.Context, snap *model.Snapshot) (string, error) {
	prompt, ok := summary.SnapshotPrompt(snap)
	if !ok {
		return "", fmt.Errorf("%w: nothing to summarize", model.ErrInvalidParameter)
	}
	return s.Summarizer.Summarize(ctx, prompt)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}

	switch fields[0] {
	case "/portfolio":
		return notifier.FormatPortfolio(s.Portfolio.Get())
	case "/report", "/risk", "/backtest", "/frontier", "/summary":
	default:
		return helpText
	}

	snap, err := s.current(ctx)
	if err != nil {
		return failure(err)
	}

	switch fields[0] {
	case "/report":
		return notifier.FormatReport(snap)
	case "/risk":
		if snap.MonteCarlo == nil {
			return "No risk figures: portfolio has no weight allocated."
		}
		return notifier.FormatRisk(snap.MonteCarlo)
	case "/backtest":
		return s.backtestCommand(snap, fields[1:])
	case "/frontier":
		if snap.Frontier == nil {
			return "No frontier: portfolio is empty."
		}
		return notifier.FormatFrontier(snap.Frontier)
	default:
		text, err := s.Summarize(ctx, snap)
		if err != nil {
			return failure(err)
		}
		return html.EscapeString(text)
	}
}

const helpText = "Available commands:\n" +
	"• /report\n• /portfolio\n• /risk\n• /backtest [strategy] [lookback]\n• /frontier\n• /summary"

// current returns the latest snapshot, refreshing when none exists yet.
func (s *Scheduler) current(ctx context.Context) (*model.Snapshot, error) {
	if snap := s.Latest(); snap != nil {
		return snap, nil
	}
	return s.Refresh(ctx)
}

func (s *Scheduler) backtestCommand(snap *model.Snapshot, args []string) string {
	kind, lookback := s.Base.Strategy, s.Base.Lookback
	if len(args) > 0 {
		k, err := strategy.Parse(args[0])
		if err != nil {
			return failure(err)
		}
		kind = k
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return failure(fmt.Errorf("invalid lookback %q", args[1]))
		}
		lookback = n
	}
	if kind == "" {
		kind = model.StrategyMomentum
	}
	if lookback == 0 {
		lookback = collector.DefaultLookback
	}

	res, err := backtest.Run(snap.Blended, kind, lookback)
	if err != nil {
		return failure(err)
	}
	return notifier.FormatBacktest(&res)
}

// failure renders err for an HTML message.
func failure(err error) string {
	return "❌ " + html.EscapeString(err.Error())
}

type retrySender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

func (s *Scheduler) trySend(text string) {
	var err error
	if r, ok := s.Notifier.(retrySender); ok {
		err = r.SendWithRetry(s.Ctx, text, sendRetries)
	} else {
		err = s.Notifier.Send(s.Ctx, text)
	}
	if err != nil {
		s.logger.Error("send notification", zap.Error(err))
	}
}
