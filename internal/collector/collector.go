package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pricepeak/internal/backtest"
	"pricepeak/internal/calculator"
	"pricepeak/internal/frontier"
	"pricepeak/internal/generator"
	"pricepeak/internal/model"
	"pricepeak/internal/news"
	"pricepeak/internal/portfolio"
	"pricepeak/internal/random"
	"pricepeak/internal/risk"
)

// Request parameterizes one pipeline pass. Zero values fall back to defaults.
type Request struct {
	Instruments []string
	Days        int
	Portfolio   model.Portfolio
	Strategy    model.StrategyKind
	Lookback    int
	Horizon     int
	Paths       int
	Draws       int
	Workers     int
}

const (
	DefaultDays     = 504
	DefaultLookback = 20
)

func (r Request) withDefaults() Request {
	if len(r.Instruments) == 0 {
		r.Instruments = generator.Universe
	}
	if r.Days == 0 {
		r.Days = DefaultDays
	}
	if r.Strategy == "" {
		r.Strategy = model.StrategyMomentum
	}
	if r.Lookback == 0 {
		r.Lookback = DefaultLookback
	}
	if r.Horizon == 0 {
		r.Horizon = risk.DefaultHorizon
	}
	if r.Paths == 0 {
		r.Paths = risk.DefaultPaths
	}
	if r.Draws == 0 {
		r.Draws = frontier.DefaultDraws
	}
	return r
}

// Collector orchestrates series generation and every analytic built on it.
type Collector struct {
	Fetcher Fetcher
	src     random.Source
	now     func() time.Time
	logger  *zap.Logger
}

// NewCollector creates a Collector. src seeds every private stream the
// pipeline hands out.
func NewCollector(fetcher Fetcher, src random.Source, logger *zap.Logger) *Collector {
	return &Collector{Fetcher: fetcher, src: src, now: time.Now, logger: logger}
}

// FetchAll fetches and annotates every instrument in parallel, one private
// stream per instrument, re-assembled by identifier.
func (c *Collector) FetchAll(ctx context.Context, ids []string, days int) (map[string]model.Series, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: day count must be positive, got %d", model.ErrInvalidParameter, days)
	}
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: empty instrument set", model.ErrInvalidParameter)
	}
	for _, id := range ids {
		if !generator.Known(id) {
			c.logger.Warn("unknown instrument, using default parameters",
				zap.String("instrument", id), zap.String("fetcher", c.Fetcher.Name()))
		}
	}

	sources := random.Split(c.src, len(ids))
	results := make([]model.Series, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := c.Fetcher.FetchSeries(id, days, sources[i])
			if err != nil {
				return fmt.Errorf("fetch %s: %w", id, err)
			}
			results[i] = calculator.Annotate(s)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]model.Series, len(ids))
	for i, id := range ids {
		out[id] = results[i]
	}
	return out, nil
}

// Collect runs the full pipeline: fetch and annotate, blend the portfolio,
// then Monte Carlo and backtest on the blended series and the frontier over
// the portfolio's instruments.
func (c *Collector) Collect(ctx context.Context, req Request) (*model.Snapshot, error) {
	req = req.withDefaults()
	started := c.now()

	ids := append(append([]string(nil), req.Instruments...), req.Portfolio.Instruments()...)
	series, err := c.FetchAll(ctx, ids, req.Days)
	if err != nil {
		return nil, err
	}

	ref := Reference(series, req.Portfolio)
	blended, err := portfolio.Blend(series, req.Portfolio, ref)
	if err != nil {
		return nil, fmt.Errorf("blend portfolio: %w", err)
	}

	// Private streams for the simulations, split in a fixed order.
	streams := random.Split(c.src, 3)
	snap := &model.Snapshot{
		GeneratedAt: started,
		Days:        req.Days,
		Portfolio:   req.Portfolio.Clone(),
		Reference:   ref,
		Instruments: series,
		Blended:     blended,
		News:        news.Headlines(req.Portfolio.Instruments(), streams[2]),
	}

	if last, ok := blended.Last(); ok {
		mc, err := risk.NewSimulator(streams[0]).SimulateParallel(ctx, last.Price, last.Volatility, req.Horizon, req.Paths, req.Workers)
		if err != nil {
			return nil, fmt.Errorf("monte carlo: %w", err)
		}
		snap.MonteCarlo = &mc

		bt, err := backtest.Run(blended, req.Strategy, req.Lookback)
		if err != nil {
			return nil, fmt.Errorf("backtest: %w", err)
		}
		snap.Backtest = &bt
	}

	if held := req.Portfolio.Instruments(); len(held) > 0 {
		fr, err := frontier.NewSampler(streams[1]).Sample(held, req.Draws)
		if err != nil {
			return nil, fmt.Errorf("frontier: %w", err)
		}
		snap.Frontier = &fr
	}

	c.logger.Info("snapshot collected",
		zap.Int("instruments", len(series)),
		zap.Int("days", req.Days),
		zap.String("reference", ref),
		zap.Int("blended", len(blended)),
		zap.Duration("elapsed", c.now().Sub(started)),
	)
	return snap, nil
}

// Reference picks the instrument whose dates and regimes label the blend:
// the default instrument when generated, otherwise the first held one.
func Reference(series map[string]model.Series, p model.Portfolio) string {
	if _, ok := series[generator.DefaultInstrument]; ok {
		return generator.DefaultInstrument
	}
	for _, id := range p.Instruments() {
		if _, ok := series[id]; ok {
			return id
		}
	}
	return generator.DefaultInstrument
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
