// Package risk forward-simulates terminal prices and derives VaR/CVaR.
package risk

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"pricepeak/internal/calculator"
	"pricepeak/internal/model"
	"pricepeak/internal/random"
)

const (
	DefaultHorizon = 30
	DefaultPaths   = 500

	tradingDays    = 252
	tailPercentile = 0.05
	bucketCount    = 10
)

// Simulator runs uniform-shock Monte Carlo paths.
type Simulator struct {
	src random.Source
}

// NewSimulator creates a Simulator drawing from src.
func NewSimulator(src random.Source) *Simulator {
	return &Simulator{src: src}
}

// Simulate runs paths independent paths of horizon steps from price and
// summarizes the terminal distribution.
func (s *Simulator) Simulate(price, volPct float64, horizon, paths int) (model.MonteCarloResult, error) {
	if err := validate(price, volPct, horizon, paths); err != nil {
		return model.MonteCarloResult{}, err
	}
	terminal := make([]float64, paths)
	step := stepScale(volPct, horizon)
	for i := range terminal {
		terminal[i] = walk(s.src, price, step, horizon)
	}
	return summarize(price, horizon, terminal), nil
}

// SimulateParallel splits the paths over workers goroutines, each with a
// private stream split from the simulator's source. Terminal prices are
// re-assembled by path index before aggregation.
func (s *Simulator) SimulateParallel(ctx context.Context, price, volPct float64, horizon, paths, workers int) (model.MonteCarloResult, error) {
	if err := validate(price, volPct, horizon, paths); err != nil {
		return model.MonteCarloResult{}, err
	}
	if workers <= 1 {
		return s.Simulate(price, volPct, horizon, paths)
	}
	if workers > paths {
		workers = paths
	}

	terminal := make([]float64, paths)
	step := stepScale(volPct, horizon)
	sources := random.Split(s.src, workers)
	chunk := (paths + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, paths)
		src := sources[w]
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				terminal[i] = walk(src, price, step, horizon)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.MonteCarloResult{}, fmt.Errorf("simulate paths: %w", err)
	}
	return summarize(price, horizon, terminal), nil
}

func validate(price, volPct float64, horizon, paths int) error {
	switch {
	case price <= 0 || math.IsNaN(price):
		return fmt.Errorf("%w: current price must be positive, got %v", model.ErrInvalidParameter, price)
	case volPct < 0 || math.IsNaN(volPct):
		return fmt.Errorf("%w: volatility must be non-negative, got %v", model.ErrInvalidParameter, volPct)
	case horizon <= 0:
		return fmt.Errorf("%w: horizon must be positive, got %d", model.ErrInvalidParameter, horizon)
	case paths <= 0:
		return fmt.Errorf("%w: path count must be positive, got %d", model.ErrInvalidParameter, paths)
	}
	return nil
}

func stepScale(volPct float64, horizon int) float64 {
	return (volPct / 100) * (1 / math.Sqrt(float64(tradingDays)/float64(horizon)))
}

func walk(src random.Source, price, step float64, horizon int) float64 {
	for j := 0; j < horizon; j++ {
		price *= 1 + (src.Uniform()-0.5)*step
	}
	return price
}

func summarize(price float64, horizon int, terminal []float64) model.MonteCarloResult {
	sort.Float64s(terminal)
	n := len(terminal)
	rank := int(math.Floor(float64(n) * tailPercentile))

	res := model.MonteCarloResult{
		CurrentPrice: price,
		Horizon:      horizon,
		Paths:        n,
		P5:           terminal[rank],
		Mean:         calculator.Mean(terminal),
	}
	res.VaR95 = price - res.P5
	if tail := terminal[:rank]; len(tail) > 0 {
		res.CVaR95 = price - calculator.Mean(tail)
	}
	res.Histogram = histogram(terminal)
	return res
}

// histogram splits [min,max] into equal buckets. Each bucket is half-open
// except the last, which also holds max, so counts always sum to len(sorted).
func histogram(sorted []float64) []model.Bucket {
	lo, hi, _ := calculator.Range(sorted)
	width := (hi - lo) / bucketCount

	buckets := make([]model.Bucket, bucketCount)
	for i := range buckets {
		buckets[i].Label = model.Money(lo + float64(i)*width)
	}
	for _, v := range sorted {
		idx := 0
		if width > 0 {
			idx = min(int((v-lo)/width), bucketCount-1)
		}
		buckets[idx].Count++
	}
	return buckets
}
