// Package frontier samples random portfolio weightings to sketch a
// risk/return cloud. It is not a covariance-aware optimizer.
package frontier

import (
	"fmt"
	"math"

	"pricepeak/internal/model"
	"pricepeak/internal/random"
)

// DefaultDraws is the number of sampled portfolios.
const DefaultDraws = 2000

// Sampler draws portfolios from an injected random source.
type Sampler struct {
	src random.Source
}

// NewSampler creates a Sampler.
func NewSampler(src random.Source) *Sampler {
	return &Sampler{src: src}
}

// Sample draws the given number of weightings over ids. Per draw the
// weights are drawn first, then one expected return per instrument, then
// one risk term per instrument.
func (s *Sampler) Sample(ids []string, draws int) (model.FrontierResult, error) {
	if len(ids) == 0 {
		return model.FrontierResult{}, fmt.Errorf("%w: empty instrument set", model.ErrInvalidParameter)
	}
	if draws <= 0 {
		return model.FrontierResult{}, fmt.Errorf("%w: draws must be positive, got %d", model.ErrInvalidParameter, draws)
	}

	res := model.FrontierResult{
		Instruments: append([]string(nil), ids...),
		Points:      make([]model.FrontierPoint, draws),
	}
	weights := make([]float64, len(ids))
	for d := range res.Points {
		res.Points[d] = s.draw(weights)
	}

	res.MinVolatility, res.MaxSharpe = res.Points[0], res.Points[0]
	for _, p := range res.Points[1:] {
		if p.VolatilityPct < res.MinVolatility.VolatilityPct {
			res.MinVolatility = p
		}
		if p.Sharpe > res.MaxSharpe.Sharpe {
			res.MaxSharpe = p
		}
	}
	return res, nil
}

func (s *Sampler) draw(weights []float64) model.FrontierPoint {
	total := 0.0
	for i := range weights {
		weights[i] = s.src.Uniform()
		total += weights[i]
	}
	for i := range weights {
		if total > 0 {
			weights[i] /= total
		} else {
			weights[i] = 1 / float64(len(weights))
		}
	}

	ret := 0.0
	for _, w := range weights {
		ret += w * (s.src.Uniform()*0.2 - 0.05)
	}
	variance := 0.0
	for _, w := range weights {
		risk := s.src.Uniform() * 0.3
		variance += w * w * risk * risk
	}
	vol := math.Sqrt(variance)

	sharpe := 0.0
	if vol != 0 {
		sharpe = ret / vol
	}
	return model.FrontierPoint{
		VolatilityPct: vol * 100,
		ReturnPct:     ret * 100,
		Sharpe:        sharpe,
	}
}
