// Package generator synthesizes regime-switching daily price paths.
package generator

import (
	"math"
	"time"

	"pricepeak/internal/model"
	"pricepeak/internal/random"
)

const regimeDrift = 0.001

// State is carried from one simulated day to the next.
type State struct {
	Regime        model.Regime
	RegimeCounter float64
	Volatility    float64
	LastClose     float64
}

// InitialState returns the state before the first simulated day.
func InitialState(p Params) State {
	return State{
		Regime:     model.RegimeNeutral,
		Volatility: p.BaseVol,
		LastClose:  p.InitialPrice,
	}
}

// Generator produces synthetic series from an injected random source.
type Generator struct {
	src        random.Source
	now        func() time.Time
	strictOHLC bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the "today" the series ends on.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithStrictOHLC widens high/low so they always bracket open and close.
func WithStrictOHLC(strict bool) Option {
	return func(g *Generator) { g.strictOHLC = strict }
}

// New creates a Generator.
func New(src random.Source, opts ...Option) *Generator {
	g := &Generator{src: src, now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns numDays points for the instrument, oldest first, ending
// yesterday relative to the generator's clock. numDays <= 0 yields an empty series.
func (g *Generator) Generate(id string, numDays int) model.Series {
	if numDays <= 0 {
		return model.Series{}
	}
	params := Lookup(id)
	t := g.now().UTC()
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	series := make(model.Series, 0, numDays)
	state := InitialState(params)
	for i := numDays; i > 0; i-- {
		var pt model.PricePoint
		state, pt = g.Step(state, params, numDays)
		pt.Date = today.AddDate(0, 0, -i)
		series = append(series, pt)
	}
	return series
}

// Step advances one day. Draw order: regime (value, duration), shock, high, low.
func (g *Generator) Step(s State, p Params, numDays int) (State, model.PricePoint) {
	s.RegimeCounter--
	if s.RegimeCounter <= 0 {
		u := g.src.Uniform()
		switch {
		case u < 0.2:
			s.Regime = model.RegimeBull
			s.RegimeCounter = g.src.Uniform()*40 + 20
		case u < 0.4:
			s.Regime = model.RegimeBear
			s.RegimeCounter = g.src.Uniform()*40 + 20
		default:
			s.Regime = model.RegimeNeutral
			s.RegimeCounter = g.src.Uniform()*30 + 15
		}
	}

	shock := g.src.Uniform() - 0.5
	s.Volatility = math.Sqrt(0.1*p.BaseVol*p.BaseVol + 0.8*s.Volatility*s.Volatility + 0.1*math.Pow(shock*10, 2))

	dailyReturn := p.Trend/float64(numDays) + shock*(s.Volatility/100)
	switch s.Regime {
	case model.RegimeBull:
		dailyReturn += regimeDrift
	case model.RegimeBear:
		dailyReturn -= regimeDrift
	}

	open := s.LastClose
	high := open * (1 + g.src.Uniform()*s.Volatility/100)
	low := open * (1 - g.src.Uniform()*s.Volatility/100)
	close := open * (1 + dailyReturn)
	if close <= 0 {
		close = 0.01
	}
	if g.strictOHLC {
		high = math.Max(high, math.Max(open, close))
		low = math.Min(low, math.Min(open, close))
	}
	s.LastClose = close

	return s, model.PricePoint{
		Price: model.Round2(close),
		OHLC: model.OHLC{
			Open:  model.Round2(open),
			High:  model.Round2(high),
			Low:   model.Round2(low),
			Close: model.Round2(close),
		},
		Volatility: model.Round2(s.Volatility),
		Regime:     s.Regime,
	}
}
