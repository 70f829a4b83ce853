// Package portfolio blends instrument series by weight and keeps the
// current allocation.
package portfolio

import (
	"fmt"

	"pricepeak/internal/model"
)

// Blend combines per-instrument series into one weighted series. Weights are
// normalized by their actual total. Date and regime come from the reference
// instrument. An indicator missing on an instrument contributes 0 to that
// index's weighted value; the blended field is nil only when no instrument
// had it.
func Blend(seriesByID map[string]model.Series, weights model.Portfolio, reference string) (model.Series, error) {
	for id, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight %v for %s", model.ErrInvalidParameter, w, id)
		}
	}
	total := weights.Total()
	if total == 0 {
		return model.Series{}, nil
	}

	ref, ok := seriesByID[reference]
	if !ok {
		return nil, fmt.Errorf("%w: reference instrument %q has no series", model.ErrAggregationMismatch, reference)
	}

	ids := weights.Instruments()
	for _, id := range ids {
		s, ok := seriesByID[id]
		if !ok {
			continue
		}
		if err := aligned(ref, s); err != nil {
			return nil, fmt.Errorf("%w: %s vs %s: %v", model.ErrAggregationMismatch, id, reference, err)
		}
	}

	out := make(model.Series, len(ref))
	for i := range ref {
		var (
			pt                 model.PricePoint
			rsi, upper, lower  float64
			hasRSI, hasU, hasL bool
		)
		for _, id := range ids {
			s, ok := seriesByID[id]
			if !ok {
				continue
			}
			f := weights[id] / total
			src := s[i]
			pt.Price += src.Price * f
			pt.Volatility += src.Volatility * f
			pt.OHLC.Open += src.OHLC.Open * f
			pt.OHLC.High += src.OHLC.High * f
			pt.OHLC.Low += src.OHLC.Low * f
			pt.OHLC.Close += src.OHLC.Close * f
			if src.RSI != nil {
				rsi += *src.RSI * f
				hasRSI = true
			}
			if src.BollingerUpper != nil {
				upper += *src.BollingerUpper * f
				hasU = true
			}
			if src.BollingerLower != nil {
				lower += *src.BollingerLower * f
				hasL = true
			}
		}
		if hasRSI {
			pt.RSI = model.Float(rsi)
		}
		if hasU {
			pt.BollingerUpper = model.Float(upper)
		}
		if hasL {
			pt.BollingerLower = model.Float(lower)
		}
		pt.Date = ref[i].Date
		pt.Regime = ref[i].Regime
		out[i] = pt
	}
	return out, nil
}

func aligned(ref, s model.Series) error {
	if len(s) != len(ref) {
		return fmt.Errorf("length %d != %d", len(s), len(ref))
	}
	for i := range s {
		if !s[i].Date.Equal(ref[i].Date) {
			return fmt.Errorf("date %s != %s at index %d",
				s[i].Date.Format(model.DateLayout), ref[i].Date.Format(model.DateLayout), i)
		}
	}
	return nil
}
