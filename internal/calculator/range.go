package calculator

import (
	"errors"
	"math"

	"pricepeak/internal/model"
)

// Range returns the smallest and largest value.
func Range(values []float64) (low, high float64, err error) {
	if len(values) == 0 {
		return 0, 0, errors.New("no values provided")
	}
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, v := range values {
		if v > high {
			high = v
		}
		if v < low {
			low = v
		}
	}
	return low, high, nil
}

// BandPosition places a point's price relative to its Bollinger Bands.
func BandPosition(p model.PricePoint) model.BandPosition {
	if p.BollingerUpper == nil || p.BollingerLower == nil {
		return model.BandUnknown
	}
	switch {
	case p.Price > *p.BollingerUpper:
		return model.BandAbove
	case p.Price < *p.BollingerLower:
		return model.BandBelow
	default:
		return model.BandWithin
	}
}
