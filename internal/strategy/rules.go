package strategy

import (
	"pricepeak/internal/calculator"
	"pricepeak/internal/model"
)

const (
	momentumThreshold = 0.02
	reversionBand     = 0.02
)

// momentum compares the price with the one lookback steps earlier.
func momentum(prices []float64, i, lookback int) model.Signal {
	m := prices[i]/prices[i-lookback] - 1
	switch {
	case m > momentumThreshold:
		return model.SignalBuy
	case m < -momentumThreshold:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

// meanReversion buys below and sells above a ±2% band around the SMA of the
// lookback prices before i.
func meanReversion(prices []float64, i, lookback int) model.Signal {
	sma, err := calculator.CalculateSMA(prices[i-lookback:i], lookback)
	if err != nil {
		return model.SignalHold
	}
	switch {
	case prices[i] < sma*(1-reversionBand):
		return model.SignalBuy
	case prices[i] > sma*(1+reversionBand):
		return model.SignalSell
	default:
		return model.SignalHold
	}
}
