package calculator

import "errors"

// BollingerPeriod is the window length: the current point plus 20 before it.
const BollingerPeriod = 21

// CalculateBollinger returns mean ± 2 population standard deviations over
// the trailing period prices.
func CalculateBollinger(prices []float64, period int) (upper, lower float64, err error) {
	if period <= 0 {
		return 0, 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, 0, errors.New("not enough data for bollinger calculation")
	}
	window := prices[len(prices)-period:]
	sma := Mean(window)
	sd := StdDev(window, sma)
	return sma + 2*sd, sma - 2*sd, nil
}
