package calculator

import "errors"

// RSIPeriod is the number of day-over-day deltas in the RSI window.
const RSIPeriod = 14

// flatRS stands in for RS when the window holds no losses. It yields
// RSI ≈ 99.0099 rather than 100.
const flatRS = 100.0

// CalculateRSI computes a simple-average RSI over the last period deltas.
// Requires at least period+1 prices.
func CalculateRSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period+1 {
		return 0, errors.New("not enough data for RSI calculation")
	}
	window := prices[len(prices)-period-1:]

	var gains, losses float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	rs := flatRS
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100.0 - 100.0/(1.0+rs), nil
}
