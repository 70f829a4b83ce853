// Package calculator derives technical indicators from price series.
package calculator

import "pricepeak/internal/model"

// Annotate returns a copy of series with Bollinger Bands set from index 20
// and RSI from index 14. Earlier points keep nil indicator fields.
func Annotate(series model.Series) model.Series {
	out := make(model.Series, len(series))
	copy(out, series)
	prices := series.Prices()

	for i := range out {
		history := prices[:i+1]
		if upper, lower, err := CalculateBollinger(history, BollingerPeriod); err == nil {
			out[i].BollingerUpper = model.Float(model.Round2(upper))
			out[i].BollingerLower = model.Float(model.Round2(lower))
		} else {
			out[i].BollingerUpper, out[i].BollingerLower = nil, nil
		}
		if rsi, err := CalculateRSI(history, RSIPeriod); err == nil {
			out[i].RSI = model.Float(model.Round2(rsi))
		} else {
			out[i].RSI = nil
		}
	}
	return out
}
