// Package backtest replays a long/flat strategy over a price series.
package backtest

import (
	"fmt"

	"pricepeak/internal/model"
	"pricepeak/internal/strategy"
)

// InitialCash is the starting account value.
const InitialCash = 10000.0

// Run walks series from index lookback, going fully long on a buy signal
// while holding cash and fully flat on a sell signal while holding units.
// Equity is recorded at every step.
func Run(series model.Series, kind model.StrategyKind, lookback int) (model.BacktestResult, error) {
	if lookback <= 0 {
		return model.BacktestResult{}, fmt.Errorf("%w: lookback must be positive, got %d", model.ErrInvalidParameter, lookback)
	}
	if lookback >= len(series) {
		return model.BacktestResult{}, fmt.Errorf("%w: lookback %d needs more than %d points", model.ErrInvalidParameter, lookback, len(series))
	}
	if _, err := strategy.Parse(string(kind)); err != nil {
		return model.BacktestResult{}, err
	}

	prices := series.Prices()
	cash, position := InitialCash, 0.0
	res := model.BacktestResult{
		Strategy:    kind,
		Lookback:    lookback,
		EquityCurve: make([]model.EquityPoint, 0, len(series)-lookback),
	}

	for i := lookback; i < len(series); i++ {
		price := prices[i]
		signal, err := strategy.Evaluate(kind, prices, i, lookback)
		if err != nil {
			return model.BacktestResult{}, err
		}
		switch {
		case signal == model.SignalBuy && cash > 0:
			position = cash / price
			cash = 0
			res.Trades++
		case signal == model.SignalSell && position > 0:
			cash = position * price
			position = 0
			res.Trades++
		}
		res.EquityCurve = append(res.EquityCurve, model.EquityPoint{
			Date:  series[i].Date,
			Value: cash + position*price,
		})
	}

	final := res.EquityCurve[len(res.EquityCurve)-1].Value
	res.FinalValue = model.Round2(final)
	res.TotalReturnPct = model.Round2((final/InitialCash - 1) * 100)
	return res, nil
}
