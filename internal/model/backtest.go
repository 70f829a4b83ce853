package model

import (
	"encoding/json"
	"time"
)

// StrategyKind selects the trading rule replayed by the backtester.
type StrategyKind string

const (
	StrategyMomentum      StrategyKind = "Momentum"
	StrategyMeanReversion StrategyKind = "MeanReversion"
)

// Signal is the position instruction a strategy emits for one step.
type Signal int

const (
	SignalSell Signal = -1
	SignalHold Signal = 0
	SignalBuy  Signal = 1
)

// EquityPoint is the account value at the close of one step.
type EquityPoint struct {
	Date  time.Time
	Value float64
}

func (e EquityPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Value float64 `json:"value"`
	}{e.Date.Format(DateLayout), e.Value})
}

// BacktestResult is the output of one strategy replay.
type BacktestResult struct {
	Strategy       StrategyKind  `json:"strategy"`
	Lookback       int           `json:"lookback"`
	EquityCurve    []EquityPoint `json:"equityCurve"`
	Trades         int           `json:"trades"`
	TotalReturnPct float64       `json:"totalReturn"`
	FinalValue     float64       `json:"finalValue"`
}
