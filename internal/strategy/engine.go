// Package strategy holds the long/flat trading rules replayed by the backtester.
package strategy

import (
	"fmt"
	"strings"

	"pricepeak/internal/model"
)

// Kinds lists the supported strategies.
var Kinds = []model.StrategyKind{model.StrategyMomentum, model.StrategyMeanReversion}

// Parse resolves a strategy name, case-insensitively.
func Parse(name string) (model.StrategyKind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(name, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown strategy %q", model.ErrInvalidParameter, name)
}

// Evaluate returns the signal of kind at index i. The caller guarantees
// lookback <= i < len(prices).
func Evaluate(kind model.StrategyKind, prices []float64, i, lookback int) (model.Signal, error) {
	switch kind {
	case model.StrategyMomentum:
		return momentum(prices, i, lookback), nil
	case model.StrategyMeanReversion:
		return meanReversion(prices, i, lookback), nil
	default:
		return model.SignalHold, fmt.Errorf("%w: unknown strategy %q", model.ErrInvalidParameter, kind)
	}
}
