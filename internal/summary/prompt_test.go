package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"pricepeak/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	last := model.PricePoint{
		Price:          101.5,
		Volatility:     2.346,
		Regime:         model.RegimeBear,
		RSI:            model.Float(28.4),
		BollingerUpper: model.Float(110),
		BollingerLower: model.Float(102),
	}
	mc := model.MonteCarloResult{Mean: 100.25, VaR95: 4.5}

	v := View([]string{"Crude Oil", "Gold"}, last, mc)
	assert.Equal(t, model.BandBelow, v.BandPosition)

	prompt := BuildPrompt(v)
	assert.Contains(t, prompt, "Portfolio Assets: Crude Oil, Gold")
	assert.Contains(t, prompt, "Current Price: $101.50")
	assert.Contains(t, prompt, "Volatility: 2.35%")
	assert.Contains(t, prompt, "Market Regime: Bear")
	assert.Contains(t, prompt, "RSI (14-Day): 28.40")
	assert.Contains(t, prompt, "currently below the lower band.")
	assert.Contains(t, prompt, "Forecast: $100.25")
	assert.Contains(t, prompt, "Value at Risk (95%): $4.50")
}

func TestBuildPrompt_MissingIndicators(t *testing.T) {
	prompt := BuildPrompt(View(nil, model.PricePoint{Price: 3}, model.MonteCarloResult{}))
	assert.Contains(t, prompt, "RSI (14-Day): n/a")
	assert.Contains(t, prompt, "not yet available")
}

func TestNoopSummarizer(t *testing.T) {
	_, err := NoopSummarizer{}.Summarize(context.Background(), "x")
	assert.True(t, errors.Is(err, ErrDisabled))
}

func TestSnapshotPrompt(t *testing.T) {
	_, ok := SnapshotPrompt(&model.Snapshot{})
	assert.False(t, ok)

	snap := &model.Snapshot{
		Portfolio:  model.Portfolio{"Gold": 100},
		Blended:    model.Series{{Price: 1950, Volatility: 1.2, Regime: model.RegimeBear}},
		MonteCarlo: &model.MonteCarloResult{Mean: 1940, VaR95: 60},
	}
	prompt, ok := SnapshotPrompt(snap)
	assert.True(t, ok)
	assert.Contains(t, prompt, "Gold")
}
