// Package summary builds the market commentary prompt and hands it to an
// optional text-generation collaborator.
package summary

import (
	"fmt"
	"strings"

	"pricepeak/internal/calculator"
	"pricepeak/internal/model"
)

// View extracts the tail values a summary is built from.
func View(instruments []string, last model.PricePoint, mc model.MonteCarloResult) model.MarketView {
	return model.MarketView{
		Instruments:  instruments,
		LastPrice:    last.Price,
		Volatility:   last.Volatility,
		Regime:       last.Regime,
		RSI:          last.RSI,
		BandPosition: calculator.BandPosition(last),
		MeanForecast: mc.Mean,
		VaR95:        mc.VaR95,
	}
}

// BuildPrompt renders the commentary request for v.
func BuildPrompt(v model.MarketView) string {
	rsi := "n/a"
	if v.RSI != nil {
		rsi = fmt.Sprintf("%.2f", *v.RSI)
	}

	var b strings.Builder
	b.WriteString("Analyze the following financial data for a commodity portfolio and provide a brief, professional summary (2-3 sentences).\n")
	fmt.Fprintf(&b, "- Portfolio Assets: %s\n", strings.Join(v.Instruments, ", "))
	fmt.Fprintf(&b, "- Current Price: %s\n", model.Money(v.LastPrice))
	fmt.Fprintf(&b, "- Current Daily Volatility: %.2f%%\n", v.Volatility)
	fmt.Fprintf(&b, "- Market Regime: %s\n", v.Regime)
	fmt.Fprintf(&b, "- RSI (14-Day): %s\n", rsi)
	fmt.Fprintf(&b, "- Bollinger Bands: The price is currently %s.\n", v.BandPosition)
	fmt.Fprintf(&b, "- Monte Carlo Mean 30-Day Forecast: %s\n", model.Money(v.MeanForecast))
	fmt.Fprintf(&b, "- 30-Day Value at Risk (95%%): %s\n", model.Money(v.VaR95))
	b.WriteString("\nSynthesize these points into a coherent market commentary.")
	return b.String()
}

// SnapshotPrompt builds the prompt for the blended tail of snap. ok is false
// when the portfolio has no weight allocated.
func SnapshotPrompt(snap *model.Snapshot) (prompt string, ok bool) {
	last, ok := snap.Blended.Last()
	if !ok || snap.MonteCarlo == nil {
		return "", false
	}
	return BuildPrompt(View(snap.Portfolio.Instruments(), last, *snap.MonteCarlo)), true
}
