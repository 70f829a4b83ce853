package notifier

import (
	"fmt"
	"html"
	"strings"

	"pricepeak/internal/calculator"
	"pricepeak/internal/model"
)

// FormatReport formats a pipeline snapshot into a Telegram message.
func FormatReport(snap *model.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>PricePeak report</b> | %s\n\n", snap.GeneratedAt.Format(model.DateLayout)))

	last, ok := snap.Blended.Last()
	if !ok {
		b.WriteString("Portfolio has no weight allocated.\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Portfolio price: %s (%s)\n", model.Money(last.Price), last.Date.Format(model.DateLayout)))
	b.WriteString(fmt.Sprintf("Volatility: %.2f%% | Regime: %s\n", last.Volatility, last.Regime))
	if last.RSI != nil {
		b.WriteString(fmt.Sprintf("RSI(14): %.2f\n", *last.RSI))
	}
	b.WriteString(fmt.Sprintf("Bollinger: %s\n", calculator.BandPosition(last)))

	if snap.MonteCarlo != nil {
		b.WriteString("\n")
		b.WriteString(FormatRisk(snap.MonteCarlo))
	}
	if snap.Backtest != nil {
		b.WriteString("\n")
		b.WriteString(FormatBacktest(snap.Backtest))
	}
	if len(snap.News) > 0 {
		b.WriteString("\n📰 <b>Headlines:</b>\n")
		for _, h := range snap.News {
			b.WriteString(fmt.Sprintf("  [%s] %s\n", h.Sentiment, html.EscapeString(h.Headline)))
		}
	}
	return b.String()
}

// FormatPortfolio formats the current allocation.
func FormatPortfolio(p model.Portfolio) string {
	var b strings.Builder
	b.WriteString("📦 <b>Portfolio</b>\n\n")
	ids := p.Instruments()
	if len(ids) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, id := range ids {
		b.WriteString(fmt.Sprintf("%s: %.0f%%\n", html.EscapeString(id), p[id]))
	}
	b.WriteString(fmt.Sprintf("Allocated: %.0f%%\n", p.Total()))
	return b.String()
}

// FormatRisk formats a Monte Carlo result.
func FormatRisk(mc *model.MonteCarloResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🎲 <b>Monte Carlo</b> (%d paths, %d days)\n", mc.Paths, mc.Horizon))
	b.WriteString(fmt.Sprintf("Mean forecast: %s\n", model.Money(mc.Mean)))
	b.WriteString(fmt.Sprintf("5th percentile: %s\n", model.Money(mc.P5)))
	b.WriteString(fmt.Sprintf("VaR 95%%: %s | CVaR 95%%: %s\n", model.Money(mc.VaR95), model.Money(mc.CVaR95)))
	return b.String()
}

// FormatBacktest formats a backtest result.
func FormatBacktest(bt *model.BacktestResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Backtest</b> %s (lookback %d)\n", bt.Strategy, bt.Lookback))
	b.WriteString(fmt.Sprintf("Final value: %s\n", model.Money(bt.FinalValue)))
	b.WriteString(fmt.Sprintf("Total return: %+.2f%% | Trades: %d\n", bt.TotalReturnPct, bt.Trades))
	return b.String()
}

// FormatFrontier formats the notable frontier portfolios.
func FormatFrontier(fr *model.FrontierResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧭 <b>Frontier</b> %s (%d draws)\n", html.EscapeString(strings.Join(fr.Instruments, ", ")), len(fr.Points)))
	b.WriteString(fmt.Sprintf("Min volatility: vol %.2f%% return %.2f%%\n", fr.MinVolatility.VolatilityPct, fr.MinVolatility.ReturnPct))
	b.WriteString(fmt.Sprintf("Max sharpe: %.2f (vol %.2f%% return %.2f%%)\n", fr.MaxSharpe.Sharpe, fr.MaxSharpe.VolatilityPct, fr.MaxSharpe.ReturnPct))
	return b.String()
}
