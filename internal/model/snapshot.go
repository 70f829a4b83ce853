package model

import "time"

// Snapshot is one full pass of the analytics pipeline.
type Snapshot struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Days        int               `json:"days"`
	Portfolio   Portfolio         `json:"portfolio"`
	Reference   string            `json:"reference"`
	Instruments map[string]Series `json:"instruments"`
	Blended     Series            `json:"blended"`
	MonteCarlo  *MonteCarloResult `json:"monteCarlo,omitempty"`
	Backtest    *BacktestResult   `json:"backtest,omitempty"`
	Frontier    *FrontierResult   `json:"frontier,omitempty"`
	News        []Headline        `json:"news"`
}
