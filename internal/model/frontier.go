package model

// FrontierPoint is one sampled portfolio: x = volatility %, y = return %, z = sharpe proxy.
type FrontierPoint struct {
	VolatilityPct float64 `json:"x"`
	ReturnPct     float64 `json:"y"`
	Sharpe        float64 `json:"z"`
}

// FrontierResult is the sampled cloud plus its two notable members.
type FrontierResult struct {
	Instruments   []string        `json:"instruments"`
	Points        []FrontierPoint `json:"points"`
	MinVolatility FrontierPoint   `json:"minVolPortfolio"`
	MaxSharpe     FrontierPoint   `json:"maxSharpePortfolio"`
}
