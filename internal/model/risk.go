package model

// Bucket is one histogram bar of simulated terminal prices.
type Bucket struct {
	Label string `json:"name"`
	Count int    `json:"count"`
}

// MonteCarloResult summarizes a terminal price distribution.
type MonteCarloResult struct {
	CurrentPrice float64  `json:"currentPrice"`
	Horizon      int      `json:"horizon"`
	Paths        int      `json:"paths"`
	P5           float64  `json:"p5"`
	Mean         float64  `json:"mean"`
	VaR95        float64  `json:"var95"`
	CVaR95       float64  `json:"cvar95"`
	Histogram    []Bucket `json:"histogram"`
}
