package model

// Float returns a pointer to v, for populating optional indicator fields.
func Float(v float64) *float64 {
	return &v
}

// BandPosition describes where a price sits relative to its Bollinger Bands.
type BandPosition string

const (
	BandAbove   BandPosition = "above the upper band"
	BandBelow   BandPosition = "below the lower band"
	BandWithin  BandPosition = "within the bands"
	BandUnknown BandPosition = "not yet available"
)

// MarketView holds the tail values a text summary is built from.
type MarketView struct {
	Instruments  []string     `json:"instruments"`
	LastPrice    float64      `json:"lastPrice"`
	Volatility   float64      `json:"volatility"`
	Regime       Regime       `json:"regime"`
	RSI          *float64     `json:"rsi,omitempty"`
	BandPosition BandPosition `json:"bandPosition"`
	MeanForecast float64      `json:"meanForecast"`
	VaR95        float64      `json:"var95"`
}
