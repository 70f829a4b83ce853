package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// Regime is the categorical market state attached to every generated point.
type Regime string

const (
	RegimeBull    Regime = "Bull"
	RegimeBear    Regime = "Bear"
	RegimeNeutral Regime = "Neutral"
)

// OHLC is a single day's open/high/low/close. It encodes as a 4-element array.
type OHLC struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

func (o OHLC) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{o.Open, o.High, o.Low, o.Close})
}

func (o *OHLC) UnmarshalJSON(data []byte) error {
	var arr [4]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return fmt.Errorf("decode ohlc: %w", err)
	}
	o.Open, o.High, o.Low, o.Close = arr[0], arr[1], arr[2], arr[3]
	return nil
}

// PricePoint is one trading day of a series. Indicator fields stay nil until
// the series holds enough history to compute them.
type PricePoint struct {
	Date           time.Time `json:"-"`
	Price          float64   `json:"price"`
	OHLC           OHLC      `json:"ohlc"`
	Volatility     float64   `json:"volatility"`
	Regime         Regime    `json:"regime"`
	BollingerUpper *float64  `json:"bollingerUpper,omitempty"`
	BollingerLower *float64  `json:"bollingerLower,omitempty"`
	RSI            *float64  `json:"rsi,omitempty"`
}

type pricePointJSON struct {
	Date string `json:"date"`
	pricePointAlias
}

type pricePointAlias PricePoint

func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(pricePointJSON{
		Date:            p.Date.Format(DateLayout),
		pricePointAlias: pricePointAlias(p),
	})
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var raw pricePointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw.Date, err)
	}
	*p = PricePoint(raw.pricePointAlias)
	p.Date = d
	return nil
}

// Series is a chronologically ordered run of price points, one per calendar day.
type Series []PricePoint

// Prices returns the price column.
func (s Series) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Price
	}
	return out
}

// Last returns the most recent point, or false for an empty series.
func (s Series) Last() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}
