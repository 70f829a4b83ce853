package generator

// Params are the starting conditions of one instrument.
type Params struct {
	InitialPrice float64
	Trend        float64 // drift spread over the whole horizon
	BaseVol      float64 // percent
}

// DefaultInstrument is the fallback for unknown identifiers and the
// usual blend reference.
const DefaultInstrument = "Crude Oil"

var table = map[string]Params{
	"Crude Oil":   {InitialPrice: 85, Trend: 0.1, BaseVol: 2},
	"Gold":        {InitialPrice: 1950, Trend: 0.03, BaseVol: 0.8},
	"Copper":      {InitialPrice: 4.2, Trend: 0.05, BaseVol: 2.5},
	"Silver":      {InitialPrice: 24, Trend: 0.04, BaseVol: 1.5},
	"Natural Gas": {InitialPrice: 2.8, Trend: -0.1, BaseVol: 4},
	"Corn":        {InitialPrice: 480, Trend: 0.02, BaseVol: 1.8},
	"Wheat":       {InitialPrice: 600, Trend: 0.01, BaseVol: 2.2},
	"Soybeans":    {InitialPrice: 1300, Trend: 0.03, BaseVol: 2.0},
}

// Universe lists the known instruments in display order.
var Universe = []string{"Crude Oil", "Gold", "Copper", "Silver", "Natural Gas", "Corn", "Wheat", "Soybeans"}

// Lookup returns the parameters for id, falling back to the default set.
func Lookup(id string) Params {
	if p, ok := table[id]; ok {
		return p
	}
	return table[DefaultInstrument]
}

// Known reports whether id has its own parameter set.
func Known(id string) bool {
	_, ok := table[id]
	return ok
}
