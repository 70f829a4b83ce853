package model

import "sort"

// Portfolio maps instrument identifiers to percent weights (0-100).
type Portfolio map[string]float64

// Total returns the sum of all weights present.
func (p Portfolio) Total() float64 {
	total := 0.0
	for _, w := range p {
		total += w
	}
	return total
}

// Instruments returns the instrument identifiers in sorted order.
func (p Portfolio) Instruments() []string {
	ids := make([]string, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent copy.
func (p Portfolio) Clone() Portfolio {
	out := make(Portfolio, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
