package collector

import (
	"fmt"

	"pricepeak/internal/generator"
	"pricepeak/internal/model"
	"pricepeak/internal/random"
)

// Fetcher supplies the raw series of one instrument. src is a stream owned
// by the caller for this call only.
type Fetcher interface {
	FetchSeries(id string, days int, src random.Source) (model.Series, error)
	Name() string
}

// SyntheticFetcher generates regime-switching series.
type SyntheticFetcher struct {
	Options []generator.Option
}

// NewSyntheticFetcher creates a SyntheticFetcher.
func NewSyntheticFetcher(opts ...generator.Option) *SyntheticFetcher {
	return &SyntheticFetcher{Options: opts}
}

func (f *SyntheticFetcher) Name() string { return "synthetic" }

func (f *SyntheticFetcher) FetchSeries(id string, days int, src random.Source) (model.Series, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: negative day count %d", model.ErrInvalidParameter, days)
	}
	return generator.New(src, f.Options...).Generate(id, days), nil
}

// StaticFetcher serves fixed series, trimmed to the most recent days points.
type StaticFetcher struct {
	Data map[string]model.Series
}

func (f *StaticFetcher) Name() string { return "static" }

func (f *StaticFetcher) FetchSeries(id string, days int, _ random.Source) (model.Series, error) {
	s, ok := f.Data[id]
	if !ok {
		return nil, fmt.Errorf("no series for %q", id)
	}
	if days >= 0 && days < len(s) {
		s = s[len(s)-days:]
	}
	return append(model.Series(nil), s...), nil
}
