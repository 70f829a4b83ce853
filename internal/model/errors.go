package model

import "errors"

var (
	// ErrInvalidParameter marks a request the core refuses to compute.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrAggregationMismatch marks series that cannot be blended index by index.
	ErrAggregationMismatch = errors.New("aggregation mismatch")
)
