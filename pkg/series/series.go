// Package series turns plot payloads of the result array into normalized
// category/value series, one extractor per chart.
package series

import (
	"errors"
	"fmt"
)

var ErrUnknownChart = errors.New("unknown chart")

// Series is the normalized output of an extractor. Categories and Values
// are matched by position; every marker is aligned to Categories too.
type Series struct {
	Categories []string
	Values     []float64
	Markers    []Marker

	// Dropped counts sparse points that matched no category
	Dropped int
}

// Marker is a sparse overlay, zero where it has no point
type Marker struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s.Values)
}

// Validate checks the positional invariants of the series
func (s Series) Validate() error {
	if len(s.Categories) != len(s.Values) {
		return fmt.Errorf("series has %d categories and %d values", len(s.Categories), len(s.Values))
	}
	for _, m := range s.Markers {
		if len(m.Values) != len(s.Categories) {
			return fmt.Errorf("marker %q has %d values for %d categories", m.Name, len(m.Values), len(s.Categories))
		}
	}
	return nil
}
