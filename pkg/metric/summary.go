// Package metric describes the values of a chart series.
package metric

import (
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics over the finite values of a series
type Summary struct {
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P05    float64 `json:"p05"`
	P50    float64 `json:"p50"`
	P95    float64 `json:"p95"`

	// Positive and Negative count values above and below zero
	Positive int `json:"positive"`
	Negative int `json:"negative"`
}

// Describe summarizes values. It returns false when there is no finite value.
func Describe(values []float64) (Summary, bool) {
	finite := lo.Filter(values, func(v float64, _ int) bool {
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	})
	if len(finite) == 0 {
		return Summary{}, false
	}

	sorted := slices.Clone(finite)
	slices.Sort(sorted)

	summary := Summary{
		Count:    len(sorted),
		Sum:      floats.Sum(sorted),
		Min:      sorted[0],
		Max:      sorted[len(sorted)-1],
		P05:      stat.Quantile(0.05, stat.Empirical, sorted, nil),
		P50:      stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95:      stat.Quantile(0.95, stat.Empirical, sorted, nil),
		Positive: lo.CountBy(sorted, func(v float64) bool { return v > 0 }),
		Negative: lo.CountBy(sorted, func(v float64) bool { return v < 0 }),
	}

	if len(sorted) > 1 {
		summary.Mean, summary.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		summary.Mean = sorted[0]
	}

	return summary, true
}

// Finite reports whether every statistic is a finite number. Sums and
// deviations of values near the float64 limit overflow to Inf or NaN.
func (s Summary) Finite() bool {
	for _, v := range []float64{s.Sum, s.Mean, s.StdDev, s.Min, s.Max, s.P05, s.P50, s.P95} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
