package metric

import (
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// Interval is a bootstrap confidence interval of a statistic
type Interval struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Measure computes one statistic of a sample
type Measure func(values []float64) float64

// MeanMeasure is the arithmetic mean
func MeanMeasure(values []float64) float64 {
	return stat.Mean(values, nil)
}

// Bootstrap resamples values with replacement rounds times and returns the
// confidence interval of measure, e.g. confidence 0.95 for the 95% interval.
func Bootstrap(values []float64, measure Measure, rounds int, confidence float64) Interval {
	if len(values) == 0 || rounds <= 0 {
		return Interval{}
	}

	estimates := make([]float64, rounds)
	resample := make([]float64, len(values))
	for i := range estimates {
		for j := range resample {
			resample[j] = lo.Sample(values)
		}
		estimates[i] = measure(resample)
	}
	slices.Sort(estimates)

	tail := (1 - confidence) / 2
	mean, stdDev := stat.MeanStdDev(estimates, nil)
	return Interval{
		Lower:  stat.Quantile(tail, stat.LinInterp, estimates, nil),
		Upper:  stat.Quantile(1-tail, stat.LinInterp, estimates, nil),
		Mean:   mean,
		StdDev: stdDev,
	}
}
