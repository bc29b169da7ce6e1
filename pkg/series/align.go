package series

import (
	"slices"
	"time"

	"github.com/StudioSol/set"
)

// mergeTimeline returns the chronologically sorted union of every instant,
// truncated to the second so each entry maps to a distinct label
func mergeTimeline(groups ...[]time.Time) []time.Time {
	seconds := set.NewLinkedHashSetINT64()
	for _, group := range groups {
		for _, t := range group {
			seconds.Add(t.Unix())
		}
	}

	sorted := make([]int64, 0)
	for sec := range seconds.Iter() {
		sorted = append(sorted, sec)
	}
	slices.Sort(sorted)

	timeline := make([]time.Time, len(sorted))
	for i, sec := range sorted {
		timeline[i] = time.Unix(sec, 0)
	}
	return timeline
}

// AlignSparse places each (label, value) point at the category with the
// same label; every other slot is zero. When several points share a
// label the last one wins. Points whose label matches no category are
// dropped and counted; they are never written to another slot.
func AlignSparse(categories, labels []string, values []float64) ([]float64, int) {
	slot := make(map[string]int, len(categories))
	for i, c := range categories {
		slot[c] = i
	}

	aligned := make([]float64, len(categories))
	n := min(len(labels), len(values))
	dropped := max(len(labels), len(values)) - n

	for j := 0; j < n; j++ {
		i, ok := slot[labels[j]]
		if !ok {
			dropped++
			continue
		}
		aligned[i] = values[j]
	}

	return aligned, dropped
}

// alignCarry places dense values on their categories and fills the gaps
// with the previous value; categories before the first point take the
// first value
func alignCarry(categories, labels []string, values []float64) []float64 {
	byLabel := make(map[string]float64, len(labels))
	for j := 0; j < min(len(labels), len(values)); j++ {
		byLabel[labels[j]] = values[j]
	}

	aligned := make([]float64, len(categories))
	first := -1
	var last float64
	for i, c := range categories {
		if v, ok := byLabel[c]; ok {
			if first < 0 {
				first = i
			}
			last = v
		}
		aligned[i] = last
	}

	if first > 0 {
		for i := 0; i < first; i++ {
			aligned[i] = aligned[first]
		}
	}
	return aligned
}
