package calculation

import (
	"math"
	"sort"
)

// nearestRank indexes a sorted slice at floor(p/100*(n-1)). No interpolation.
func nearestRank(sorted []float64, percentile float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[nearestRankIndex(len(sorted), percentile)]
}

func nearestRankIndex(n int, percentile float64) int {
	idx := int(math.Floor(percentile / 100 * float64(n-1)))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// sortedCopy returns an ascending copy so callers can keep their original order
func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}

// runningStats accumulates mean and variance in one pass (Welford)
type runningStats struct {
	n    int
	mean float64
	m2   float64
}

func (s *runningStats) add(x float64) {
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (x - s.mean)
}

// stdDev is the sample standard deviation
func (s *runningStats) stdDev() float64 {
	if s.n < 2 {
		return 0
	}
	return math.Sqrt(s.m2 / float64(s.n-1))
}

// drawdownTracker follows the running peak of a series
type drawdownTracker struct {
	peak float64
	max  float64
}

func newDrawdownTracker(start float64) drawdownTracker {
	return drawdownTracker{peak: start}
}

func (d *drawdownTracker) observe(value float64) {
	if value > d.peak {
		d.peak = value
		return
	}
	if d.peak > 0 {
		if dd := (d.peak - value) / d.peak; dd > d.max {
			d.max = dd
		}
	}
}
