package analytics

import (
	"math"
	"sort"

	"lpr-service/internal/model"
)

// Sample holds a numeric sample sorted once, so the usual p50/p75/p90/
// p95/p99 battery does not re-sort on every query.
type Sample struct {
	sorted []float64
}

// NewSample copies and sorts the values. The input slice is not
// modified.
func NewSample(values []float64) Sample {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Sample{sorted: sorted}
}

func (s Sample) Len() int { return len(s.sorted) }

// PercentileOf returns the percentile rank (0-100) of v within the
// sample, using midpoint ranking: equal values contribute half their
// weight. NaN on an empty sample; callers must treat that as "no
// percentile available", not zero.
func (s Sample) PercentileOf(v float64) float64 {
	n := len(s.sorted)
	if n == 0 {
		return math.NaN()
	}

	below := sort.SearchFloat64s(s.sorted, v)
	upTo := sort.Search(n, func(i int) bool { return s.sorted[i] > v })
	equal := upTo - below

	return 100 * (float64(below) + 0.5*float64(equal)) / float64(n)
}

// ValueAt returns the sample value at the given percentile rank (0-100),
// linearly interpolated between neighbours. It is the inverse of
// PercentileOf for values drawn from the sample. NaN on an empty sample.
func (s Sample) ValueAt(rank float64) float64 {
	n := len(s.sorted)
	if n == 0 {
		return math.NaN()
	}

	h := rank/100*float64(n) - 0.5
	if h <= 0 {
		return s.sorted[0]
	}
	if h >= float64(n-1) {
		return s.sorted[n-1]
	}

	lo := int(math.Floor(h))
	frac := h - float64(lo)
	return s.sorted[lo] + frac*(s.sorted[lo+1]-s.sorted[lo])
}

// Summary computes the standard percentile cuts, nil when the sample is
// empty.
func (s Sample) Summary() *model.PercentileSummary {
	if s.Len() == 0 {
		return nil
	}
	return &model.PercentileSummary{
		P50: s.ValueAt(50),
		P75: s.ValueAt(75),
		P90: s.ValueAt(90),
		P95: s.ValueAt(95),
		P99: s.ValueAt(99),
	}
}

// ConfidenceSample collects the confidence values of a result set.
func ConfidenceSample(records []model.PlateRecord) Sample {
	values := make([]float64, 0, len(records))
	for i := range records {
		values = append(values, float64(records[i].Confidence))
	}
	return NewSample(values)
}
