// Package reservoir implements a uniform sampling reservoir for streaming numeric values.
//
// The reservoir keeps at most maxSize samples in ascending order (Algorithm R with
// sorted insertion), so order statistics can be read without sorting. Population
// statistics (count, sum, min, max) are tracked exactly for every value offered,
// independent of which samples survive eviction.
//
// Example:
//
//	r, _ := reservoir.New(500)
//	for _, v := range values {
//	    r.Add(v)
//	}
//	q := r.SampleQuartiles() // 25%, median, 75%
package reservoir

import (
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"sort"
	"time"
)

// Reservoir holds a bounded, sorted, uniformly drawn sample of a stream of float64 values.
// A Reservoir is not safe for concurrent use.
type Reservoir struct {
	samples []float64
	maxSize int
	rnd     *rand.Rand

	populationCount int64
	populationSum   *big.Rat
	minimum         float64
	maximum         float64

	trimmed bool
}

// New creates a reservoir that keeps at most maxSize samples.
func New(maxSize int) (*Reservoir, error) {
	return NewWithSource(maxSize, rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource creates a reservoir drawing eviction indexes from src.
// A fixed source makes the sample reproducible.
func NewWithSource(maxSize int, src rand.Source) (*Reservoir, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("reservoir size must be positive, got %d", maxSize)
	}
	if src == nil {
		return nil, fmt.Errorf("random source is required")
	}
	return &Reservoir{
		samples:       make([]float64, 0, maxSize),
		maxSize:       maxSize,
		rnd:           rand.New(src),
		populationSum: new(big.Rat),
		minimum:       math.Inf(1),
		maximum:       math.Inf(-1),
	}, nil
}

// Add offers a value to the reservoir. NaN and infinite values are ignored.
func (r *Reservoir) Add(value float64) {
	if r.trimmed || math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}

	if len(r.samples) < r.maxSize {
		r.samples = append(r.samples, 0)
		r.removeAndAdd(len(r.samples)-1, value)
	} else {
		// The draw is taken over the values seen before this one.
		removeIndex := r.rnd.Int63n(r.populationCount)
		if removeIndex < int64(r.maxSize) {
			r.removeAndAdd(int(removeIndex), value)
		}
	}

	r.populationCount++
	r.populationSum.Add(r.populationSum, new(big.Rat).SetFloat64(value))
	if value < r.minimum {
		r.minimum = value
	}
	if value > r.maximum {
		r.maximum = value
	}
}

// removeAndAdd drops the sample at ordinal removeIndex and inserts value at its sorted
// position. Only the range between the two positions is shifted.
func (r *Reservoir) removeAndAdd(removeIndex int, value float64) {
	// The slot at removeIndex is a hole, so search the sorted halves on each side of it.
	addIndex := sort.SearchFloat64s(r.samples[:removeIndex], value)
	if addIndex == removeIndex {
		addIndex = removeIndex + 1 + sort.SearchFloat64s(r.samples[removeIndex+1:], value)
	}

	switch {
	case removeIndex < addIndex:
		// Slots (removeIndex, addIndex) move one step left; the new value lands just
		// before the first sample that is >= value.
		addIndex--
		copy(r.samples[removeIndex:addIndex], r.samples[removeIndex+1:addIndex+1])
	case removeIndex > addIndex:
		copy(r.samples[addIndex+1:removeIndex+1], r.samples[addIndex:removeIndex])
	}
	r.samples[addIndex] = value
}

// Trim freezes the reservoir; later calls to Add have no effect.
func (r *Reservoir) Trim() {
	r.trimmed = true
}

// Samples returns a copy of the current samples in ascending order.
func (r *Reservoir) Samples() []float64 {
	out := make([]float64, len(r.samples))
	copy(out, r.samples)
	return out
}

// MaxSize returns the capacity of the reservoir.
func (r *Reservoir) MaxSize() int {
	return r.maxSize
}

// Len returns the number of samples currently held.
func (r *Reservoir) Len() int {
	return len(r.samples)
}

// PopulationCount returns the number of values offered to the reservoir.
func (r *Reservoir) PopulationCount() int64 {
	return r.populationCount
}

// PopulationSum returns the exact sum of all offered values, rounded to float64.
func (r *Reservoir) PopulationSum() float64 {
	f, _ := r.populationSum.Float64()
	return f
}

// PopulationMean returns the exact mean of all offered values, or NaN if none were offered.
func (r *Reservoir) PopulationMean() float64 {
	if r.populationCount == 0 {
		return math.NaN()
	}
	mean := new(big.Rat).Quo(r.populationSum, new(big.Rat).SetInt64(r.populationCount))
	f, _ := mean.Float64()
	return f
}

// PopulationMinimum returns the smallest value offered, or +Inf if none were offered.
func (r *Reservoir) PopulationMinimum() float64 {
	return r.minimum
}

// PopulationMaximum returns the largest value offered, or -Inf if none were offered.
func (r *Reservoir) PopulationMaximum() float64 {
	return r.maximum
}

// SampleMean returns the mean of the samples, or NaN if the reservoir is empty.
func (r *Reservoir) SampleMean() float64 {
	if len(r.samples) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range r.samples {
		sum += v
	}
	return sum / float64(len(r.samples))
}

// SampleStandardDeviation returns the sample standard deviation (n-1 denominator),
// or NaN when fewer than two samples are held.
func (r *Reservoir) SampleStandardDeviation() float64 {
	n := len(r.samples)
	if n < 2 {
		return math.NaN()
	}
	mean := r.SampleMean()
	var ss float64
	for _, v := range r.samples {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// SampleQuartiles returns the 25%, 50% and 75% quantiles of the samples using
// position i*(n+1)/4 with linear interpolation between neighbours.
func (r *Reservoir) SampleQuartiles() [3]float64 {
	n := len(r.samples)
	switch n {
	case 0:
		return [3]float64{math.NaN(), math.NaN(), math.NaN()}
	case 1:
		v := r.samples[0]
		return [3]float64{v, v, v}
	}

	var q [3]float64
	for i := 1; i <= 3; i++ {
		pos := float64(i) * float64(n+1) * 0.25
		intPos := int(pos)
		switch {
		case intPos == 0:
			q[i-1] = r.samples[0]
		case intPos >= n:
			q[i-1] = r.samples[n-1]
		default:
			base := r.samples[intPos-1]
			q[i-1] = base + (pos-float64(intPos))*(r.samples[intPos]-base)
		}
	}
	return q
}
