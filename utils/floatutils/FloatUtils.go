// Package floatutils provides utilities for working with floats
package floatutils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}

// ClipInterval is a wrapper to use Clip with an r1.Interval instead of
// a separate max and min value
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// ClipSlice returns a copy of values where values[i] is clipped to
// intervals[i]
func ClipSlice(values []float64, intervals []r1.Interval) []float64 {
	if len(values) != len(intervals) {
		panic(fmt.Sprintf("clipSlice: cannot clip %v values to %v intervals",
			len(values), len(intervals)))
	}

	clipped := make([]float64, len(values))
	for i := range values {
		clipped[i] = ClipInterval(values[i], intervals[i])
	}
	return clipped
}
