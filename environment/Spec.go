package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, discount, or reward in
// an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewSpecFromIntervals constructs a continuous specification whose
// i-th element is bounded by intervals[i]
func NewSpecFromIntervals(t SpecType, intervals []r1.Interval) Spec {
	low := mat.NewVecDense(len(intervals), nil)
	high := mat.NewVecDense(len(intervals), nil)
	for i, interval := range intervals {
		low.SetVec(i, interval.Min)
		high.SetVec(i, interval.Max)
	}

	return NewSpec(mat.NewVecDense(len(intervals), nil), t, low, high,
		Continuous)
}

// Intervals returns the bounds of each element of the specification
func (s Spec) Intervals() []r1.Interval {
	intervals := make([]r1.Interval, s.Shape.Len())
	for i := range intervals {
		intervals[i] = r1.Interval{
			Min: s.LowerBound.AtVec(i),
			Max: s.UpperBound.AtVec(i),
		}
	}
	return intervals
}

// Contains returns whether v lies within the bounds of the
// specification
func (s Spec) Contains(v mat.Vector) bool {
	if v.Len() != s.Shape.Len() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < s.LowerBound.AtVec(i) ||
			v.AtVec(i) > s.UpperBound.AtVec(i) {
			return false
		}
	}
	return true
}
