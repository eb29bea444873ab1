package floatutils

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestClip(t *testing.T) {
	test.That(t, Clip(2, -1, 1), test.ShouldEqual, 1.0)
	test.That(t, Clip(-2, -1, 1), test.ShouldEqual, -1.0)
	test.That(t, Clip(0.5, -1, 1), test.ShouldEqual, 0.5)
}

func TestClipSlice(t *testing.T) {
	intervals := []r1.Interval{{Min: 0, Max: 1}, {Min: -2, Max: 2}}
	values := []float64{3, -3}

	clipped := ClipSlice(values, intervals)
	test.That(t, clipped, test.ShouldResemble, []float64{1, -2})
	test.That(t, values, test.ShouldResemble, []float64{3, -3})

	test.That(t, func() { ClipSlice([]float64{1}, intervals) },
		test.ShouldPanic)
}
