package tasks

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func vec(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

func TestGridPosition(t *testing.T) {
	cells := []struct {
		cell   int
		dx, dy float64
	}{
		{0, -0.10, -0.075},
		{1, -0.10, 0},
		{2, -0.10, 0.075},
		{3, 0, -0.075},
		{4, 0, 0},
		{5, 0, 0.075},
		{6, 0.10, -0.075},
		{7, 0.10, 0},
		{8, 0.10, 0.075},
	}
	for _, c := range cells {
		pos, err := GridPosition(c.cell)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pos.X, test.ShouldAlmostEqual, TableCenter.X+c.dx)
		test.That(t, pos.Y, test.ShouldAlmostEqual, TableCenter.Y+c.dy)
		test.That(t, pos.Z, test.ShouldEqual, TableHeight)

		offset, err := GridOffset(c.cell)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, offset.X, test.ShouldAlmostEqual, c.dx)
		test.That(t, offset.Y, test.ShouldAlmostEqual, c.dy)
	}

	// Cells are distinct and all rest on the table
	seen := make(map[r3.Vector]bool)
	for cell := 0; cell < GridCells; cell++ {
		pos, err := GridPosition(cell)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pos.Z, test.ShouldEqual, TableHeight)
		test.That(t, seen[pos], test.ShouldBeFalse)
		seen[pos] = true
	}

	for _, cell := range []int{-1, 9, 100} {
		_, err := GridPosition(cell)
		test.That(t, errors.Is(err, ErrInvalidGridPosition),
			test.ShouldBeTrue)
	}
}

func TestRotationQuaternion(t *testing.T) {
	q := RotationQuaternion(0)
	test.That(t, q[0], test.ShouldEqual, 1.0)
	test.That(t, q[3], test.ShouldEqual, 0.0)

	for _, angle := range RotationAngles {
		q := RotationQuaternion(angle)
		norm := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
		test.That(t, norm, test.ShouldAlmostEqual, 1.0)
		test.That(t, q[1], test.ShouldEqual, 0.0)
		test.That(t, q[2], test.ShouldEqual, 0.0)
	}

	for _, angle := range RotationAngles {
		half := angle * math.Pi / 360
		q := RotationQuaternion(angle)
		test.That(t, q[0], test.ShouldAlmostEqual, math.Cos(half))
		test.That(t, q[3], test.ShouldAlmostEqual, math.Sin(half))
	}

	q = RotationQuaternion(60)
	test.That(t, q[0], test.ShouldAlmostEqual, math.Sqrt(3)/2)
	test.That(t, q[3], test.ShouldAlmostEqual, 0.5)
}

func TestTags(t *testing.T) {
	test.That(t, TagGeom("gripper_left", BlueCube), test.ShouldEqual,
		TagGripper)
	test.That(t, TagGeom("blue_cube", BlueCube), test.ShouldEqual, TagObject)
	test.That(t, TagGeom("red_cube", BlueCube), test.ShouldEqual, GeomTag(0))
	test.That(t, TagGeom("table_top", BlueCube), test.ShouldEqual, TagTable)
	test.That(t, TagGeom("blue_cube_on_table", BlueCube).Has(TagObject|TagTable),
		test.ShouldBeTrue)
	test.That(t, GeomTag(0).Has(0), test.ShouldBeFalse)

	tagger := NewTagger([]string{"table", "blue_cube"}, BlueCube)
	test.That(t, tagger.Pairs("table", "blue_cube", TagObject, TagTable),
		test.ShouldBeTrue)
	test.That(t, tagger.Pairs("blue_cube", "table", TagObject, TagTable),
		test.ShouldBeTrue)
	test.That(t, tagger.Pairs("blue_cube", "table", TagObject, TagGripper),
		test.ShouldBeFalse)

	// Names not in the model are resolved on first sight
	test.That(t, tagger.Tag("gripper_pad"), test.ShouldEqual, TagGripper)
	test.That(t, tagger.tags, test.ShouldContainKey, "gripper_pad")
}
