package tasks

import (
	"fmt"
	"math"

	"github.com/go-errors/errors"
	"github.com/golang/geo/r3"
	"github.com/samuelfneumann/soarm/physics"
)

// GridCells is the number of cells in the placement grid
const GridCells = 9

// ErrInvalidGridPosition is returned for grid positions outside
// [0, GridCells)
var ErrInvalidGridPosition = errors.New("grid position must be between 0 " +
	"and 8 (inclusive), or unset for a random position")

// Grid offsets from TableCenter. The 3x3 grid is laid out row-major by
// x then y:
//
//	0: (-10, -7.5)  1: (-10, 0)  2: (-10, +7.5)
//	3: (  0, -7.5)  4: (  0, 0)  5: (  0, +7.5)
//	6: (+10, -7.5)  7: (+10, 0)  8: (+10, +7.5)
//
// in centimetres.
var (
	gridOffsetsX = [3]float64{-0.10, 0.0, 0.10}
	gridOffsetsY = [3]float64{-0.075, 0.0, 0.075}
)

// RotationAngles are the rotations about the vertical axis, in degrees,
// that a placed object may be given
var RotationAngles = []float64{0, 30, 45, 60}

// ValidateGridPosition returns an error wrapping ErrInvalidGridPosition
// if cell is not a grid cell
func ValidateGridPosition(cell int) error {
	if cell < 0 || cell >= GridCells {
		return fmt.Errorf("%w: have %v", ErrInvalidGridPosition, cell)
	}
	return nil
}

// GridOffset returns the horizontal offset of a grid cell from the
// table centre
func GridOffset(cell int) (r3.Vector, error) {
	if err := ValidateGridPosition(cell); err != nil {
		return r3.Vector{}, err
	}
	return r3.Vector{X: gridOffsetsX[cell/3], Y: gridOffsetsY[cell%3]}, nil
}

// GridPosition returns the position of an object resting on the table
// at the centre of a grid cell
func GridPosition(cell int) (r3.Vector, error) {
	offset, err := GridOffset(cell)
	if err != nil {
		return r3.Vector{}, err
	}
	return TableCenter.Add(offset), nil
}

// RotationQuaternion returns the rotation of degrees about the vertical
// axis as (cos(θ/2), 0, 0, sin(θ/2))
func RotationQuaternion(degrees float64) physics.Quaternion {
	half := degrees * math.Pi / 180 / 2
	return physics.Quaternion{math.Cos(half), 0, 0, math.Sin(half)}
}
