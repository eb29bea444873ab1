package kinematic

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/samuelfneumann/soarm/physics"
	"github.com/samuelfneumann/soarm/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r1"
)

// Tip returns the position of the gripper tip and the yaw of the
// gripper for arm joint positions q. The shoulder lift, elbow flex and
// wrist flex joints form a planar chain whose pitch angles accumulate
// from the horizontal. With a shoulder pan of 0 the arm reaches along
// +y.
func Tip(base r3.Vector, q []float64) (r3.Vector, float64) {
	pan := q[0]
	p1 := q[1]
	p2 := p1 + q[2]
	p3 := p2 + q[3]

	reach := UpperArm*math.Cos(p1) + Forearm*math.Cos(p2) + Hand*math.Cos(p3)
	height := ShoulderHeight + UpperArm*math.Sin(p1) + Forearm*math.Sin(p2) +
		Hand*math.Sin(p3)

	pos := r3.Vector{
		X: base.X - reach*math.Sin(pan),
		Y: base.Y + reach*math.Cos(pan),
		Z: base.Z + height,
	}
	return pos, pan + q[4]
}

// padOffset returns the distance from the tip to the centre of each
// gripper pad for gripper joint position q
func padOffset(q float64, rng r1.Interval) float64 {
	open := floatutils.Clip((q-rng.Min)/(rng.Max-rng.Min), 0, 1)
	return PadClosedOffset + PadOpenTravel*open
}

// lateral returns the horizontal unit vector along which the gripper
// pads open
func lateral(yaw float64) r3.Vector {
	return r3.Vector{X: math.Cos(yaw), Y: math.Sin(yaw)}
}

// yawQuaternion returns the rotation of yaw radians about +z
func yawQuaternion(yaw float64) physics.Quaternion {
	return physics.Quaternion{math.Cos(yaw / 2), 0, 0, math.Sin(yaw / 2)}
}

// quaternionYaw returns the rotation about +z of q, ignoring any other
// rotation components
func quaternionYaw(q physics.Quaternion) float64 {
	return 2 * math.Atan2(q[3], q[0])
}
