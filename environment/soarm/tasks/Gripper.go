package tasks

// gripperRange is the extent of the gripper joint
const gripperRange = GripperPositionOpen - GripperPositionClose

// NormalizeGripperPosition maps a gripper joint position onto [0, 1],
// where 0 is fully closed and 1 fully open
func NormalizeGripperPosition(x float64) float64 {
	return (x - GripperPositionClose) / gripperRange
}

// UnnormalizeGripperPosition is the inverse of NormalizeGripperPosition
func UnnormalizeGripperPosition(x float64) float64 {
	return x*gripperRange + GripperPositionClose
}

// NormalizeGripperVelocity scales a gripper joint velocity by the
// gripper range, so that a velocity of 1 opens the gripper fully in
// one second
func NormalizeGripperVelocity(x float64) float64 {
	return x / gripperRange
}

// UnnormalizeGripperVelocity is the inverse of NormalizeGripperVelocity
func UnnormalizeGripperVelocity(x float64) float64 {
	return x * gripperRange
}
