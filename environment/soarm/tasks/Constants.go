package tasks

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/r1"
)

// ArmDOF is the number of actuated joints: five arm joints followed by
// the gripper
const ArmDOF = 6

// GripperIndex is the index of the gripper in joint and action vectors
const GripperIndex = ArmDOF - 1

// Gripper joint range in radians
const (
	GripperPositionClose float64 = -0.17453
	GripperPositionOpen  float64 = 1.74533
)

// StartArmPose is the joint position every episode starts in
var StartArmPose = [ArmDOF]float64{0, 1.0, -1.2, -1.2, 0, 0}

// JointLimits are the position limits of the arm joints in radians,
// which bound absolute joint position actions
var JointLimits = [ArmDOF]r1.Interval{
	{Min: -1.92, Max: 1.92},
	{Min: -1.75, Max: 1.75},
	{Min: -1.69, Max: 1.69},
	{Min: -1.66, Max: 1.66},
	{Min: -2.74, Max: 2.84},
	{Min: GripperPositionClose, Max: GripperPositionOpen},
}

// Scene layout (m)
const (
	// TableHeight is the height at which objects rest on the table
	TableHeight float64 = 0.05

	// TargetTolerance is the horizontal distance to the target below
	// which a lifted object counts as placed
	TargetTolerance float64 = 0.05

	// AlignTolerance is the horizontal distance below which two objects
	// count as aligned, and StackGap the open interval of vertical
	// separations for which they count as stacked
	AlignTolerance float64 = 0.05

	// MinSeparation is the horizontal distance that objects placed at
	// the start of a stacking episode keep from each other
	MinSeparation float64 = 0.08
)

// StackGap is the open interval of vertical separations between two
// aligned objects for which one rests on the other
var StackGap = r1.Interval{Min: 0.04, Max: 0.06}

// TableCenter is the anchor of the placement grid
var TableCenter = r3.Vector{X: 0.0, Y: 0.4, Z: TableHeight}

// WorkspaceBounds bounds the positions drawn by the default workspace
// sampler
var WorkspaceBounds = []r1.Interval{
	{Min: -0.15, Max: 0.15},
	{Min: 0.3, Max: 0.5},
	{Min: 0.04, Max: 0.06},
}

// Scene object names
const (
	RedCube  = "red_cube"
	BlueCube = "blue_cube"
)

// TrackedObjects are the free-floating objects whose positions make up
// the environment state, in order
var TrackedObjects = []string{RedCube, BlueCube}

// Sensors that are added to observations when the model exposes them
const (
	GripperPosSensor  = "gripper_pos_sensor"
	GripperQuatSensor = "gripper_quat_sensor"
)

// Cameras rendered into every observation
const (
	FrontCamera    = "front_camera"
	WristCamera    = "wrist_camera"
	OverviewCamera = "overview_camera"
)

// Size of rendered camera images
const (
	ImageHeight = 480
	ImageWidth  = 640
)

// Cameras returns the cameras rendered into observations by default
func Cameras() []string {
	return []string{FrontCamera, WristCamera, OverviewCamera}
}
