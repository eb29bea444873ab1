// Package kinematic implements a small reference Physics for the
// SO-ARM100 single-arm scene. It does not integrate dynamics: arm joints
// track their actuator targets with a first-order servo, the gripper
// tip follows a planar forward-kinematics chain, resting cubes settle
// onto whatever supports them and a cube squeezed between both gripper
// pads is carried with the tip. Contacts are axis-aligned bounding box
// overlaps and cameras are orthographic drawings.
//
// The backend exists so that environments, tools and tests can run
// without a native simulator. Geometry and camera names follow the
// SO-ARM MuJoCo scene so tasks written against it behave the same.
package kinematic

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/spatial/r1"
)

// Scene dimensions (m)
const (
	TableTop      float64 = 0.025
	CubeHalfSize  float64 = 0.025
	ContactMargin float64 = 1e-3

	ShoulderHeight float64 = 0.14
	UpperArm       float64 = 0.116
	Forearm        float64 = 0.135
	Hand           float64 = 0.1

	PadHalfWidth  float64 = 0.005
	PadHalfDepth  float64 = 0.01
	PadHalfHeight float64 = 0.02

	// Half distance between pad centres with the gripper fully closed
	// and the additional half distance when fully open
	PadClosedOffset float64 = 0.015
	PadOpenTravel   float64 = 0.03
)

// Sensor names
const (
	GripperPosSensor  = "gripper_pos_sensor"
	GripperQuatSensor = "gripper_quat_sensor"
)

// Camera names
const (
	FrontCamera    = "front_camera"
	WristCamera    = "wrist_camera"
	OverviewCamera = "overview_camera"
)

// Joint is a hinge joint of the arm
type Joint struct {
	Name  string
	Range r1.Interval
}

// Body is a free-floating body, which owns one qpos block of
// physics.FreeJointDOF slots
type Body struct {
	Name string
	Init r3.Vector
}

// Geom is a box geometry. Geoms with an empty Body are fixed in the
// world at Pos. Geoms attached to a free body move with it, geoms
// attached to GripperBody move with the gripper tip.
type Geom struct {
	Name     string
	Body     string
	HalfSize r3.Vector
	Pos      r3.Vector

	// Hue in degrees, used when rendering
	Hue float64
}

// GripperBody is the pseudo-body that gripper pads are attached to
const GripperBody = "gripper"

// View determines how a camera projects the scene
type View int

const (
	// SideView looks along +y; image x is world x, image y is world z
	SideView View = iota

	// TopView looks down -z; image x is world x, image y is world y
	TopView

	// TipView is a TopView centred on the gripper tip
	TipView
)

// Camera is an orthographic camera. Centre is the world point at the
// middle of the image and Span the world extent across the image width.
type Camera struct {
	Name   string
	View   View
	Centre r3.Vector
	Span   float64
}

// Model describes a scene
type Model struct {
	Joints  []Joint
	Bodies  []Body
	Geoms   []Geom
	Cameras []Camera

	// Base is the position of the shoulder pan joint
	Base r3.Vector

	// Sensors lists the named sensors the model exposes
	Sensors []string
}

// ArmJoints returns the six SO-ARM100 joints with their ranges in
// radians
func ArmJoints() []Joint {
	return []Joint{
		{Name: "shoulder_pan", Range: r1.Interval{Min: -1.92, Max: 1.92}},
		{Name: "shoulder_lift", Range: r1.Interval{Min: -1.75, Max: 1.75}},
		{Name: "elbow_flex", Range: r1.Interval{Min: -1.69, Max: 1.69}},
		{Name: "wrist_flex", Range: r1.Interval{Min: -1.66, Max: 1.66}},
		{Name: "wrist_roll", Range: r1.Interval{Min: -2.74, Max: 2.84}},
		{Name: "gripper", Range: r1.Interval{Min: -0.17453, Max: 1.74533}},
	}
}

// ArmOnlyModel returns the arm on its table without any objects
func ArmOnlyModel() Model {
	pad := r3.Vector{X: PadHalfWidth, Y: PadHalfDepth, Z: PadHalfHeight}
	return Model{
		Joints: ArmJoints(),
		Geoms: []Geom{
			{
				Name:     "table",
				HalfSize: r3.Vector{X: 0.3, Y: 0.35, Z: TableTop / 2},
				Pos:      r3.Vector{X: 0, Y: 0.4, Z: TableTop / 2},
				Hue:      30,
			},
			{Name: "gripper_left", Body: GripperBody, HalfSize: pad, Hue: 0},
			{Name: "gripper_right", Body: GripperBody, HalfSize: pad, Hue: 0},
		},
		Cameras: []Camera{
			{
				Name:   FrontCamera,
				View:   SideView,
				Centre: r3.Vector{X: 0, Y: 0, Z: 0.2},
				Span:   0.8,
			},
			{
				Name:   OverviewCamera,
				View:   TopView,
				Centre: r3.Vector{X: 0, Y: 0.4, Z: 0},
				Span:   0.7,
			},
			{Name: WristCamera, View: TipView, Span: 0.25},
		},
		Base:    r3.Vector{X: 0, Y: 0.15, Z: 0},
		Sensors: []string{GripperPosSensor, GripperQuatSensor},
	}
}

// CubesModel returns the arm scene with a red and a blue cube resting on
// the table. This is the scene used by both the pick-and-place and the
// stacking tasks.
func CubesModel() Model {
	m := ArmOnlyModel()
	cube := r3.Vector{X: CubeHalfSize, Y: CubeHalfSize, Z: CubeHalfSize}
	rest := TableTop + CubeHalfSize

	m.Bodies = []Body{
		{Name: "red_cube", Init: r3.Vector{X: -0.1, Y: 0.4, Z: rest}},
		{Name: "blue_cube", Init: r3.Vector{X: 0.1, Y: 0.4, Z: rest}},
	}
	m.Geoms = append(m.Geoms,
		Geom{Name: "red_cube", Body: "red_cube", HalfSize: cube, Hue: 0},
		Geom{Name: "blue_cube", Body: "blue_cube", HalfSize: cube, Hue: 220},
	)
	return m
}

// nq returns the number of qpos slots of the model
func (m Model) nq() int {
	return len(m.Joints) + 7*len(m.Bodies)
}

// nv returns the number of qvel slots of the model
func (m Model) nv() int {
	return len(m.Joints) + 6*len(m.Bodies)
}

func (m Model) hasSensor(name string) bool {
	for _, s := range m.Sensors {
		if s == name {
			return true
		}
	}
	return false
}
