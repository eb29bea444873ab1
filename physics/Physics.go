// Package physics outlines the interface between manipulation tasks and
// the rigid-body simulator that advances them. Tasks never integrate
// dynamics themselves; they read joint state, enumerate contacts,
// render camera views and write poses through a Physics.
//
// Joint state follows the MuJoCo layout: qpos holds one slot per hinge
// joint followed by seven slots (x, y, z, qw, qx, qy, qz) for each free
// joint, qvel holds one slot per hinge joint followed by six slots per
// free joint.
package physics

import (
	"image"

	"github.com/go-errors/errors"
	"github.com/golang/geo/r3"
)

// FreeJointDOF is the number of qpos slots used by a free-floating body
const FreeJointDOF = 7

// ErrClosed is returned by a Physics that has already been closed
var ErrClosed = errors.New("physics: closed")

// ErrNoCamera is returned when rendering a camera the model does not
// define
var ErrNoCamera = errors.New("physics: no such camera")

// Quaternion is a rotation in (w, x, y, z) order
type Quaternion [4]float64

// IdentityQuaternion is the rotation that does nothing
var IdentityQuaternion = Quaternion{1, 0, 0, 0}

// Contact is an unordered pair of geometry names reported as touching
// on the current tick
type Contact struct {
	Geom1 string
	Geom2 string
}

// Involves returns whether one of the geometries of the contact is
// named name
func (c Contact) Involves(name string) bool {
	return c.Geom1 == name || c.Geom2 == name
}

// State is the mutable view of a Physics handed out by ResetContext.
// It is only valid for the duration of the callback.
type State interface {
	// SetQPos overwrites qpos[start : start+len(values)]
	SetQPos(start int, values []float64) error

	// SetControls overwrites ctrl[start : start+len(values)]
	SetControls(start int, values []float64) error

	// WritePose writes the position and orientation of the free joint
	// called object. It returns false without writing anything if the
	// model has no such free joint.
	WritePose(object string, pos r3.Vector, quat Quaternion) bool
}

// Physics is a rigid-body simulator instance owned by a single task
type Physics interface {
	// ResetContext runs fn with exclusive mutable access to the
	// simulator state. Derived quantities (body positions, contacts,
	// sensors) are recomputed when fn returns, whether or not fn
	// returned an error.
	ResetContext(fn func(State) error) error

	// SetControls sets the actuator targets ctrl[0 : len(values)]
	SetControls(values []float64) error

	// Step advances the simulation by one control tick
	Step() error

	// QPos returns a copy of the joint positions
	QPos() []float64

	// QVel returns a copy of the joint velocities
	QVel() []float64

	// FreeJoint returns the qpos address of the free joint called name
	FreeJoint(name string) (adr int, ok bool)

	// Contacts enumerates the contact pairs of the current tick
	Contacts() []Contact

	// GeomNames returns the name of every geometry in the model
	GeomNames() []string

	// Sensor returns the reading of the named sensor
	Sensor(name string) ([]float64, bool)

	// Render renders the named camera. The returned image has the
	// requested bounds.
	Render(camera string, height, width int) (image.Image, error)

	Close() error
}
