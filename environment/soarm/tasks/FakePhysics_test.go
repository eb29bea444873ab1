package tasks

import (
	"fmt"
	"image"
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/samuelfneumann/soarm/physics"
)

// fakePhysics is a scripted physics. Tests set its joint state, contacts
// and sensors directly.
type fakePhysics struct {
	qpos     []float64
	qvel     []float64
	ctrl     []float64
	free     map[string]int
	contacts []physics.Contact
	geoms    []string
	sensors  map[string][]float64
	cameras  map[string]bool

	resets   int
	forwards int
	inReset  bool
	renders  int
}

// newFakePhysics returns a fake with the six arm joints followed by a
// free joint for each object
func newFakePhysics(objects ...string) *fakePhysics {
	f := &fakePhysics{
		qpos:    make([]float64, ArmDOF+physics.FreeJointDOF*len(objects)),
		qvel:    make([]float64, ArmDOF+6*len(objects)),
		ctrl:    make([]float64, ArmDOF),
		free:    make(map[string]int),
		geoms:   []string{"table", "gripper_left", "gripper_right"},
		sensors: make(map[string][]float64),
		cameras: map[string]bool{
			FrontCamera:    true,
			WristCamera:    true,
			OverviewCamera: true,
		},
	}
	for i, name := range objects {
		f.free[name] = ArmDOF + physics.FreeJointDOF*i
		f.geoms = append(f.geoms, name)
	}
	return f
}

func (f *fakePhysics) setObject(name string, pos r3.Vector) {
	adr := f.free[name]
	f.qpos[adr], f.qpos[adr+1], f.qpos[adr+2] = pos.X, pos.Y, pos.Z
}

func (f *fakePhysics) object(name string) (r3.Vector, physics.Quaternion) {
	adr := f.free[name]
	var q physics.Quaternion
	copy(q[:], f.qpos[adr+3:adr+7])
	return r3.Vector{X: f.qpos[adr], Y: f.qpos[adr+1], Z: f.qpos[adr+2]}, q
}

func (f *fakePhysics) touch(a, b string) {
	f.contacts = append(f.contacts, physics.Contact{Geom1: a, Geom2: b})
}

func (f *fakePhysics) ResetContext(fn func(physics.State) error) error {
	f.resets++
	f.inReset = true
	defer func() {
		f.inReset = false
		f.forwards++
	}()
	return fn(fakeState{f})
}

func (f *fakePhysics) SetControls(values []float64) error {
	if len(values) > len(f.ctrl) {
		return fmt.Errorf("too many controls")
	}
	copy(f.ctrl, values)
	return nil
}

func (f *fakePhysics) Step() error { return nil }

func (f *fakePhysics) QPos() []float64 {
	return append([]float64(nil), f.qpos...)
}

func (f *fakePhysics) QVel() []float64 {
	return append([]float64(nil), f.qvel...)
}

func (f *fakePhysics) FreeJoint(name string) (int, bool) {
	adr, ok := f.free[name]
	return adr, ok
}

func (f *fakePhysics) Contacts() []physics.Contact {
	return append([]physics.Contact(nil), f.contacts...)
}

func (f *fakePhysics) GeomNames() []string {
	return append([]string(nil), f.geoms...)
}

func (f *fakePhysics) Sensor(name string) ([]float64, bool) {
	v, ok := f.sensors[name]
	return v, ok
}

func (f *fakePhysics) Render(camera string, height,
	width int) (image.Image, error) {
	f.renders++
	if !f.cameras[camera] {
		return nil, fmt.Errorf("render: %w: %q", physics.ErrNoCamera, camera)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	return img, nil
}

func (f *fakePhysics) Close() error { return nil }

type fakeState struct {
	f *fakePhysics
}

func (s fakeState) SetQPos(start int, values []float64) error {
	if start+len(values) > len(s.f.qpos) {
		return fmt.Errorf("qpos out of range")
	}
	copy(s.f.qpos[start:], values)
	return nil
}

func (s fakeState) SetControls(start int, values []float64) error {
	if start+len(values) > len(s.f.ctrl) {
		return fmt.Errorf("ctrl out of range")
	}
	copy(s.f.ctrl[start:], values)
	return nil
}

func (s fakeState) WritePose(object string, pos r3.Vector,
	quat physics.Quaternion) bool {
	adr, ok := s.f.free[object]
	if !ok {
		return false
	}
	s.f.qpos[adr], s.f.qpos[adr+1], s.f.qpos[adr+2] = pos.X, pos.Y, pos.Z
	copy(s.f.qpos[adr+3:adr+7], quat[:])
	return true
}
