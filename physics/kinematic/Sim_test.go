package kinematic

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/samuelfneumann/soarm/physics"
	"go.viam.com/test"
)

// reachDown puts the gripper tip just above the table in front of the
// base with the gripper closed
var reachDown = []float64{0, 0, 0, -1.66, 0, -0.17453}

// liftUp raises the gripper from reachDown
var liftUp = []float64{0, 0.3, 0, -1.66, 0, -0.17453}

func newSim(t *testing.T) *Sim {
	s, err := New(CubesModel())
	test.That(t, err, test.ShouldBeNil)
	return s
}

// hold sets both the joints and their targets to q
func hold(t *testing.T, s *Sim, q []float64) {
	err := s.ResetContext(func(st physics.State) error {
		if err := st.SetQPos(0, q); err != nil {
			return err
		}
		return st.SetControls(0, q)
	})
	test.That(t, err, test.ShouldBeNil)
}

func hasContact(s *Sim, a, b string) bool {
	for _, c := range s.Contacts() {
		if c.Involves(a) && c.Involves(b) {
			return true
		}
	}
	return false
}

func TestNew(t *testing.T) {
	s := newSim(t)
	test.That(t, s.QPos(), test.ShouldHaveLength, 6+2*physics.FreeJointDOF)
	test.That(t, s.QVel(), test.ShouldHaveLength, 6+2*6)

	adr, ok := s.FreeJoint("red_cube")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, adr, test.ShouldEqual, 6)
	adr, ok = s.FreeJoint("blue_cube")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, adr, test.ShouldEqual, 13)
	_, ok = s.FreeJoint("table")
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, s.GeomNames(), test.ShouldResemble, []string{
		"table", "gripper_left", "gripper_right", "red_cube", "blue_cube",
	})

	// Resting cubes touch the table but not each other
	test.That(t, hasContact(s, "red_cube", "table"), test.ShouldBeTrue)
	test.That(t, hasContact(s, "blue_cube", "table"), test.ShouldBeTrue)
	test.That(t, hasContact(s, "red_cube", "blue_cube"), test.ShouldBeFalse)

	t.Run("ArmOnly", func(t *testing.T) {
		s, err := New(ArmOnlyModel())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, s.QPos(), test.ShouldHaveLength, 6)
		_, ok := s.FreeJoint("red_cube")
		test.That(t, ok, test.ShouldBeFalse)
	})

	t.Run("InvalidModel", func(t *testing.T) {
		m := CubesModel()
		m.Joints = m.Joints[:5]
		_, err := New(m)
		test.That(t, err, test.ShouldNotBeNil)

		m = CubesModel()
		m.Geoms = append(m.Geoms, Geom{Name: "ghost", Body: "green_cube"})
		_, err = New(m)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestTip(t *testing.T) {
	tip, yaw := Tip(r3.Vector{}, []float64{0, 0, 0, 0, 0, 0})
	test.That(t, tip.X, test.ShouldAlmostEqual, 0.0)
	test.That(t, tip.Y, test.ShouldAlmostEqual, UpperArm+Forearm+Hand)
	test.That(t, tip.Z, test.ShouldAlmostEqual, ShoulderHeight)
	test.That(t, yaw, test.ShouldEqual, 0.0)

	tip, yaw = Tip(r3.Vector{}, []float64{math.Pi / 2, 0, 0, 0, 0.5, 0})
	test.That(t, tip.X, test.ShouldAlmostEqual, -(UpperArm + Forearm + Hand))
	test.That(t, tip.Y, test.ShouldAlmostEqual, 0.0)
	test.That(t, yaw, test.ShouldAlmostEqual, math.Pi/2+0.5)

	q := yawQuaternion(0.7)
	test.That(t, quaternionYaw(q), test.ShouldAlmostEqual, 0.7)
}

func TestStepServo(t *testing.T) {
	s := newSim(t)
	target := []float64{0.5, 0.2, -0.3, 0.1, 0.4, 1.0}
	test.That(t, s.SetControls(target), test.ShouldBeNil)

	for i := 0; i < 200; i++ {
		test.That(t, s.Step(), test.ShouldBeNil)
	}
	for i, want := range target {
		test.That(t, s.QPos()[i], test.ShouldAlmostEqual, want, 1e-6)
		test.That(t, s.QVel()[i], test.ShouldAlmostEqual, 0.0, 1e-5)
	}

	// Targets are clipped to the joint ranges
	test.That(t, s.SetControls([]float64{10}), test.ShouldBeNil)
	for i := 0; i < 200; i++ {
		test.That(t, s.Step(), test.ShouldBeNil)
	}
	test.That(t, s.QPos()[0], test.ShouldAlmostEqual, 1.92, 1e-6)

	test.That(t, s.SetControls(make([]float64, 7)), test.ShouldNotBeNil)
}

func TestResetContext(t *testing.T) {
	s := newSim(t)

	pos := r3.Vector{X: 0.05, Y: 0.3, Z: 0.05}
	err := s.ResetContext(func(st physics.State) error {
		test.That(t, st.WritePose("blue_cube", pos,
			physics.IdentityQuaternion), test.ShouldBeTrue)
		test.That(t, st.WritePose("green_cube", pos,
			physics.IdentityQuaternion), test.ShouldBeFalse)
		test.That(t, st.SetQPos(100, []float64{1}), test.ShouldNotBeNil)

		// Nested contexts are rejected
		test.That(t, s.ResetContext(func(physics.State) error {
			return nil
		}), test.ShouldNotBeNil)
		return nil
	})
	test.That(t, err, test.ShouldBeNil)

	adr, _ := s.FreeJoint("blue_cube")
	test.That(t, s.QPos()[adr:adr+3], test.ShouldResemble,
		[]float64{0.05, 0.3, 0.05})

	// Errors of the callback are returned and derived state is still
	// recomputed
	failure := errors.New("failure")
	err = s.ResetContext(func(st physics.State) error {
		st.WritePose("blue_cube", r3.Vector{X: -0.1, Y: 0.4, Z: 0.05},
			physics.IdentityQuaternion)
		return failure
	})
	test.That(t, err, test.ShouldEqual, failure)
	test.That(t, hasContact(s, "red_cube", "blue_cube"), test.ShouldBeTrue)
}

func TestSettle(t *testing.T) {
	s := newSim(t)

	// A cube dropped above another comes to rest on top of it
	err := s.ResetContext(func(st physics.State) error {
		st.WritePose("blue_cube", r3.Vector{X: -0.1, Y: 0.4, Z: 0.3},
			physics.IdentityQuaternion)
		return nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Step(), test.ShouldBeNil)

	adr, _ := s.FreeJoint("blue_cube")
	test.That(t, s.QPos()[adr+2], test.ShouldAlmostEqual,
		TableTop+3*CubeHalfSize)
	test.That(t, hasContact(s, "red_cube", "blue_cube"), test.ShouldBeTrue)
	test.That(t, hasContact(s, "blue_cube", "table"), test.ShouldBeFalse)

	// A cube dropped beside it falls to the table
	err = s.ResetContext(func(st physics.State) error {
		st.WritePose("blue_cube", r3.Vector{X: 0.1, Y: 0.4, Z: 0.3},
			physics.IdentityQuaternion)
		return nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Step(), test.ShouldBeNil)
	test.That(t, s.QPos()[adr+2], test.ShouldAlmostEqual,
		TableTop+CubeHalfSize)
}

func TestGrasp(t *testing.T) {
	s := newSim(t)
	hold(t, s, reachDown)

	tip := s.GripperTip()
	err := s.ResetContext(func(st physics.State) error {
		st.WritePose("blue_cube", r3.Vector{X: tip.X, Y: tip.Y, Z: 0.05},
			physics.IdentityQuaternion)
		return nil
	})
	test.That(t, err, test.ShouldBeNil)

	test.That(t, s.Step(), test.ShouldBeNil)
	test.That(t, s.Grasped(), test.ShouldEqual, "blue_cube")
	test.That(t, hasContact(s, "gripper_left", "blue_cube"), test.ShouldBeTrue)
	test.That(t, hasContact(s, "gripper_right", "blue_cube"),
		test.ShouldBeTrue)

	test.That(t, s.SetControls(liftUp), test.ShouldBeNil)
	for i := 0; i < 100; i++ {
		test.That(t, s.Step(), test.ShouldBeNil)
	}
	adr, _ := s.FreeJoint("blue_cube")
	test.That(t, s.Grasped(), test.ShouldEqual, "blue_cube")
	test.That(t, s.QPos()[adr+2], test.ShouldBeGreaterThan, 0.1)
	test.That(t, hasContact(s, "blue_cube", "table"), test.ShouldBeFalse)

	// Opening the gripper drops the cube
	open := append([]float64(nil), liftUp...)
	open[5] = 1.74533
	test.That(t, s.SetControls(open), test.ShouldBeNil)
	for i := 0; i < 100; i++ {
		test.That(t, s.Step(), test.ShouldBeNil)
	}
	test.That(t, s.Grasped(), test.ShouldEqual, "")
	test.That(t, s.QPos()[adr+2], test.ShouldAlmostEqual,
		TableTop+CubeHalfSize)
}

func TestSensors(t *testing.T) {
	s := newSim(t)
	pos, ok := s.Sensor(GripperPosSensor)
	test.That(t, ok, test.ShouldBeTrue)
	tip := s.GripperTip()
	test.That(t, pos, test.ShouldResemble, []float64{tip.X, tip.Y, tip.Z})

	quat, ok := s.Sensor(GripperQuatSensor)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, quat, test.ShouldHaveLength, 4)

	m := CubesModel()
	m.Sensors = nil
	s, err := New(m)
	test.That(t, err, test.ShouldBeNil)
	_, ok = s.Sensor(GripperPosSensor)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestRender(t *testing.T) {
	s := newSim(t)
	for _, camera := range []string{FrontCamera, WristCamera, OverviewCamera} {
		img, err := s.Render(camera, 48, 64)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, img.Bounds().Dx(), test.ShouldEqual, 64)
		test.That(t, img.Bounds().Dy(), test.ShouldEqual, 48)
	}

	_, err := s.Render("side_camera", 48, 64)
	test.That(t, errors.Is(err, physics.ErrNoCamera), test.ShouldBeTrue)
	_, err = s.Render(FrontCamera, 0, 64)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestClose(t *testing.T) {
	s := newSim(t)
	test.That(t, s.Close(), test.ShouldBeNil)

	test.That(t, s.Step(), test.ShouldEqual, physics.ErrClosed)
	test.That(t, s.SetControls(nil), test.ShouldEqual, physics.ErrClosed)
	test.That(t, s.ResetContext(func(physics.State) error { return nil }),
		test.ShouldEqual, physics.ErrClosed)
	_, err := s.Render(FrontCamera, 48, 64)
	test.That(t, err, test.ShouldEqual, physics.ErrClosed)
	test.That(t, s.Close(), test.ShouldEqual, physics.ErrClosed)
}
