// Package tasks implements the SO-ARM single-arm manipulation tasks.
// A task owns the episode lifecycle on top of a physics.Physics: it
// places the scene at the start of each episode, turns actions into
// actuator targets, extracts observations and computes rewards from
// contacts and object positions.
//
// Tasks must be registered with a Physics before use. Using a task that
// has not been registered panics.
package tasks

import (
	"fmt"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/samuelfneumann/soarm/physics"
	ts "github.com/samuelfneumann/soarm/timestep"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// SoArmTask implements the parts of the episode lifecycle shared by all
// SO-ARM tasks. On its own it is a task that never rewards the agent.
// SoArmTask satisfies the environment.Task interface.
type SoArmTask struct {
	physics   physics.Physics
	logger    golog.Logger
	cameras   []string
	maxReward float64
}

// NewSoArmTask returns a new SoArmTask. If logger is nil, the global
// logger is used.
func NewSoArmTask(logger golog.Logger) *SoArmTask {
	if logger == nil {
		logger = golog.Global()
	}
	return &SoArmTask{
		logger:    logger,
		cameras:   Cameras(),
		maxReward: 1.0,
	}
}

// Register attaches the physics the task runs on
func (t *SoArmTask) Register(p physics.Physics) {
	t.physics = p
}

// Physics returns the physics the task is registered with
func (t *SoArmTask) Physics() physics.Physics {
	return t.mustPhysics("physics")
}

// mustPhysics returns the registered physics or panics
func (t *SoArmTask) mustPhysics(op string) physics.Physics {
	if t.physics == nil {
		panic(fmt.Sprintf("%v: task must be registered with a physics first",
			op))
	}
	return t.physics
}

// Logger returns the logger of the task
func (t *SoArmTask) Logger() golog.Logger {
	return t.logger
}

// SetCameras sets the cameras rendered into observations
func (t *SoArmTask) SetCameras(cameras ...string) {
	t.cameras = append([]string(nil), cameras...)
}

// MaxReward returns the largest reward the task can produce
func (t *SoArmTask) MaxReward() float64 {
	return t.maxReward
}

// Reward returns the reward of the current tick, which is always 0 for
// the base task
func (t *SoArmTask) Reward() float64 {
	t.mustPhysics("reward")
	return 0.0
}

// BeforeStep sets the actuator targets to the first ArmDOF entries of
// action, which are absolute joint positions with the gripper last
func (t *SoArmTask) BeforeStep(action mat.Vector) error {
	p := t.mustPhysics("beforeStep")
	if action.Len() < ArmDOF {
		return fmt.Errorf("beforeStep: action should have at least %v "+
			"dimensions, have %v", ArmDOF, action.Len())
	}

	ctrl := make([]float64, ArmDOF)
	for i := range ctrl {
		ctrl[i] = action.AtVec(i)
	}
	if err := p.SetControls(ctrl); err != nil {
		return fmt.Errorf("beforeStep: could not set controls: %v", err)
	}
	return nil
}

// InitializeEpisode moves the arm to StartArmPose and sets the actuator
// targets to hold it there
func (t *SoArmTask) InitializeEpisode() error {
	p := t.mustPhysics("initializeEpisode")

	err := p.ResetContext(func(s physics.State) error {
		if err := s.SetQPos(0, StartArmPose[:]); err != nil {
			return fmt.Errorf("could not set start pose: %v", err)
		}
		if err := s.SetControls(0, StartArmPose[:]); err != nil {
			return fmt.Errorf("could not set start controls: %v", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("initializeEpisode: %v", err)
	}
	return nil
}

// armState returns the first ArmDOF entries of values with the gripper
// entry normalized
func armState(values []float64, normalize func(float64) float64,
	op string) *mat.VecDense {
	if len(values) < ArmDOF {
		panic(fmt.Sprintf("%v: physics should have at least %v joints, "+
			"have %v", op, ArmDOF, len(values)))
	}

	state := make([]float64, ArmDOF)
	copy(state, values[:ArmDOF])
	state[GripperIndex] = normalize(state[GripperIndex])
	return mat.NewVecDense(ArmDOF, state)
}

// QPos returns the arm joint positions with the gripper position
// normalized onto [0, 1]
func (t *SoArmTask) QPos() *mat.VecDense {
	p := t.mustPhysics("qPos")
	return armState(p.QPos(), NormalizeGripperPosition, "qPos")
}

// QVel returns the arm joint velocities with the gripper velocity
// normalized
func (t *SoArmTask) QVel() *mat.VecDense {
	p := t.mustPhysics("qVel")
	return armState(p.QVel(), NormalizeGripperVelocity, "qVel")
}

// EnvState returns the concatenated (x, y, z) positions of the tracked
// objects present in the scene, in TrackedObjects order. The result is
// empty if no tracked object is present.
func (t *SoArmTask) EnvState() []float64 {
	p := t.mustPhysics("envState")
	qpos := p.QPos()

	state := make([]float64, 0, 3*len(TrackedObjects))
	for _, name := range TrackedObjects {
		if pos, ok := objectPosition(p, qpos, name); ok {
			state = append(state, pos.X, pos.Y, pos.Z)
		}
	}
	return state
}

// objectPosition returns the position of the named free-floating
// object from qpos
func objectPosition(p physics.Physics, qpos []float64,
	name string) (r3.Vector, bool) {
	adr, ok := p.FreeJoint(name)
	if !ok || adr < 0 || adr+physics.FreeJointDOF > len(qpos) {
		return r3.Vector{}, false
	}
	return r3.Vector{X: qpos[adr], Y: qpos[adr+1], Z: qpos[adr+2]}, true
}

// ObjectPosition returns the current position of the named
// free-floating object
func (t *SoArmTask) ObjectPosition(name string) (r3.Vector, bool) {
	p := t.mustPhysics("objectPosition")
	return objectPosition(p, p.QPos(), name)
}

// Observation returns the observation of the current tick. Gripper
// sensors the model does not expose and cameras that fail to render are
// left out of the observation.
func (t *SoArmTask) Observation() *ts.Observation {
	p := t.mustPhysics("observation")

	obs := &ts.Observation{
		QPos:     t.QPos(),
		QVel:     t.QVel(),
		EnvState: t.EnvState(),
		Sensors:  make(map[string][]float64, 2),
		Images:   make(map[string]*tensor.Dense, len(t.cameras)),
	}

	for _, name := range []string{GripperPosSensor, GripperQuatSensor} {
		if reading, ok := p.Sensor(name); ok {
			obs.Sensors[name] = reading
		}
	}

	for _, camera := range t.cameras {
		img, err := p.Render(camera, ImageHeight, ImageWidth)
		if err != nil {
			t.logger.Debugw("could not render camera", "camera", camera,
				"error", err)
			continue
		}
		obs.Images[camera] = ImageTensor(img)
	}

	return obs
}
