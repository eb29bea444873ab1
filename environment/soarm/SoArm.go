// Package soarm implements the SO-ARM single-arm manipulation
// environment. The environment runs a task from package tasks on a
// physics, clips actions to the joint limits of the arm, lays out
// observations for agents and ends episodes once the task is solved or
// a step limit is reached.
package soarm

import (
	"fmt"
	"image"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/samuelfneumann/soarm/environment"
	"github.com/samuelfneumann/soarm/environment/soarm/tasks"
	"github.com/samuelfneumann/soarm/physics"
	ts "github.com/samuelfneumann/soarm/timestep"
	"github.com/samuelfneumann/soarm/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Defaults of the environment options
const (
	DefaultEpisodeCutoff = 1000
	DefaultDiscount      = 1.0
)

// ResetOptions adjust the scene of the episode started by ResetWith
type ResetOptions struct {
	// Seed reseeds the placement samplers of the task before the scene
	// is placed
	Seed *uint64

	// CubeGridPosition fixes the grid cell the object is placed in. A
	// nil cell places the object in a random cell. Ignored by tasks
	// without grid placement.
	CubeGridPosition *int

	// TargetPosition sets the position the object should be placed at.
	// Ignored by tasks without a target.
	TargetPosition *r3.Vector
}

// Optional task capabilities
type (
	seeder interface {
		Seed(seed uint64)
	}
	gridPlacer interface {
		SetCubeGridPosition(cell *int) error
	}
	targeted interface {
		SetTargetPosition(target *r3.Vector)
	}
	cameraSetter interface {
		SetCameras(cameras ...string)
	}
)

// SoArm implements the SO-ARM single-arm manipulation environment.
//
// Actions are 6-dimensional absolute joint position targets for
// [shoulder_pan, shoulder_lift, elbow_flex, wrist_flex, wrist_roll,
// gripper], clipped to the joint limits before they are applied. One
// action is applied for a single physics step.
//
// Episodes end with timestep.TerminalStateReached as soon as the task
// produces its maximum reward, and with timestep.Timeout after the
// episode cutoff.
//
// SoArm satisfies the environment.Environment interface.
type SoArm struct {
	task    environment.Task
	physics physics.Physics
	logger  golog.Logger

	obsType  ObsType
	cameras  []string
	discount float64
	cutoff   int
	enders   []environment.Ender

	actionSpec      environment.Spec
	currentTimeStep ts.TimeStep
	closed          bool
}

// Option configures a SoArm environment
type Option func(*SoArm) error

// WithObsType sets the observation layout. The default is
// PixelsAgentPos.
func WithObsType(o ObsType) Option {
	return func(s *SoArm) error {
		if _, err := ParseObsType(string(o)); err != nil {
			return err
		}
		s.obsType = o
		return nil
	}
}

// WithCameraConfig sets the cameras images are rendered from. The
// default is AllCameras.
func WithCameraConfig(c CameraConfig) Option {
	return func(s *SoArm) error {
		cameras, err := c.Cameras()
		if err != nil {
			return err
		}
		s.cameras = cameras
		return nil
	}
}

// WithEpisodeCutoff sets the number of steps after which episodes are
// truncated. A cutoff of zero or less never truncates episodes.
func WithEpisodeCutoff(cutoff int) Option {
	return func(s *SoArm) error {
		s.cutoff = cutoff
		return nil
	}
}

// WithDiscount sets the discount of every timestep
func WithDiscount(discount float64) Option {
	return func(s *SoArm) error {
		if discount < 0 || discount > 1 {
			return fmt.Errorf("discount should be in [0, 1], have %v",
				discount)
		}
		s.discount = discount
		return nil
	}
}

// WithLogger sets the logger of the environment
func WithLogger(logger golog.Logger) Option {
	return func(s *SoArm) error {
		s.logger = logger
		return nil
	}
}

// New returns a new SoArm environment running task on phys, together
// with the first timestep of the first episode. The task is registered
// with phys.
func New(task environment.Task, phys physics.Physics,
	opts ...Option) (*SoArm, ts.TimeStep, error) {
	s := &SoArm{
		task:     task,
		physics:  phys,
		logger:   golog.Global(),
		obsType:  PixelsAgentPos,
		cameras:  tasks.Cameras(),
		discount: DefaultDiscount,
		cutoff:   DefaultEpisodeCutoff,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
		}
	}

	s.enders = []environment.Ender{
		environment.NewGoalEnder(task.MaxReward()),
		environment.NewStepLimit(s.cutoff),
	}
	s.actionSpec = environment.NewSpecFromIntervals(environment.Action,
		tasks.JointLimits[:])

	task.Register(phys)
	if c, ok := task.(cameraSetter); ok {
		if s.obsType.Renders() {
			c.SetCameras(s.cameras...)
		} else {
			c.SetCameras()
		}
	}

	firstStep, err := s.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %v", err)
	}
	return s, firstStep, nil
}

// Task returns the task the environment runs
func (s *SoArm) Task() environment.Task {
	return s.task
}

// Physics returns the physics the environment runs on
func (s *SoArm) Physics() physics.Physics {
	return s.physics
}

// ObsType returns the observation layout of the environment
func (s *SoArm) ObsType() ObsType {
	return s.obsType
}

// Cameras returns the cameras observations are rendered from
func (s *SoArm) Cameras() []string {
	return append([]string(nil), s.cameras...)
}

// Reset begins a new episode, keeping the placement settings of the
// previous episode
func (s *SoArm) Reset() (ts.TimeStep, error) {
	if s.closed {
		return ts.TimeStep{}, fmt.Errorf("reset: %v", physics.ErrClosed)
	}
	if err := s.task.InitializeEpisode(); err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not initialize "+
			"episode: %w", err)
	}

	obs := s.observe()
	s.currentTimeStep = ts.New(ts.First, 0, s.discount, obs, 0)
	return s.currentTimeStep, nil
}

// ResetWith applies opts to the task and begins a new episode. An
// invalid grid cell is rejected before any option is applied.
func (s *SoArm) ResetWith(opts ResetOptions) (ts.TimeStep, error) {
	if t, ok := s.task.(gridPlacer); ok {
		if err := t.SetCubeGridPosition(opts.CubeGridPosition); err != nil {
			return ts.TimeStep{}, fmt.Errorf("resetWith: %w", err)
		}
	} else if opts.CubeGridPosition != nil {
		s.logger.Debugw("task has no grid placement, ignoring cell",
			"cell", *opts.CubeGridPosition)
	}

	if opts.Seed != nil {
		if t, ok := s.task.(seeder); ok {
			t.Seed(*opts.Seed)
		}
	}

	if opts.TargetPosition != nil {
		if t, ok := s.task.(targeted); ok {
			t.SetTargetPosition(opts.TargetPosition)
		}
	}

	step, err := s.Reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("resetWith: %w", err)
	}
	return step, nil
}

// Step takes one environmental step given some action. The returned
// boolean reports whether the episode has ended.
func (s *SoArm) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	if s.closed {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", physics.ErrClosed)
	}
	if action.Len() != tasks.ArmDOF {
		return ts.TimeStep{}, true, fmt.Errorf("step: action should have "+
			"%v dimensions, have %v", tasks.ArmDOF, action.Len())
	}

	if err := s.task.BeforeStep(s.clipAction(action)); err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: %v", err)
	}
	if err := s.physics.Step(); err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not step "+
			"physics: %v", err)
	}

	reward := s.task.Reward()
	t := ts.New(ts.Mid, reward, s.discount, s.observe(),
		s.currentTimeStep.Number+1)

	done := false
	for _, ender := range s.enders {
		if ender.End(&t) {
			done = true
			break
		}
	}

	s.currentTimeStep = t
	return t, done, nil
}

// clipAction returns a copy of the argument action which is clipped to
// be within the joint limits of the arm
func (s *SoArm) clipAction(action *mat.VecDense) *mat.VecDense {
	values := make([]float64, action.Len())
	for i := range values {
		values[i] = action.AtVec(i)
	}
	return mat.NewVecDense(len(values),
		floatutils.ClipSlice(values, tasks.JointLimits[:]))
}

// observe returns the formatted observation of the current tick
func (s *SoArm) observe() *ts.Observation {
	return FormatObservation(s.task.Observation(), s.obsType, s.cameras)
}

// CurrentTimeStep returns the current time step
func (s *SoArm) CurrentTimeStep() ts.TimeStep {
	return s.currentTimeStep
}

// Render renders the front camera at the observation image size
func (s *SoArm) Render() (image.Image, error) {
	return s.RenderCamera(tasks.FrontCamera)
}

// RenderCamera renders the named camera at the observation image size
func (s *SoArm) RenderCamera(camera string) (image.Image, error) {
	if s.closed {
		return nil, fmt.Errorf("render: %v", physics.ErrClosed)
	}
	img, err := s.physics.Render(camera, tasks.ImageHeight, tasks.ImageWidth)
	if err != nil {
		return nil, fmt.Errorf("render: could not render %v: %w", camera,
			err)
	}
	return img, nil
}

// ActionSpec returns the action specification of the environment,
// which is bounded by the joint limits of the arm
func (s *SoArm) ActionSpec() environment.Spec {
	return s.actionSpec
}

// ObservationSpec returns the specification of the agent_pos
// observation, which is bounded by the joint limits of the arm with the
// gripper normalized onto [0, 1]
func (s *SoArm) ObservationSpec() environment.Spec {
	intervals := make([]r1.Interval, tasks.ArmDOF)
	copy(intervals, tasks.JointLimits[:])
	intervals[tasks.GripperIndex] = r1.Interval{Min: 0, Max: 1}

	return environment.NewSpecFromIntervals(environment.Observation,
		intervals)
}

// DiscountSpec returns the discount specification of the environment
func (s *SoArm) DiscountSpec() environment.Spec {
	shape := mat.NewVecDense(1, nil)
	lowerBound := mat.NewVecDense(1, []float64{s.discount})
	upperBound := mat.NewVecDense(1, []float64{s.discount})

	return environment.NewSpec(shape, environment.Discount, lowerBound,
		upperBound, environment.Continuous)
}

// Close closes the physics of the environment. Closing twice is a
// no-op.
func (s *SoArm) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.physics.Close(); err != nil {
		return fmt.Errorf("close: %v", err)
	}
	return nil
}
