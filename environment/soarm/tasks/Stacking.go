package tasks

import (
	"fmt"
	"math"

	"github.com/edaniels/golog"
	"github.com/go-errors/errors"
	"github.com/golang/geo/r3"
	"github.com/samuelfneumann/soarm/environment"
	"github.com/samuelfneumann/soarm/physics"
)

// DefaultMaxPlacementAttempts is the default number of positions drawn
// for the second object before scene initialization fails
const DefaultMaxPlacementAttempts = 1000

// ErrSceneInitialization is returned when a scene cannot be placed
var ErrSceneInitialization = errors.New("scene initialization failed")

// Stacking implements the stacking task. At the start of each episode
// the red and blue cubes are placed at random positions in the
// workspace, more than MinSeparation apart. The agent is rewarded 0.5
// for aligning the cubes horizontally and 1.0 for resting one on top of
// the other.
//
// Stacking satisfies the environment.Task interface.
type Stacking struct {
	*SoArmTask

	objects     [2]string
	sampler     environment.Starter
	maxAttempts int
}

// StackingOption configures a Stacking task
type StackingOption func(*Stacking)

// WithWorkspaceSampler sets the sampler that object positions are drawn
// from. Only the first two dimensions of each sample are used.
func WithWorkspaceSampler(sampler environment.Starter) StackingOption {
	return func(s *Stacking) {
		s.sampler = sampler
	}
}

// WithMaxPlacementAttempts bounds the number of positions drawn for the
// second object
func WithMaxPlacementAttempts(n int) StackingOption {
	return func(s *Stacking) {
		s.maxAttempts = n
	}
}

// NewStacking returns a new Stacking task, drawing object positions
// uniformly from WorkspaceBounds with the argument seed. If logger is
// nil, the global logger is used.
func NewStacking(seed uint64, logger golog.Logger,
	opts ...StackingOption) *Stacking {
	s := &Stacking{
		SoArmTask:   NewSoArmTask(logger),
		objects:     [2]string{RedCube, BlueCube},
		sampler:     environment.NewUniformStarter(WorkspaceBounds, seed),
		maxAttempts: DefaultMaxPlacementAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxAttempts <= 0 {
		panic(fmt.Sprintf("newStacking: maximum placement attempts must "+
			"be positive, have %v", s.maxAttempts))
	}
	return s
}

// Seed reseeds the workspace sampler
func (s *Stacking) Seed(seed uint64) {
	s.sampler.Seed(seed)
}

// sample draws a resting position from the workspace sampler
func (s *Stacking) sample() r3.Vector {
	v := s.sampler.Start()
	if v.Len() < 2 {
		panic(fmt.Sprintf("sample: workspace sampler should return at "+
			"least (x, y), have %v dimensions", v.Len()))
	}
	return r3.Vector{X: v.AtVec(0), Y: v.AtVec(1), Z: TableHeight}
}

// InitializeEpisode moves the arm to its start pose and places both
// cubes on the table, more than MinSeparation apart
func (s *Stacking) InitializeEpisode() error {
	phys := s.mustPhysics("initializeEpisode")
	if err := s.SoArmTask.InitializeEpisode(); err != nil {
		return err
	}

	first := s.sample()
	var second r3.Vector
	placed := false
	for i := 0; i < s.maxAttempts; i++ {
		second = s.sample()
		if horizontalDistance(first, second) > MinSeparation {
			placed = true
			break
		}
	}
	if !placed {
		return fmt.Errorf("initializeEpisode: %w: no position more than "+
			"%v from %v in %v attempts", ErrSceneInitialization,
			MinSeparation, s.objects[0], s.maxAttempts)
	}

	err := phys.ResetContext(func(st physics.State) error {
		for i, pos := range [2]r3.Vector{first, second} {
			if !st.WritePose(s.objects[i], pos, physics.IdentityQuaternion) {
				s.logger.Debugw("object not in scene, skipping placement",
					"object", s.objects[i])
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("initializeEpisode: could not place objects: %v",
			err)
	}

	s.logger.Debugw("placed objects", s.objects[0], first, s.objects[1],
		second)
	return nil
}

// Reward returns 1.0 if one cube rests on the other, 0.5 if the cubes
// are aligned horizontally and 0.0 otherwise or if either cube is
// missing from the scene
func (s *Stacking) Reward() float64 {
	phys := s.mustPhysics("reward")
	qpos := phys.QPos()

	a, okA := objectPosition(phys, qpos, s.objects[0])
	b, okB := objectPosition(phys, qpos, s.objects[1])
	if !okA || !okB {
		return 0.0
	}

	if horizontalDistance(a, b) >= AlignTolerance {
		return 0.0
	}

	gap := math.Abs(a.Z - b.Z)
	if gap > StackGap.Min && gap < StackGap.Max {
		return 1.0
	}
	return 0.5
}
