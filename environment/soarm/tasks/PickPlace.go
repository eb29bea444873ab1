package tasks

import (
	"fmt"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/samuelfneumann/soarm/environment"
	"github.com/samuelfneumann/soarm/physics"
)

// Placement describes where an object was put at the start of an
// episode
type Placement struct {
	Cell       int
	Angle      float64
	Position   r3.Vector
	Quaternion physics.Quaternion

	// Specified is true if the cell was fixed by SetCubeGridPosition
	// rather than sampled
	Specified bool
}

// PickPlace implements the pick-and-place task. At the start of each
// episode a single object is placed at the centre of one of nine grid
// cells around the table centre, rotated about the vertical axis by one
// of RotationAngles. The agent is rewarded on a ladder:
//
//	0.0  the gripper does not touch the object
//	0.3  the gripper touches the object, which still touches the table
//	0.6  the gripper holds the object above the table
//	1.0  the held object is within TargetTolerance of the target
//
// The last rung can only be reached once a target position has been
// set.
//
// PickPlace satisfies the environment.Task interface.
type PickPlace struct {
	*SoArmTask

	object         string
	targetPosition *r3.Vector
	objectPicked   bool

	cubeGridPosition *int
	wallClockReseed  bool
	placement        *environment.CategoricalStarter
	lastPlacement    Placement

	tags *Tagger
}

// PickPlaceOption configures a PickPlace task
type PickPlaceOption func(*PickPlace)

// WithObject sets the name of the object that is placed and rewarded.
// The default is BlueCube.
func WithObject(name string) PickPlaceOption {
	return func(p *PickPlace) {
		p.object = name
	}
}

// WithTargetPosition sets the position the object should be placed at
func WithTargetPosition(target r3.Vector) PickPlaceOption {
	return func(p *PickPlace) {
		p.SetTargetPosition(&target)
	}
}

// WithWallClockReseed makes the task reseed its placement sampler from
// the wall clock at the start of every episode, so that consecutive
// episodes differ even when the task was constructed with a fixed seed
func WithWallClockReseed(reseed bool) PickPlaceOption {
	return func(p *PickPlace) {
		p.wallClockReseed = reseed
	}
}

// NewPickPlace returns a new PickPlace task, drawing placements with the
// argument seed. If logger is nil, the global logger is used.
func NewPickPlace(seed uint64, logger golog.Logger,
	opts ...PickPlaceOption) *PickPlace {
	p := &PickPlace{
		SoArmTask: NewSoArmTask(logger),
		object:    BlueCube,
		placement: environment.NewCategoricalStarter(
			[]int{GridCells, len(RotationAngles)}, seed),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register attaches the physics the task runs on and resolves the
// reward tags of its geometries
func (p *PickPlace) Register(phys physics.Physics) {
	p.SoArmTask.Register(phys)
	p.tags = NewTagger(phys.GeomNames(), p.object)
}

// Seed reseeds the placement sampler
func (p *PickPlace) Seed(seed uint64) {
	p.placement.Seed(seed)
}

// Object returns the name of the placed and rewarded object
func (p *PickPlace) Object() string {
	return p.object
}

// SetCubeGridPosition fixes the grid cell the object is placed in for
// subsequent episodes. A nil cell restores random placement. Cells
// outside [0, GridCells) are rejected with an error wrapping
// ErrInvalidGridPosition and leave the setting unchanged.
func (p *PickPlace) SetCubeGridPosition(cell *int) error {
	if cell == nil {
		p.cubeGridPosition = nil
		return nil
	}
	if err := ValidateGridPosition(*cell); err != nil {
		return fmt.Errorf("setCubeGridPosition: %w", err)
	}

	c := *cell
	p.cubeGridPosition = &c
	return nil
}

// CubeGridPosition returns the fixed grid cell, or nil if placement is
// random
func (p *PickPlace) CubeGridPosition() *int {
	if p.cubeGridPosition == nil {
		return nil
	}
	c := *p.cubeGridPosition
	return &c
}

// SetTargetPosition sets the position the object should be placed at.
// A nil target removes it.
func (p *PickPlace) SetTargetPosition(target *r3.Vector) {
	if target == nil {
		p.targetPosition = nil
		return
	}
	t := *target
	p.targetPosition = &t
}

// TargetPosition returns the target position, if one is set
func (p *PickPlace) TargetPosition() (r3.Vector, bool) {
	if p.targetPosition == nil {
		return r3.Vector{}, false
	}
	return *p.targetPosition, true
}

// ObjectPicked returns whether the object has been held above the table
// during the current episode
func (p *PickPlace) ObjectPicked() bool {
	return p.objectPicked
}

// LastPlacement returns the placement of the current episode
func (p *PickPlace) LastPlacement() Placement {
	return p.lastPlacement
}

// InitializeEpisode moves the arm to its start pose and places the
// object in a grid cell with a random rotation
func (p *PickPlace) InitializeEpisode() error {
	phys := p.mustPhysics("initializeEpisode")
	if err := p.SoArmTask.InitializeEpisode(); err != nil {
		return err
	}
	p.objectPicked = false

	if p.wallClockReseed {
		p.placement.Seed(uint64(time.Now().UnixNano()) % (1 << 32))
	}

	sample := p.placement.Sample()
	placement := Placement{
		Cell:  sample[0],
		Angle: RotationAngles[sample[1]],
	}
	if p.cubeGridPosition != nil {
		placement.Cell = *p.cubeGridPosition
		placement.Specified = true
	}

	pos, err := GridPosition(placement.Cell)
	if err != nil {
		return fmt.Errorf("initializeEpisode: %v", err)
	}
	placement.Position = pos
	placement.Quaternion = RotationQuaternion(placement.Angle)

	mode := "random"
	if placement.Specified {
		mode = "specified"
	}
	p.logger.Infow("placing object", "object", p.object, "mode", mode,
		"cell", placement.Cell, "angle", placement.Angle,
		"x", pos.X, "y", pos.Y)

	err = phys.ResetContext(func(s physics.State) error {
		if !s.WritePose(p.object, placement.Position,
			placement.Quaternion) {
			p.logger.Debugw("object not in scene, skipping placement",
				"object", p.object)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("initializeEpisode: could not place %v: %v",
			p.object, err)
	}

	p.lastPlacement = placement
	return nil
}

// Reward returns the reward of the current tick. Holding the object
// above the table marks the object as picked for the rest of the
// episode.
func (p *PickPlace) Reward() float64 {
	phys := p.mustPhysics("reward")

	var touching, onTable bool
	for _, c := range phys.Contacts() {
		if p.tags.Pairs(c.Geom1, c.Geom2, TagObject, TagGripper) {
			touching = true
		}
		if p.tags.Pairs(c.Geom1, c.Geom2, TagObject, TagTable) {
			onTable = true
		}
	}

	if !touching {
		return 0.0
	}
	if onTable {
		return 0.3
	}

	p.objectPicked = true
	if p.targetPosition != nil {
		pos, ok := objectPosition(phys, phys.QPos(), p.object)
		if ok && horizontalDistance(pos, *p.targetPosition) < TargetTolerance {
			return 1.0
		}
	}
	return 0.6
}

// horizontalDistance returns the distance between a and b in the xy
// plane
func horizontalDistance(a, b r3.Vector) float64 {
	d := a.Sub(b)
	d.Z = 0
	return d.Norm()
}
