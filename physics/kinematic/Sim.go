package kinematic

import (
	"fmt"
	"math"
	"sort"

	"github.com/ByteArena/box2d"
	"github.com/golang/geo/r3"
	"github.com/samuelfneumann/soarm/physics"
	"github.com/samuelfneumann/soarm/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r1"
)

// Default simulation parameters
const (
	DefaultTimestep float64 = 0.02
	DefaultGain     float64 = 10.0
)

// geomState is a geometry together with its current world placement
type geomState struct {
	Geom
	pos r3.Vector
	yaw float64
}

// footprint returns the horizontal bounding box of the geometry grown
// by margin on every side
func (g geomState) footprint(margin float64) box2d.B2AABB {
	c, s := math.Abs(math.Cos(g.yaw)), math.Abs(math.Sin(g.yaw))
	hx := c*g.HalfSize.X + s*g.HalfSize.Y + margin
	hy := s*g.HalfSize.X + c*g.HalfSize.Y + margin

	return box2d.B2AABB{
		LowerBound: box2d.MakeB2Vec2(g.pos.X-hx, g.pos.Y-hy),
		UpperBound: box2d.MakeB2Vec2(g.pos.X+hx, g.pos.Y+hy),
	}
}

// heights returns the vertical extent of the geometry grown by margin
func (g geomState) heights(margin float64) r1.Interval {
	return r1.Interval{
		Min: g.pos.Z - g.HalfSize.Z - margin,
		Max: g.pos.Z + g.HalfSize.Z + margin,
	}
}

// touches returns whether the bounding boxes of g and o overlap
func (g geomState) touches(o geomState) bool {
	if !box2d.B2TestOverlapBoundingBoxes(g.footprint(ContactMargin),
		o.footprint(ContactMargin)) {
		return false
	}
	a, b := g.heights(ContactMargin), o.heights(ContactMargin)
	return a.Min <= b.Max && b.Min <= a.Max
}

// Sim is the kinematic Physics. Sim satisfies the physics.Physics
// interface.
type Sim struct {
	model Model

	// Timestep is the simulated duration of a single Step in seconds
	// and Gain the rate (1/s) at which joints approach their targets
	Timestep float64
	Gain     float64

	qpos []float64
	qvel []float64
	ctrl []float64

	qposAdr  map[string]int
	qvelAdr  map[string]int
	bodyGeom map[string]int

	geoms    []geomState
	contacts []physics.Contact
	tip      r3.Vector
	yaw      float64

	grasped     string
	graspOffset r3.Vector

	inReset bool
	closed  bool
}

// New returns a new Sim of the argument model with every joint at zero
// (clipped into its range) and every body at its initial position.
func New(m Model) (*Sim, error) {
	if len(m.Joints) != 6 {
		return nil, fmt.Errorf("new: model should have 6 arm joints, "+
			"have %v", len(m.Joints))
	}

	s := &Sim{
		model:    m,
		Timestep: DefaultTimestep,
		Gain:     DefaultGain,
		qpos:     make([]float64, m.nq()),
		qvel:     make([]float64, m.nv()),
		ctrl:     make([]float64, len(m.Joints)),
		qposAdr:  make(map[string]int, len(m.Bodies)),
		qvelAdr:  make(map[string]int, len(m.Bodies)),
		bodyGeom: make(map[string]int, len(m.Bodies)),
	}

	for i, j := range m.Joints {
		s.qpos[i] = floatutils.ClipInterval(0, j.Range)
		s.ctrl[i] = s.qpos[i]
	}

	for i, b := range m.Bodies {
		if _, ok := s.qposAdr[b.Name]; ok {
			return nil, fmt.Errorf("new: duplicate body %q", b.Name)
		}
		adr := len(m.Joints) + physics.FreeJointDOF*i
		s.qposAdr[b.Name] = adr
		s.qvelAdr[b.Name] = len(m.Joints) + 6*i

		s.qpos[adr] = b.Init.X
		s.qpos[adr+1] = b.Init.Y
		s.qpos[adr+2] = b.Init.Z
		copy(s.qpos[adr+3:adr+physics.FreeJointDOF],
			physics.IdentityQuaternion[:])
	}

	s.geoms = make([]geomState, len(m.Geoms))
	for i, g := range m.Geoms {
		if g.Body != "" && g.Body != GripperBody {
			if _, ok := s.qposAdr[g.Body]; !ok {
				return nil, fmt.Errorf("new: geom %q attached to unknown "+
					"body %q", g.Name, g.Body)
			}
			if _, ok := s.bodyGeom[g.Body]; !ok {
				s.bodyGeom[g.Body] = i
			}
		}
		s.geoms[i] = geomState{Geom: g}
	}

	s.forward()
	return s, nil
}

// ResetContext runs fn with mutable access to the simulator state and
// recomputes the gripper placement, geometry placements and contacts
// afterwards. Any grasp is released.
func (s *Sim) ResetContext(fn func(physics.State) error) error {
	if s.closed {
		return physics.ErrClosed
	}
	if s.inReset {
		return fmt.Errorf("resetContext: already inside a reset context")
	}

	s.inReset = true
	defer func() {
		s.inReset = false
		s.grasped = ""
		s.forward()
	}()

	return fn(&state{s})
}

// SetControls sets the actuator targets of the first len(values) joints
func (s *Sim) SetControls(values []float64) error {
	if s.closed {
		return physics.ErrClosed
	}
	return s.setControls(0, values)
}

func (s *Sim) setControls(start int, values []float64) error {
	if start < 0 || start+len(values) > len(s.ctrl) {
		return fmt.Errorf("setControls: controls [%v, %v) out of range "+
			"for %v actuators", start, start+len(values), len(s.ctrl))
	}
	copy(s.ctrl[start:], values)
	return nil
}

// Step advances the simulation by one Timestep
func (s *Sim) Step() error {
	if s.closed {
		return physics.ErrClosed
	}

	// Servo the joints towards their targets
	alpha := 1 - math.Exp(-s.Gain*s.Timestep)
	for i, j := range s.model.Joints {
		target := floatutils.ClipInterval(s.ctrl[i], j.Range)
		next := s.qpos[i] + alpha*(target-s.qpos[i])
		s.qvel[i] = (next - s.qpos[i]) / s.Timestep
		s.qpos[i] = next
	}

	before := make(map[string]r3.Vector, len(s.model.Bodies))
	for _, b := range s.model.Bodies {
		before[b.Name] = s.bodyPos(b.Name)
	}

	s.forward()
	if s.grasped != "" {
		s.setBodyPos(s.grasped, s.tip.Add(s.graspOffset))
		s.forward()
		if !s.squeezed(s.grasped) {
			s.grasped = ""
		}
	}

	s.settle()
	s.forward()

	if s.grasped == "" {
		for _, b := range s.model.Bodies {
			if s.squeezed(b.Name) {
				s.grasped = b.Name
				s.graspOffset = s.bodyPos(b.Name).Sub(s.tip)
				break
			}
		}
	}

	for _, b := range s.model.Bodies {
		adr := s.qvelAdr[b.Name]
		v := s.bodyPos(b.Name).Sub(before[b.Name]).Mul(1 / s.Timestep)
		s.qvel[adr], s.qvel[adr+1], s.qvel[adr+2] = v.X, v.Y, v.Z
		s.qvel[adr+3], s.qvel[adr+4], s.qvel[adr+5] = 0, 0, 0
	}

	return nil
}

// settle lowers every body that is not grasped onto the highest
// support below it, either the table or another settled body
func (s *Sim) settle() {
	bodies := make([]string, 0, len(s.model.Bodies))
	for _, b := range s.model.Bodies {
		if b.Name != s.grasped {
			bodies = append(bodies, b.Name)
		}
	}
	sort.SliceStable(bodies, func(i, j int) bool {
		return s.bodyPos(bodies[i]).Z < s.bodyPos(bodies[j]).Z
	})

	var settled []geomState
	if s.grasped != "" {
		settled = append(settled, s.geoms[s.bodyGeom[s.grasped]])
	}
	for _, name := range bodies {
		g := s.geoms[s.bodyGeom[name]]
		support := TableTop
		for _, o := range settled {
			below := o.pos.Z < g.pos.Z
			if below && box2d.B2TestOverlapBoundingBoxes(
				g.footprint(-ContactMargin), o.footprint(-ContactMargin)) {
				support = math.Max(support, o.pos.Z+o.HalfSize.Z)
			}
		}

		pos := s.bodyPos(name)
		pos.Z = support + g.HalfSize.Z
		s.setBodyPos(name, pos)

		g.pos.Z = pos.Z
		settled = append(settled, g)
	}
}

// squeezed returns whether every gripper pad touches the geometry of
// the named body
func (s *Sim) squeezed(body string) bool {
	i, ok := s.bodyGeom[body]
	if !ok {
		return false
	}
	name := s.geoms[i].Name

	pads, touching := 0, 0
	for _, g := range s.geoms {
		if g.Body != GripperBody {
			continue
		}
		pads++
		for _, c := range s.contacts {
			if c.Involves(g.Name) && c.Involves(name) {
				touching++
				break
			}
		}
	}
	return pads >= 2 && touching == pads
}

// forward recomputes the quantities derived from qpos
func (s *Sim) forward() {
	s.tip, s.yaw = Tip(s.model.Base, s.qpos[:len(s.model.Joints)])
	offset := padOffset(s.qpos[5], s.model.Joints[5].Range)
	side := lateral(s.yaw)

	pads := 0
	for i := range s.geoms {
		g := &s.geoms[i]
		switch g.Body {
		case "":
			g.pos, g.yaw = g.Pos, 0

		case GripperBody:
			sign := -1.0
			if pads%2 == 1 {
				sign = 1.0
			}
			g.pos = s.tip.Add(side.Mul(sign * offset)).Add(g.Pos)
			g.yaw = s.yaw
			pads++

		default:
			adr := s.qposAdr[g.Body]
			var quat physics.Quaternion
			copy(quat[:], s.qpos[adr+3:adr+physics.FreeJointDOF])
			g.pos = s.bodyPos(g.Body).Add(g.Pos)
			g.yaw = quaternionYaw(quat)
		}
	}

	s.contacts = s.contacts[:0]
	for i := range s.geoms {
		for j := i + 1; j < len(s.geoms); j++ {
			a, b := s.geoms[i], s.geoms[j]
			if a.Body != "" && a.Body == b.Body {
				continue
			}
			if a.touches(b) {
				s.contacts = append(s.contacts, physics.Contact{
					Geom1: a.Name,
					Geom2: b.Name,
				})
			}
		}
	}
}

func (s *Sim) bodyPos(name string) r3.Vector {
	adr := s.qposAdr[name]
	return r3.Vector{X: s.qpos[adr], Y: s.qpos[adr+1], Z: s.qpos[adr+2]}
}

func (s *Sim) setBodyPos(name string, pos r3.Vector) {
	adr := s.qposAdr[name]
	s.qpos[adr], s.qpos[adr+1], s.qpos[adr+2] = pos.X, pos.Y, pos.Z
}

// QPos returns a copy of the joint positions
func (s *Sim) QPos() []float64 {
	return append([]float64(nil), s.qpos...)
}

// QVel returns a copy of the joint velocities
func (s *Sim) QVel() []float64 {
	return append([]float64(nil), s.qvel...)
}

// FreeJoint returns the qpos address of the named free body
func (s *Sim) FreeJoint(name string) (int, bool) {
	adr, ok := s.qposAdr[name]
	return adr, ok
}

// Contacts returns the contact pairs of the current tick
func (s *Sim) Contacts() []physics.Contact {
	return append([]physics.Contact(nil), s.contacts...)
}

// GeomNames returns the names of all geometries in the model
func (s *Sim) GeomNames() []string {
	names := make([]string, len(s.geoms))
	for i := range s.geoms {
		names[i] = s.geoms[i].Name
	}
	return names
}

// Sensor returns the gripper tip position (x, y, z) or orientation
// (w, x, y, z) if the model exposes the named sensor
func (s *Sim) Sensor(name string) ([]float64, bool) {
	if !s.model.hasSensor(name) {
		return nil, false
	}

	switch name {
	case GripperPosSensor:
		return []float64{s.tip.X, s.tip.Y, s.tip.Z}, true
	case GripperQuatSensor:
		q := yawQuaternion(s.yaw)
		return q[:], true
	}
	return nil, false
}

// GripperTip returns the current position of the gripper tip
func (s *Sim) GripperTip() r3.Vector {
	return s.tip
}

// Grasped returns the name of the body carried by the gripper, or the
// empty string if the gripper carries nothing
func (s *Sim) Grasped() string {
	return s.grasped
}

// Close releases the simulator. All later calls return
// physics.ErrClosed.
func (s *Sim) Close() error {
	if s.closed {
		return physics.ErrClosed
	}
	s.closed = true
	return nil
}

// state is the physics.State handed out inside ResetContext
type state struct {
	sim *Sim
}

func (st *state) SetQPos(start int, values []float64) error {
	if start < 0 || start+len(values) > len(st.sim.qpos) {
		return fmt.Errorf("setQPos: slots [%v, %v) out of range for "+
			"%v positions", start, start+len(values), len(st.sim.qpos))
	}
	copy(st.sim.qpos[start:], values)
	return nil
}

func (st *state) SetControls(start int, values []float64) error {
	return st.sim.setControls(start, values)
}

func (st *state) WritePose(object string, pos r3.Vector,
	quat physics.Quaternion) bool {
	adr, ok := st.sim.qposAdr[object]
	if !ok {
		return false
	}
	st.sim.setBodyPos(object, pos)
	copy(st.sim.qpos[adr+3:adr+physics.FreeJointDOF], quat[:])
	return true
}
