package experiment

import (
	"fmt"

	"github.com/samuelfneumann/soarm/environment"
	ts "github.com/samuelfneumann/soarm/timestep"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Policy selects actions for an experiment
type Policy interface {
	SelectAction(t ts.TimeStep) *mat.VecDense
}

// UniformPolicy selects actions uniformly at random from the bounds of
// an action specification, scaled by a constant factor
type UniformPolicy struct {
	rand  *distmv.Uniform
	scale float64
}

// NewUniformPolicy returns a new UniformPolicy sampling from the bounds
// of spec. Sampled actions are multiplied by scale.
func NewUniformPolicy(spec environment.Spec, scale float64,
	seed uint64) *UniformPolicy {
	return &UniformPolicy{
		rand:  distmv.NewUniform(spec.Intervals(), rand.NewSource(seed)),
		scale: scale,
	}
}

// SelectAction returns a random action
func (u *UniformPolicy) SelectAction(ts.TimeStep) *mat.VecDense {
	action := mat.NewVecDense(u.rand.Dim(), u.rand.Rand(nil))
	action.ScaleVec(u.scale, action)
	return action
}

// HoldPolicy always selects the same action
type HoldPolicy struct {
	action *mat.VecDense
}

// NewHoldPolicy returns a new HoldPolicy selecting action
func NewHoldPolicy(action []float64) *HoldPolicy {
	return &HoldPolicy{mat.NewVecDense(len(action),
		append([]float64(nil), action...))}
}

// SelectAction returns a copy of the held action
func (h *HoldPolicy) SelectAction(ts.TimeStep) *mat.VecDense {
	return mat.VecDenseCopyOf(h.action)
}

// PolicyType names a Policy that can be created from a PolicyConfig
type PolicyType string

const (
	Uniform PolicyType = "uniform"
	Hold    PolicyType = "hold"
)

// PolicyConfig configures a Policy
type PolicyConfig struct {
	Type PolicyType

	// Scale multiplies uniform actions, zero means 1
	Scale float64

	// Action is the action of a hold policy
	Action []float64
}

// CreatePolicy returns the Policy described by the config, acting in
// the action space described by spec
func (c PolicyConfig) CreatePolicy(spec environment.Spec,
	seed uint64) (Policy, error) {
	switch c.Type {
	case Uniform, "":
		scale := c.Scale
		if scale == 0 {
			scale = 1.0
		}
		return NewUniformPolicy(spec, scale, seed), nil

	case Hold:
		if len(c.Action) != spec.Shape.Len() {
			return nil, fmt.Errorf("createPolicy: hold action should have "+
				"%v dimensions, have %v", spec.Shape.Len(), len(c.Action))
		}
		return NewHoldPolicy(c.Action), nil
	}

	return nil, fmt.Errorf("createPolicy: no such policy %v", c.Type)
}

