package environment

import (
	"github.com/samuelfneumann/soarm/timestep"
)

// FunctionEnder ends an episode whenever a function of the current
// timestep returns true.
type FunctionEnder struct {
	end     func(*timestep.TimeStep) bool
	endType timestep.EndType
}

// NewFunctionEnder returns a new FunctionEnder which ends episodes with
// end type endType when f returns true.
func NewFunctionEnder(f func(*timestep.TimeStep) bool,
	endType timestep.EndType) Ender {
	return &FunctionEnder{f, endType}
}

// NewGoalEnder returns an Ender which ends episodes as soon as the
// reward of a timestep reaches maxReward
func NewGoalEnder(maxReward float64) Ender {
	return NewFunctionEnder(func(t *timestep.TimeStep) bool {
		return t.Reward >= maxReward
	}, timestep.TerminalStateReached)
}

// End determines whether or not the current episode should be ended,
// returning a boolean to indicate episode termination. If the episode
// should be ended, End() will modify the timestep so that its StepType
// field is timestep.Last and its EndType is the appropriate ending
// type.
func (f *FunctionEnder) End(t *timestep.TimeStep) bool {
	if f.end(t) {
		t.SetEnd(f.endType)
		return true
	}
	return false
}
