// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType determines why an episode ended
type EndType int

const (
	// Not ended yet
	Nil EndType = iota

	// The task was completed
	TerminalStateReached

	// The episode step limit was reached
	Timeout
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	default:
		return "Nil"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType
	Reward      float64
	Discount    float64
	Observation *Observation
	Number      int
	endType     EndType
}

// New returns a new TimeStep
func New(t StepType, r, d float64, o *Observation, n int) TimeStep {
	return TimeStep{StepType: t, Reward: r, Discount: d, Observation: o,
		Number: n}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

// SetEnd marks the TimeStep as the last of its episode, ended for
// reason e
func (t *TimeStep) SetEnd(e EndType) {
	t.StepType = Last
	t.endType = e
}

// EndType returns why the episode ended at this TimeStep
func (t *TimeStep) EndType() EndType {
	return t.endType
}

// Terminated returns whether the episode ended because the task was
// completed
func (t *TimeStep) Terminated() bool {
	return t.endType == TerminalStateReached
}

// Truncated returns whether the episode was cut off by a step limit
func (t *TimeStep) Truncated() bool {
	return t.endType == Timeout
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
