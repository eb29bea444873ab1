// Package environment outlines the interfaces and structs needed to
// implement concrete environments and the tasks that run inside them
package environment

import (
	"github.com/samuelfneumann/soarm/physics"
	ts "github.com/samuelfneumann/soarm/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
	Seed(seed uint64)
}

// Ender determines when episodes should be ended
type Ender interface {
	End(*ts.TimeStep) bool
}

// Task implements the episode lifecycle of a manipulation task running
// on a physics simulator: scene initialization, action injection,
// observation extraction and reward computation.
//
// A Task must be registered with a Physics before any other method is
// called.
type Task interface {
	// Register attaches the physics the task runs on
	Register(p physics.Physics)

	// InitializeEpisode sets the state of the scene at the start of
	// each episode
	InitializeEpisode() error

	// BeforeStep applies an action. It must be called before every
	// physics step.
	BeforeStep(action mat.Vector) error

	// Observation returns the observation bundle of the current tick
	Observation() *ts.Observation

	// Reward returns the reward of the current tick, which is in
	// [0, MaxReward()]
	Reward() float64
	MaxReward() float64
}

// Environment implements a simulated environment, which includes a Task
// to complete
type Environment interface {
	Reset() (ts.TimeStep, error)
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep
	ActionSpec() Spec
	ObservationSpec() Spec
	DiscountSpec() Spec
	Close() error
}
