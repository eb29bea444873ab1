package experiment

import (
	"context"
	"fmt"

	"github.com/edaniels/golog"
	"github.com/samuelfneumann/soarm/environment"
	"github.com/samuelfneumann/soarm/environment/soarm"
	"github.com/samuelfneumann/soarm/experiment/tracker"
	ts "github.com/samuelfneumann/soarm/timestep"
)

// resetter is an Environment that can begin episodes with reset
// options
type resetter interface {
	ResetWith(opts soarm.ResetOptions) (ts.TimeStep, error)
}

// Online is an Experiment that rolls out a policy online. Episodes run
// until the environment ends them or the experiment step limit is
// reached.
type Online struct {
	environment.Environment
	Policy
	logger golog.Logger

	maxSteps     uint
	maxEpisodes  uint
	currentSteps uint
	episodes     uint

	resetOpts *soarm.ResetOptions
	trackers  []tracker.Tracker
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given policy. The steps parameter determines how
// many timesteps the experiment is run for, the episodes parameter how
// many episodes (zero for no limit), and the t parameter is a slice of
// tracker.Tracker which determine what data is saved.
func NewOnline(e environment.Environment, p Policy, steps, episodes uint,
	logger golog.Logger, t ...tracker.Tracker) *Online {
	if logger == nil {
		logger = golog.Global()
	}
	return &Online{
		Environment: e,
		Policy:      p,
		logger:      logger,
		maxSteps:    steps,
		maxEpisodes: episodes,
		trackers:    t,
	}
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// SetResetOptions sets the options every following episode begins
// with. Options are ignored by environments that cannot apply them.
func (o *Online) SetResetOptions(opts soarm.ResetOptions) {
	o.resetOpts = &opts
}

// Steps returns the number of steps taken so far
func (o *Online) Steps() uint {
	return o.currentSteps
}

// Episodes returns the number of episodes run so far
func (o *Online) Episodes() uint {
	return o.episodes
}

// reset begins a new episode
func (o *Online) reset() (ts.TimeStep, error) {
	if o.resetOpts != nil {
		if r, ok := o.Environment.(resetter); ok {
			return r.ResetWith(*o.resetOpts)
		}
	}
	return o.Environment.Reset()
}

// RunEpisode runs a single episode of the experiment. It returns
// whether the experiment has reached its step or episode limit.
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	step, err := o.reset()
	if err != nil {
		return true, fmt.Errorf("runEpisode: could not reset: %w", err)
	}
	o.track(step)

	// Run the next timestep
	for !step.Last() && o.currentSteps < o.maxSteps {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		o.currentSteps++

		// Select action, step in environment
		action := o.Policy.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return true, fmt.Errorf("runEpisode: could not step: %w", err)
		}

		// Cache the environment step in each Tracker
		o.track(step)
	}
	o.episodes++

	// Return whether or not the limits have been reached
	return o.currentSteps >= o.maxSteps ||
		(o.maxEpisodes > 0 && o.episodes >= o.maxEpisodes), nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run(ctx context.Context) error {
	for {
		ended, err := o.RunEpisode(ctx)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		if ended {
			o.logger.Debugw("experiment finished", "steps", o.currentSteps,
				"episodes", o.episodes)
			return nil
		}
	}
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}
