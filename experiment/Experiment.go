// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"fmt"

	"github.com/edaniels/golog"
	"github.com/samuelfneumann/soarm/environment/envconfig"
	"github.com/samuelfneumann/soarm/experiment/tracker"
	ts "github.com/samuelfneumann/soarm/timestep"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments will track environment TimeSteps, caching each TimeStep
// in RAM to be later saved to disk. The Save() function
// will then take all cached data and save it to disk. This is usually
// performed after an experiment has been run. The Run() method will
// run all episodes util the maximum timestep limit is reached, or some
// other ending condition is reached. The RunEpisode() function will
// run a single episode.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments will
// send each TimeStep to Trackers using the Tracker's Track() method.
// The Tracker then determines which data from the TimeStep it caches
// and saves. New Trackers can be registered with an Experiment through
// the constructor or through an Experiment's Register() function.
type Experiment interface {
	Run(ctx context.Context) error

	// Returns whether or not the experiment limits have been reached
	RunEpisode(ctx context.Context) (bool, error)

	// Tracks current timestep by sending it to Trackers
	track(ts.TimeStep)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment.
type Config struct {
	Type
	MaxSteps    uint
	MaxEpisodes uint
	EnvConf     envconfig.Config
	PolicyConf  PolicyConfig
}

// CreateExp creates the experiment described by the Config. The
// environment is closed with Close on the returned closer.
func (c Config) CreateExp(logger golog.Logger,
	t ...tracker.Tracker) (Experiment, func() error, error) {
	env, _, err := c.EnvConf.Create(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("createExp: could not create "+
			"environment: %v", err)
	}

	policy, err := c.PolicyConf.CreatePolicy(env.ActionSpec(), c.EnvConf.Seed)
	if err != nil {
		env.Close()
		return nil, nil, fmt.Errorf("createExp: could not create policy: %v",
			err)
	}

	switch c.Type {
	case OnlineExp, "":
		return NewOnline(env, policy, c.MaxSteps, c.MaxEpisodes, logger,
			t...), env.Close, nil
	}

	env.Close()
	return nil, nil, fmt.Errorf("createExp: no such experiment type %v",
		c.Type)
}
