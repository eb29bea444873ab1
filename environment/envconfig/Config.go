// Package envconfig provides configuration structs for configuring
// SO-ARM environments with default physical parameters and tasks, and a
// registry of named environments. Environment configurations in this
// package are JSON serializable.
package envconfig

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/edaniels/golog"
	"github.com/samuelfneumann/soarm/environment"
	"github.com/samuelfneumann/soarm/environment/soarm"
	"github.com/samuelfneumann/soarm/environment/soarm/tasks"
	"github.com/samuelfneumann/soarm/physics/kinematic"
	ts "github.com/samuelfneumann/soarm/timestep"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	SoArm      EnvName = "SoArm-v0"
	SoArmStack EnvName = "SoArmStack-v0"
)

// TaskName stores the tasks that can be configured with this package.
// The tasks that can be used with each environment are as follows:
//
//	Environment			Task
//	SoArm-v0			pick_place
//						stacking
//	SoArmStack-v0		stacking
type TaskName string

// Tasks available for configuration
const (
	PickPlace TaskName = "pick_place"
	Stacking  TaskName = "stacking"
)

// Config implements a specific configuration of a specific environment
// and specific task
type Config struct {
	Environment   EnvName
	Task          TaskName
	ObsType       soarm.ObsType
	CameraConfig  soarm.CameraConfig
	EpisodeCutoff uint
	Discount      float64
	Seed          uint64

	// CubeGridPosition fixes the grid cell of the pick-and-place object,
	// nil places it randomly
	CubeGridPosition *int

	// WallClockReseed reseeds pick-and-place placement from the wall
	// clock every episode
	WallClockReseed bool

	// MaxPlacementAttempts bounds stacking placement, zero uses the
	// default
	MaxPlacementAttempts int
}

// NewConfig returns a new environment Config with default observation
// and episode settings for the named environment
func NewConfig(envName EnvName, taskName TaskName, seed uint64) Config {
	return Config{
		Environment:   envName,
		Task:          taskName,
		ObsType:       soarm.PixelsAgentPos,
		CameraConfig:  soarm.AllCameras,
		EpisodeCutoff: soarm.DefaultEpisodeCutoff,
		Discount:      soarm.DefaultDiscount,
		Seed:          seed,
	}
}

// LoadConfig reads a JSON Config from path. Fields missing from the file
// keep the defaults of NewConfig for SoArm-v0 with the pick_place task.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not read config: %v",
			err)
	}

	c := NewConfig(SoArm, PickPlace, 0)
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not decode config: %v",
			err)
	}
	return c, nil
}

// Save writes the Config to path as JSON
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return fmt.Errorf("save: could not encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save: could not write config: %v", err)
	}
	return nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(logger golog.Logger) (*soarm.SoArm, ts.TimeStep,
	error) {
	return Make(c.Environment, c, logger)
}

// options returns the environment options described by the Config
func (c Config) options(logger golog.Logger) []soarm.Option {
	opts := []soarm.Option{
		soarm.WithEpisodeCutoff(int(c.EpisodeCutoff)),
		soarm.WithDiscount(c.Discount),
		soarm.WithLogger(logger),
	}
	if c.ObsType != "" {
		opts = append(opts, soarm.WithObsType(c.ObsType))
	}
	if c.CameraConfig != "" {
		opts = append(opts, soarm.WithCameraConfig(c.CameraConfig))
	}
	return opts
}

// NewTask returns the task named by the Config
func (c Config) NewTask(logger golog.Logger) (environment.Task, error) {
	switch c.Task {
	case PickPlace, "":
		task := tasks.NewPickPlace(c.Seed, logger,
			tasks.WithWallClockReseed(c.WallClockReseed))
		if err := task.SetCubeGridPosition(c.CubeGridPosition); err != nil {
			return nil, fmt.Errorf("newTask: %w", err)
		}
		return task, nil

	case Stacking:
		var opts []tasks.StackingOption
		if c.MaxPlacementAttempts > 0 {
			opts = append(opts,
				tasks.WithMaxPlacementAttempts(c.MaxPlacementAttempts))
		}
		return tasks.NewStacking(c.Seed, logger, opts...), nil
	}

	return nil, fmt.Errorf("newTask: no such task %v", c.Task)
}

// CreateSoArm is a factory for creating the SO-ARM environment on the
// kinematic physics with the cube scene
func CreateSoArm(c Config, logger golog.Logger) (*soarm.SoArm, ts.TimeStep,
	error) {
	task, err := c.NewTask(logger)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createSoArm: %w", err)
	}

	sim, err := kinematic.New(kinematic.CubesModel())
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createSoArm: could not "+
			"create physics: %v", err)
	}

	env, step, err := soarm.New(task, sim, c.options(logger)...)
	if err != nil {
		sim.Close()
		return nil, ts.TimeStep{}, fmt.Errorf("createSoArm: %w", err)
	}
	return env, step, nil
}

// CreateSoArmStack is a factory for creating the SO-ARM environment
// with the stacking task, whatever task the Config names
func CreateSoArmStack(c Config, logger golog.Logger) (*soarm.SoArm,
	ts.TimeStep, error) {
	c.Task = Stacking
	return CreateSoArm(c, logger)
}
