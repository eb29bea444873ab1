package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/fogleman/gg"
	"github.com/samuelfneumann/soarm/environment/envconfig"
	"github.com/samuelfneumann/soarm/environment/soarm"
	"github.com/samuelfneumann/soarm/experiment"
	"github.com/samuelfneumann/soarm/experiment/tracker"
	"github.com/samuelfneumann/soarm/experiment/trackers"
	"github.com/samuelfneumann/soarm/recorder"
	ts "github.com/samuelfneumann/soarm/timestep"
	"github.com/spf13/cobra"
)

// Grid cells of the example rollouts
var (
	centreCell  = 4
	cornerCells = []int{0, 2, 6, 8}
)

// rollout describes one phase of the run command: a random policy run
// for one episode in each cell
type rollout struct {
	name  string
	cells []int
	steps uint
	scale float64
}

func runCommand(f *flags) *cobra.Command {
	var (
		frames      string
		db          string
		steps       uint
		cornerSteps uint
		cornerScale float64
		progress    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Roll out random actions with the object at the centre and corner cells",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.envConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd)
			defer cancel()

			logger := golog.NewDevelopmentLogger("soarm")
			r := runner{config: c, logger: logger, frames: frames}
			if progress {
				r.progress = trackers.NewProgress(cmd.ErrOrStderr(), 40,
					int(steps+cornerSteps*uint(len(cornerCells))))
			}

			if frames != "" {
				if err := os.MkdirAll(frames, 0o755); err != nil {
					return fmt.Errorf("run: could not create frame "+
						"directory: %v", err)
				}
			}
			if db != "" {
				store, err := recorder.Open(ctx, db)
				if err != nil {
					return err
				}
				defer func() {
					if err := store.Close(); err != nil {
						logger.Errorw("could not close recorder", "error", err)
					}
				}()
				r.store = store
			}

			for _, phase := range []rollout{
				{"centre", []int{centreCell}, steps, 1.0},
				{"corners", cornerCells, cornerSteps, cornerScale},
			} {
				if err := r.run(ctx, phase); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&frames, "frames", "",
		"directory to save front camera frames to")
	cmd.Flags().StringVar(&db, "db", os.Getenv(dbEnv),
		"sqlite database to record rollouts to")
	cmd.Flags().UintVar(&steps, "steps", 20,
		"steps of the rollout at the centre cell")
	cmd.Flags().UintVar(&cornerSteps, "corner-steps", 5,
		"steps of each rollout at a corner cell")
	cmd.Flags().Float64Var(&cornerScale, "corner-scale", 0.1,
		"scale of random actions at the corner cells")
	cmd.Flags().BoolVar(&progress, "progress", false,
		"draw a progress bar instead of logging every step")
	return cmd
}

// runner runs the rollouts of the run command
type runner struct {
	config envconfig.Config
	logger golog.Logger
	frames string
	store  *recorder.Store

	progress *trackers.Progress
}

// run runs one episode of phase in each of its cells
func (r runner) run(ctx context.Context, phase rollout) error {
	c := r.config
	c.EpisodeCutoff = phase.steps

	env, _, err := c.Create(r.logger)
	if err != nil {
		return fmt.Errorf("run: could not create environment: %v", err)
	}
	defer closeEnv(env, r.logger)

	policy := experiment.NewUniformPolicy(env.ActionSpec(), phase.scale,
		c.Seed)

	var rec *recorder.Tracker
	if r.store != nil {
		rec = recorder.NewTracker(ctx, r.store, recorder.Episode{
			Environment: string(c.Environment),
			Task:        string(c.Task),
			Seed:        c.Seed,
		})
	}

	for _, cell := range phase.cells {
		cell := cell
		var t []tracker.Tracker
		if r.progress != nil {
			t = append(t, r.progress)
		} else {
			t = append(t, trackers.NewLog(r.logger.With("cell", cell)))
		}
		if rec != nil {
			rec.SetCell(&cell)
			t = append(t, rec)
		}
		if r.frames != "" {
			t = append(t, newFrameSaver(env, r.frames,
				fmt.Sprintf("%v_cell%v", phase.name, cell)))
		}

		exp := experiment.NewOnline(env, policy, phase.steps, 1, r.logger,
			t...)
		exp.SetResetOptions(soarm.ResetOptions{CubeGridPosition: &cell})
		if _, err := exp.RunEpisode(ctx); err != nil {
			return fmt.Errorf("run: %v rollout at cell %v: %w", phase.name,
				cell, err)
		}
		if err := exp.Save(); err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}
	return nil
}

// frameSaver saves the front camera frame of every tracked timestep as
// a PNG
type frameSaver struct {
	env    *soarm.SoArm
	dir    string
	prefix string
	err    error
}

func newFrameSaver(env *soarm.SoArm, dir, prefix string) *frameSaver {
	return &frameSaver{env: env, dir: dir, prefix: prefix}
}

// Track renders and saves the current frame
func (f *frameSaver) Track(t ts.TimeStep) {
	if f.err != nil {
		return
	}

	img, err := f.env.Render()
	if err != nil {
		f.err = fmt.Errorf("track: %v", err)
		return
	}
	name := filepath.Join(f.dir, fmt.Sprintf("%v_%04d.png", f.prefix,
		t.Number))
	if err := gg.SavePNG(name, img); err != nil {
		f.err = fmt.Errorf("track: could not save frame: %v", err)
	}
}

// Save returns the first error encountered while saving frames
func (f *frameSaver) Save() error {
	return f.err
}
