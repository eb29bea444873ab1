package main

import (
	"fmt"

	"github.com/edaniels/golog"
	"github.com/samuelfneumann/soarm/environment/envconfig"
	"github.com/samuelfneumann/soarm/environment/soarm"
	"github.com/samuelfneumann/soarm/environment/soarm/tasks"
	ts "github.com/samuelfneumann/soarm/timestep"
	"github.com/spf13/cobra"
)

func checkObsCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check-obs",
		Short: "Print the observation keys and shapes of every observation type",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.envConfig(cmd)
			if err != nil {
				return err
			}
			logger := golog.NewDevelopmentLogger("soarm")

			for _, obsType := range []soarm.ObsType{soarm.State, soarm.Pixels,
				soarm.PixelsAgentPos} {
				c.ObsType = obsType
				step, err := createAndClose(c, logger)
				if err != nil {
					return err
				}

				printf(cmd, "%v\n", obsType)
				printObservation(cmd, step.Observation)
			}
			return nil
		},
	}
}

func camerasCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "cameras",
		Short: "Verify that every camera config yields full size frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.envConfig(cmd)
			if err != nil {
				return err
			}
			logger := golog.NewDevelopmentLogger("soarm")
			c.ObsType = soarm.Pixels

			for _, config := range []soarm.CameraConfig{soarm.FrontOnly,
				soarm.FrontWrist, soarm.AllCameras} {
				c.CameraConfig = config
				step, err := createAndClose(c, logger)
				if err != nil {
					return err
				}

				cameras, err := config.Cameras()
				if err != nil {
					return err
				}
				for _, camera := range cameras {
					img, ok := step.Observation.Pixels[camera]
					if !ok {
						return fmt.Errorf("cameras: %v has no %v image",
							config, camera)
					}
					shape := img.Shape()
					if len(shape) != 3 || shape[0] != tasks.ImageHeight ||
						shape[1] != tasks.ImageWidth || shape[2] != 3 {
						return fmt.Errorf("cameras: %v image of %v has "+
							"shape %v", camera, config, shape)
					}
				}
				printf(cmd, "%v: %v ok\n", config, cameras)
			}
			return nil
		},
	}
}

func gridCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Print the object placement grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			for cell := 0; cell < tasks.GridCells; cell++ {
				pos, err := tasks.GridPosition(cell)
				if err != nil {
					return err
				}
				printf(cmd, "%v: (%.3f, %.3f)", cell, pos.X, pos.Y)
				if cell%3 == 2 {
					printf(cmd, "\n")
				} else {
					printf(cmd, "\t")
				}
			}
			printf(cmd, "rotations (degrees): %v\n", tasks.RotationAngles)
			return nil
		},
	}
}

// createAndClose creates the environment described by c and returns
// its first timestep
func createAndClose(c envconfig.Config, logger golog.Logger) (ts.TimeStep,
	error) {
	env, step, err := c.Create(logger)
	if err != nil {
		return ts.TimeStep{}, err
	}
	closeEnv(env, logger)
	return step, nil
}

// printObservation prints the keys of obs with their shapes
func printObservation(cmd *cobra.Command, obs *ts.Observation) {
	for _, key := range obs.Keys() {
		switch key {
		case ts.AgentPosKey:
			printf(cmd, "\t%v: (%v)\n", key, obs.AgentPos.Len())
		case ts.EnvStateKey:
			printf(cmd, "\t%v: (%v)\n", key, len(obs.EnvState))
		case ts.PixelsKey:
			for _, camera := range obs.Cameras() {
				printf(cmd, "\t%v.%v: %v\n", key, camera,
					obs.Pixels[camera].Shape())
			}
		default:
			printf(cmd, "\t%v\n", key)
		}
	}
}
