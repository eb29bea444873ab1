// Command soarm runs and inspects the SO-ARM manipulation environments
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/edaniels/golog"
	"github.com/joho/godotenv"
	"github.com/samuelfneumann/soarm/environment/envconfig"
	"github.com/samuelfneumann/soarm/environment/soarm"
	"github.com/spf13/cobra"
)

// Environment variables read by the command, possibly from a .env file
const (
	configEnv = "SOARM_CONFIG"
	dbEnv     = "SOARM_DB"
)

// flags holds the environment configuration flags shared by all
// commands
type flags struct {
	config      string
	env         string
	task        string
	obsType     string
	cameras     string
	seed        uint64
	cutoff      uint
	reseed      bool
	maxAttempts int
}

func main() {
	for _, envFile := range []string{".env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	if err := newRootCommand(&flags{}).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand returns the soarm command with all subcommands, which
// parses the shared flags into f
func newRootCommand(f *flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "soarm",
		Short:        "Run and inspect SO-ARM manipulation environments",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.config, "config", os.Getenv(configEnv),
		"JSON environment config, flags override its fields")
	pf.StringVar(&f.env, "env", string(envconfig.SoArm), "environment name")
	pf.StringVar(&f.task, "task", string(envconfig.PickPlace),
		"task, one of pick_place or stacking")
	pf.StringVar(&f.obsType, "obs-type", string(soarm.PixelsAgentPos),
		"observation type, one of state, pixels or pixels_agent_pos")
	pf.StringVar(&f.cameras, "cameras", string(soarm.AllCameras),
		"camera config, one of front_only, front_wrist or all")
	pf.Uint64Var(&f.seed, "seed", 0, "random seed")
	pf.UintVar(&f.cutoff, "cutoff", soarm.DefaultEpisodeCutoff,
		"maximum number of steps per episode")
	pf.BoolVar(&f.reseed, "wall-clock-reseed", false,
		"reseed object placement from the wall clock every episode")
	pf.IntVar(&f.maxAttempts, "max-placement-attempts", 0,
		"stacking placement attempts, zero uses the default")

	rootCmd.AddCommand(
		runCommand(f),
		checkObsCommand(f),
		camerasCommand(f),
		gridCommand(),
	)
	return rootCmd
}

// envConfig returns the environment configuration described by the
// flags. Flags set on the command line override the config file.
func (f *flags) envConfig(cmd *cobra.Command) (envconfig.Config, error) {
	c := envconfig.NewConfig(envconfig.EnvName(f.env),
		envconfig.TaskName(f.task), f.seed)
	if f.config != "" {
		var err error
		if c, err = envconfig.LoadConfig(f.config); err != nil {
			return envconfig.Config{}, err
		}
	}

	changed := func(name string) bool {
		return f.config == "" || cmd.Flags().Changed(name)
	}
	if changed("env") {
		c.Environment = envconfig.EnvName(f.env)
	}
	if changed("task") {
		c.Task = envconfig.TaskName(f.task)
	}
	if changed("obs-type") {
		obsType, err := soarm.ParseObsType(f.obsType)
		if err != nil {
			return envconfig.Config{}, err
		}
		c.ObsType = obsType
	}
	if changed("cameras") {
		cameras, err := soarm.ParseCameraConfig(f.cameras)
		if err != nil {
			return envconfig.Config{}, err
		}
		c.CameraConfig = cameras
	}
	if changed("seed") {
		c.Seed = f.seed
	}
	if changed("cutoff") {
		c.EpisodeCutoff = f.cutoff
	}
	if changed("wall-clock-reseed") {
		c.WallClockReseed = f.reseed
	}
	if changed("max-placement-attempts") {
		c.MaxPlacementAttempts = f.maxAttempts
	}
	return c, nil
}

// signalContext returns a context cancelled on interrupt
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

// closeEnv closes env, logging any error
func closeEnv(env *soarm.SoArm, logger golog.Logger) {
	if err := env.Close(); err != nil {
		logger.Errorw("could not close environment", "error", err)
	}
}

// printf writes to the output of cmd
func printf(cmd *cobra.Command, format string, a ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, a...)
}
