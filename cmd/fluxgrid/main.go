// Command fluxgrid generates BOUT++ grids from tokamak, circular and
// TORPEX equilibria, plots equilibria and grids, and recovers the inputs
// embedded in a grid file.
package main

import (
	"fmt"
	"os"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app holds the state shared by the subcommands of one invocation.
type app struct {
	logger *zap.Logger

	verbose   bool
	logFormat string
	workers   int
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "fluxgrid",
		Short: "Generate BOUT++ grids from magnetic equilibria",
		Long: `fluxgrid traces flux surfaces of a magnetic equilibrium, builds an
orthogonal grid from them and writes the metric and field quantities a
BOUT++ simulation needs to a grid file.`,
		Version:      version(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := a.buildLogger()
			if err != nil {
				return err
			}
			a.logger = logger

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	pf := root.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")
	pf.StringVar(&a.logFormat, "log-format", "console", "log encoding: console or json")
	pf.IntVar(&a.workers, "workers", 0, "regions built concurrently (0 keeps num_workers from the options)")

	root.AddCommand(
		a.newGeqdskCmd(),
		a.newCircularCmd(),
		a.newTorpexCmd(),
		a.newPlotEquilibriumCmd(),
		a.newPlotGridCmd(),
		a.newRecreateInputsCmd(),
		a.newInfoCmd(),
	)

	return root
}

func (a *app) buildLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch a.logFormat {
	case "console", "json":
		cfg.Encoding = a.logFormat
	default:
		return nil, fmt.Errorf("unknown --log-format %q, want console or json", a.logFormat)
	}
	if a.logFormat == "console" {
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if a.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

// loadOptions reads the options file named by args[i], or the defaults if
// there is none, and applies --workers.
func (a *app) loadOptions(args []string, i int) (*config.Options, error) {
	opts := config.Default()
	if len(args) > i {
		var err error
		if opts, err = config.Load(args[i]); err != nil {
			return nil, err
		}
		a.logger.Info("options loaded", zap.String("path", args[i]))
	}
	if a.workers > 0 {
		opts.NumWorkers = a.workers
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
