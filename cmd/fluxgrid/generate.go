package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/katalvlaran/fluxgrid/circular"
	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/equilibrium"
	"github.com/katalvlaran/fluxgrid/geqdsk"
	"github.com/katalvlaran/fluxgrid/gridfile"
	"github.com/katalvlaran/fluxgrid/mesh"
	"github.com/katalvlaran/fluxgrid/tokamak"
	"github.com/katalvlaran/fluxgrid/torpex"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// generateFlags are shared by the grid generating subcommands.
type generateFlags struct {
	noiseSeed   uint64
	saveOptions string
	overwrite   bool
}

func (g *generateFlags) register(fs *pflag.FlagSet) {
	fs.Uint64Var(&g.noiseSeed, "add-noise", 0, "perturb the region points with round-off level noise from this seed (0 disables)")
	fs.StringVar(&g.saveOptions, "save-options", "", "write the options used to this file")
	fs.Lookup("save-options").NoOptDefVal = config.DefaultOptionsFile
	fs.BoolVar(&g.overwrite, "overwrite", false, "replace an existing grid file")
}

// buildFunc constructs the equilibrium of one subcommand.
type buildFunc func(ctx context.Context) (*equilibrium.Equilibrium, error)

// generate builds the equilibrium and its grid and writes the grid to
// opts.GridFile. The --save-options file is created before any work is done,
// and removed again if generation fails.
func (a *app) generate(ctx context.Context, opts *config.Options, g *generateFlags, build buildFunc) (err error) {
	var saved *config.OptionsFile
	if g.saveOptions != "" {
		if saved, err = config.Create(g.saveOptions); err != nil {
			return err
		}
		defer func() {
			if err != nil {
				_ = saved.Discard()
			}
		}()
	}

	eq, err := build(ctx)
	if err != nil {
		return err
	}
	if g.noiseSeed != 0 {
		eq.AddNoise(g.noiseSeed)
	}
	b, err := mesh.NewBoutMesh(ctx, eq, opts, a.logger)
	if err != nil {
		return err
	}
	if err := b.Geometry(ctx); err != nil {
		return err
	}
	fileOpts := []gridfile.Option{gridfile.WithGenerator(gridfile.Generator, version())}
	if g.overwrite {
		fileOpts = append(fileOpts, gridfile.Overwrite())
	}
	if err := b.WriteGridfile(ctx, opts.GridFile, fileOpts...); err != nil {
		return err
	}
	if saved != nil {
		if err := eq.SaveOptions(saved); err != nil {
			return err
		}
		a.logger.Info("options saved", zap.String("path", saved.Name()))
	}

	return nil
}

// version is the module version of the binary, or gridfile.Version when it
// was not built from a versioned module.
func version() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}

	return gridfile.Version
}

func (a *app) newGeqdskCmd() *cobra.Command {
	g := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "geqdsk <file.geqdsk> [options.yaml]",
		Short: "Generate a grid from a G-EQDSK equilibrium",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.loadOptions(args, 1)
			if err != nil {
				return err
			}

			return a.generate(cmd.Context(), opts, g, func(ctx context.Context) (*equilibrium.Equilibrium, error) {
				f, raw, err := readGeqdsk(args[0])
				if err != nil {
					return nil, err
				}

				return tokamak.FromGeqdsk(ctx, f, raw, opts, a.logger)
			})
		},
	}
	g.register(cmd.Flags())

	return cmd
}

func (a *app) newCircularCmd() *cobra.Command {
	g := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "circular [options.yaml]",
		Short: "Generate a grid on concentric circular flux surfaces",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.loadOptions(args, 0)
			if err != nil {
				return err
			}

			return a.generate(cmd.Context(), opts, g, func(ctx context.Context) (*equilibrium.Equilibrium, error) {
				return circular.New(ctx, opts, a.logger)
			})
		},
	}
	g.register(cmd.Flags())

	return cmd
}

func (a *app) newTorpexCmd() *cobra.Command {
	g := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "torpex [options.yaml]",
		Short: "Generate a grid for a TORPEX X-point configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.loadOptions(args, 0)
			if err != nil {
				return err
			}

			return a.generate(cmd.Context(), opts, g, func(ctx context.Context) (*equilibrium.Equilibrium, error) {
				return torpex.New(ctx, opts, a.logger)
			})
		},
	}
	g.register(cmd.Flags())

	return cmd
}

func readGeqdsk(path string) (*geqdsk.File, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := geqdsk.Read(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, raw, nil
}
