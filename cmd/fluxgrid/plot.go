package main

import (
	"fmt"
	"io"
	"os"

	"github.com/katalvlaran/fluxgrid/gridfile"
	"github.com/katalvlaran/fluxgrid/plot"
	"github.com/katalvlaran/fluxgrid/tokamak"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// plotFlags select the output of the plotting subcommands.
type plotFlags struct {
	svg   string
	width int
	plain bool
}

func (p *plotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.svg, "svg", "", "write an SVG file instead of drawing in the terminal")
	cmd.Flags().IntVar(&p.width, "width", 100, "terminal columns, or SVG pixels divided by 8")
	cmd.Flags().BoolVar(&p.plain, "plain", false, "draw in the terminal without colours")
}

// output renders a finished drawer to the terminal or to the SVG file.
func (p *plotFlags) output(a *app, w io.Writer, d plot.Drawer) error {
	switch d := d.(type) {
	case *plot.Canvas:
		out := d.Render()
		if p.plain {
			out = d.Plain()
		}
		_, err := fmt.Fprintln(w, out)
		return err
	case *plot.SVG:
		f, err := os.Create(p.svg)
		if err != nil {
			return err
		}
		if _, err := d.WriteTo(f); err != nil {
			f.Close()
			return err
		}
		a.logger.Info("plot written", zap.String("path", p.svg))

		return f.Close()
	}

	return fmt.Errorf("unsupported drawer %T", d)
}

// drawer returns a new Canvas or SVG over box.
func (p *plotFlags) drawer(box plot.Box) (plot.Drawer, error) {
	if p.svg != "" {
		return plot.NewSVG(box, 8*float64(p.width))
	}

	return plot.NewCanvas(box, p.width)
}

func (a *app) newPlotEquilibriumCmd() *cobra.Command {
	p := &plotFlags{}
	eo := plot.DefaultEquilibriumOptions()
	cmd := &cobra.Command{
		Use:   "plot-equilibrium <file.geqdsk> [options.yaml]",
		Short: "Plot the flux surfaces, wall and X-points of an equilibrium",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.loadOptions(args, 1)
			if err != nil {
				return err
			}
			f, raw, err := readGeqdsk(args[0])
			if err != nil {
				return err
			}
			eq, err := tokamak.FromGeqdsk(cmd.Context(), f, raw, opts, a.logger)
			if err != nil {
				return err
			}
			d, err := p.drawer(plot.EquilibriumBox(eq))
			if err != nil {
				return err
			}
			if err := plot.Equilibrium(d, eq, eo); err != nil {
				return err
			}

			return p.output(a, cmd.OutOrStdout(), d)
		},
	}
	p.register(cmd)
	cmd.Flags().BoolVar(&eo.Regions, "plot-regions", false, "also draw the separatrix regions")
	cmd.Flags().IntVar(&eo.Levels, "levels", eo.Levels, "number of psi contours")
	cmd.Flags().IntVar(&eo.NR, "samples", eo.NR, "psi samples per direction")
	cmd.PreRun = func(cmd *cobra.Command, args []string) { eo.NZ = eo.NR }

	return cmd
}

func (a *app) newPlotGridCmd() *cobra.Command {
	p := &plotFlags{}
	cmd := &cobra.Command{
		Use:   "plot-grid <gridfile>",
		Short: "Plot the cells of a grid file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := gridfile.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer rd.Close()
			d, err := plot.GridCells(cmd.Context(), rd, p.drawer)
			if err != nil {
				return err
			}

			return p.output(a, cmd.OutOrStdout(), d)
		},
	}
	p.register(cmd)

	return cmd
}
