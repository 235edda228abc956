package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/katalvlaran/fluxgrid/gridfile"
	"github.com/spf13/cobra"
)

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <gridfile>",
		Short: "List the metadata, scalars and fields of a grid file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := gridfile.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer rd.Close()

			return describe(cmd.Context(), rd, cmd.OutOrStdout())
		},
	}
}

// describe prints the contents of rd, one entry per line.
func describe(ctx context.Context, rd *gridfile.Reader, w io.Writer) error {
	meta, err := rd.Metadata(ctx)
	if err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(meta)) {
		fmt.Fprintf(w, "%-20s %s\n", k, meta[k])
	}

	scalars, err := rd.ScalarNames(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nscalars (%d)\n", len(scalars))
	for _, name := range scalars {
		v, err := rd.Real(ctx, name)
		switch {
		case err == nil:
			fmt.Fprintf(w, "  %-18s %g\n", name, v)
		case errors.Is(err, gridfile.ErrKind):
			s, err := rd.String(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %-18s text, %d bytes\n", name, len(s))
		default:
			return err
		}
	}

	fields, err := rd.FieldNames(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nfields (%d)\n", len(fields))
	for _, name := range fields {
		f, err := rd.Field(ctx, name)
		if err != nil {
			return err
		}
		r, c := f.Shape()
		fmt.Fprintf(w, "  %-18s %dx%d\n", name, r, c)
	}

	return nil
}
