package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/katalvlaran/fluxgrid/config"
	"github.com/katalvlaran/fluxgrid/gridfile"
	"github.com/katalvlaran/fluxgrid/mesh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) newRecreateInputsCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "recreate-inputs <gridfile>",
		Short: "Write the input files embedded in a grid file",
		Long: `recreate-inputs writes the equilibrium files embedded in a grid file and
the options it was generated with (as ` + config.DefaultOptionsFile + `).
Existing files are never overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rd, err := gridfile.Open(ctx, args[0])
			if err != nil {
				return err
			}
			defer rd.Close()

			inputs, err := rd.Inputs(ctx)
			if err != nil {
				return err
			}
			opts, err := rd.String(ctx, mesh.InputsName)
			if err != nil {
				return err
			}
			inputs = append(inputs, gridfile.Input{Name: config.DefaultOptionsFile, Content: []byte(opts)})

			paths, err := targets(dir, inputs)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			for i, in := range inputs {
				if err := writeNew(paths[i], in.Content); err != nil {
					return err
				}
				a.logger.Info("input recreated", zap.String("name", in.Name), zap.String("path", paths[i]))
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory for the recreated files")

	return cmd
}

// targets returns the path in dir for each input. It fails, before anything
// is written, if any of them exists or two inputs share a path.
func targets(dir string, inputs []gridfile.Input) ([]string, error) {
	paths := make([]string, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		path := filepath.Join(dir, filepath.Base(in.Name))
		if seen[path] {
			return nil, fmt.Errorf("input %q: another input is also written to %s", in.Name, path)
		}
		seen[path] = true
		_, err := os.Lstat(path)
		if err == nil {
			return nil, fmt.Errorf("%s already exists, not overwriting", path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		paths[i] = path
	}

	return paths, nil
}

// writeNew writes content to a file that must not already exist.
func writeNew(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s already exists, not overwriting", path)
	}
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
