package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/flexigpt/coderunner-go"
	"github.com/flexigpt/coderunner-go/spec"
)

// manifest lists scripts to run in one batch. Relative file paths resolve
// against the manifest's directory.
type manifest struct {
	Jobs []job `yaml:"jobs"`
}

type job struct {
	Name    string   `yaml:"name"`
	File    string   `yaml:"file"`
	Answers []string `yaml:"answers"`
}

type jobResult struct {
	Name   string
	Output string
	Err    error
}

func newBatchCmd(a *app) *cobra.Command {
	var parallel int
	cmd := &cobra.Command{
		Use:   "batch MANIFEST",
		Short: "Run every script of a YAML manifest concurrently",
		Long: `Run every script of a YAML manifest concurrently:

  jobs:
    - name: sum
      file: sum.py
      answers: ["2", "3"]

Results are printed in manifest order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(args[0])
			if err != nil {
				return err
			}
			eng, err := a.engine(nil)
			if err != nil {
				return err
			}
			results, err := runBatch(cmd.Context(), eng, m, parallel)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", runtime.NumCPU(), "maximum scripts running at once")
	return cmd
}

func loadManifest(path string) (manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if len(m.Jobs) == 0 {
		return manifest{}, fmt.Errorf("%w: manifest has no jobs", spec.ErrInvalidArgument)
	}
	base := filepath.Dir(path)
	for i := range m.Jobs {
		j := &m.Jobs[i]
		if j.File == "" {
			return manifest{}, fmt.Errorf("%w: job %d has no file", spec.ErrInvalidArgument, i)
		}
		if !filepath.IsAbs(j.File) {
			j.File = filepath.Join(base, j.File)
		}
		if j.Name == "" {
			j.Name = filepath.Base(j.File)
		}
	}
	return m, nil
}

// runBatch runs every job through eng.Run. A failing job is recorded in its
// result; only context cancellation stops the batch.
func runBatch(ctx context.Context, eng *coderunner.Engine, m manifest, parallel int) ([]jobResult, error) {
	results := make([]jobResult, len(m.Jobs))
	g, gctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}
	for i, j := range m.Jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = jobResult{Name: j.Name}
			code, err := os.ReadFile(j.File)
			if err != nil {
				results[i].Err = err
				return nil
			}
			res, err := eng.Run(gctx, spec.RunArgs{Code: string(code), Inputs: j.Answers})
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				results[i].Err = err
				return nil
			}
			results[i].Output = res.Output
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printResults(w io.Writer, results []jobResult) error {
	var failed int
	for _, r := range results {
		fmt.Fprintf(w, "== %s\n", r.Name)
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "error: %v\n", r.Err)
			continue
		}
		fmt.Fprintln(w, r.Output)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(results))
	}
	return nil
}
