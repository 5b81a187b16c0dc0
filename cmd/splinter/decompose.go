package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/splinter/pkg/decompose"
	"github.com/chazu/splinter/pkg/engine"
	"github.com/chazu/splinter/pkg/kernel/brep"
	"github.com/chazu/splinter/pkg/tessellate"
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <model.lisp>",
	Short: "Decompose a model and report its components",
	Long: `Evaluate a model file, decompose the resulting shape and print one
line per component with its color, kind, face count and volume.

Flags override the decomposition section of the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompose,
}

var (
	decomposeLevel     string
	decomposePrecision float64
	decomposeOutput    string
	decomposeSTL       string
)

func init() {
	decomposeCmd.Flags().StringVarP(&decomposeLevel, "level", "l", "", "decomposition level: none, shape, solid, shell or face")
	decomposeCmd.Flags().Float64Var(&decomposePrecision, "precision", 0, "shell sewing tolerance")
	decomposeCmd.Flags().StringVarP(&decomposeOutput, "output", "o", "text", "output format: text or yaml")
	decomposeCmd.Flags().StringVar(&decomposeSTL, "stl", "", "write one STL file per component into this directory")
	rootCmd.AddCommand(decomposeCmd)
}

func runDecompose(cmd *cobra.Command, args []string) error {
	if decomposeOutput != "text" && decomposeOutput != "yaml" {
		return fmt.Errorf("invalid output format %q, expected text or yaml", decomposeOutput)
	}

	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("level") {
		if opts.Level, err = decompose.ParseLevel(decomposeLevel); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("precision") {
		if decomposePrecision <= 0 {
			return fmt.Errorf("precision must be positive, got %g", decomposePrecision)
		}
		opts.Precision = decomposePrecision
	}

	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model: %w", err)
	}

	shape, evalErrs, err := engine.NewEngine().Evaluate(string(src))
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		errs := make([]error, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = e
		}
		return fmt.Errorf("evaluating %s: %w", path, errors.Join(errs...))
	}

	shutdown, err := startTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	k := brep.New()
	ctx := cmd.Context()
	res := decompose.New(k, decompose.WithLogger(logger)).Run(ctx, shape, opts)

	meshes, err := tessellate.Tessellate(ctx, k, res.Components)
	if err != nil {
		return err
	}

	if decomposeSTL != "" {
		paths, err := tessellate.WriteSTL(decomposeSTL, meshes)
		if err != nil {
			return err
		}
		logger.Info("wrote stl files", "dir", decomposeSTL, "count", len(paths))
	}

	rep := newReport(filepath.Base(path), res, meshes)
	if decomposeOutput == "yaml" {
		return rep.writeYAML(cmd.OutOrStdout())
	}
	return rep.writeText(cmd.OutOrStdout())
}
