package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	// Flags keep their values and Changed bits between executions.
	for _, fs := range []*pflag.FlagSet{rootCmd.PersistentFlags(), decomposeCmd.Flags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := execute(t, args...)
	return out, err
}

func writeModel(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.lisp")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

const twoBoxes = `
(def b (box :size (vec3 1 1 1)))
(model (compound b (move b :by (vec3 3 0 0))))
`

func TestDecomposeYAML(t *testing.T) {
	path := writeModel(t, twoBoxes)
	out, err := run(t, "decompose", path, "--output", "yaml", "--log-level", "error")
	require.NoError(t, err)

	var rep report
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "model.lisp", rep.Model)
	assert.Equal(t, "shape", rep.Level)
	assert.Equal(t, "freecad-like", rep.Strategy)
	assert.Equal(t, 12, rep.Faces)
	require.Len(t, rep.Components, 2)
	assert.Equal(t, "solid-1", rep.Components[0].Name)
	assert.Equal(t, "#4A90D9", rep.Components[0].Color)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, rep.Components[0].Faces)
	assert.Equal(t, 12, rep.Components[1].Triangles)
	assert.InDelta(t, 1.0, rep.Components[1].Volume, 1e-9)
	assert.NotEmpty(t, rep.Trace)
}

func TestDecomposeFaceLevelText(t *testing.T) {
	path := writeModel(t, twoBoxes)
	out, err := run(t, "decompose", path, "--level", "face", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "12 faces -> 12 components")
	assert.Contains(t, out, "face-12")
}

func TestDecomposeErrors(t *testing.T) {
	_, err := run(t, "decompose", filepath.Join(t.TempDir(), "missing.lisp"))
	assert.ErrorContains(t, err, "failed to read model")

	bad := writeModel(t, "(box :size (vec3 1 1")
	_, err = run(t, "decompose", bad, "--log-level", "error")
	assert.ErrorContains(t, err, "evaluating")

	good := writeModel(t, twoBoxes)
	_, err = run(t, "decompose", good, "--level", "assembly")
	assert.ErrorContains(t, err, "unknown level")

	_, err = run(t, "decompose", good, "--output", "json")
	assert.ErrorContains(t, err, "invalid output format")

	_, err = run(t, "decompose", good, "--log-level", "chatty")
	assert.Error(t, err)
}

func TestLevels(t *testing.T) {
	out, err := run(t, "levels")
	require.NoError(t, err)
	assert.Contains(t, out, "solid  freecad-like -> geometric-features -> adjacency-clustering")
	assert.Contains(t, out, "face   -")
}

func TestDecomposeTrace(t *testing.T) {
	path := writeModel(t, twoBoxes)
	out, errOut, err := execute(t, "decompose", path, "--trace", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Decomposer.Run")
	assert.Contains(t, out, "2 components")
}

func TestDecomposeSTL(t *testing.T) {
	path := writeModel(t, twoBoxes)
	dir := t.TempDir()
	_, err := run(t, "decompose", path, "--stl", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "solid-1.stl"))
	assert.FileExists(t, filepath.Join(dir, "solid-2.stl"))
}
