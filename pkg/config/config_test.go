package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/splinter/pkg/decompose"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, decompose.DefaultOptions(), opts)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown level", func(c *Config) { c.Decomposition.Level = "assembly" }, "Level"},
		{"zero precision", func(c *Config) { c.Decomposition.Precision = 0 }, "Precision"},
		{"zero grid", func(c *Config) { c.Decomposition.Tuning.FeatureGridResolution = 0 }, "FeatureGridResolution"},
		{"inverted edge ratio", func(c *Config) { c.Decomposition.Tuning.MaxEdgeRatio = 1 }, "MaxEdgeRatio"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "Logging.Level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "Format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splinter.yaml")
	body := `decomposition:
  level: solid
  precision: 0.001
  tuning:
    adjacency_grid_resolution: 6
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "solid", cfg.Decomposition.Level)
	assert.InDelta(t, 0.001, cfg.Decomposition.Precision, 1e-12)
	assert.Equal(t, 6, cfg.Decomposition.Tuning.AdjacencyGridResolution)
	assert.Equal(t, 8, cfg.Decomposition.Tuning.FeatureGridResolution)
	assert.True(t, cfg.Decomposition.Enabled)
	assert.Equal(t, "text", cfg.Logging.Format)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, decompose.LevelSolid, opts.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SPLINTER_DECOMPOSITION_LEVEL", "face")
	t.Setenv("SPLINTER_DECOMPOSITION_TUNING_MERGE_FRACTION", "0.05")
	t.Setenv("SPLINTER_LOGGING_LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "face", cfg.Decomposition.Level)
	assert.InDelta(t, 0.05, cfg.Decomposition.Tuning.MergeFraction, 1e-12)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Setenv("SPLINTER_DECOMPOSITION_LEVEL", "part")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Decomposition.Level = "shell"
	data, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "merge_similarity:")

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
