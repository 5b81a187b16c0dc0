// Package config loads splinter settings from defaults, an optional YAML
// file and SPLINTER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chazu/splinter/pkg/decompose"
	"github.com/chazu/splinter/pkg/logging"
)

// EnvPrefix prefixes every environment override, e.g.
// SPLINTER_DECOMPOSITION_LEVEL for decomposition.level.
const EnvPrefix = "SPLINTER"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete splinter configuration.
type Config struct {
	Decomposition DecompositionConfig `mapstructure:"decomposition" yaml:"decomposition"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
}

// DecompositionConfig mirrors decompose.Options with a textual level.
type DecompositionConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is one of none, shape, solid, shell or face.
	Level string `mapstructure:"level" yaml:"level" validate:"level"`
	// Precision is the shell sewing tolerance.
	Precision float64          `mapstructure:"precision" yaml:"precision" validate:"gt=0"`
	Tuning    decompose.Tuning `mapstructure:"tuning" yaml:"tuning"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"loglevel"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		_, err := decompose.ParseLevel(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		v := strings.ToLower(fl.Field().String())
		for _, l := range logging.ValidLevels() {
			if v == l {
				return true
			}
		}
		return false
	})
}

// Default returns the built-in configuration.
func Default() *Config {
	opts := decompose.DefaultOptions()
	return &Config{
		Decomposition: DecompositionConfig{
			Enabled:   opts.Enabled,
			Level:     opts.Level.String(),
			Precision: opts.Precision,
			Tuning:    opts.Tuning,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatJSON,
		},
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal
// even when no file sets them.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("decomposition.enabled", d.Decomposition.Enabled)
	v.SetDefault("decomposition.level", d.Decomposition.Level)
	v.SetDefault("decomposition.precision", d.Decomposition.Precision)

	t := d.Decomposition.Tuning
	v.SetDefault("decomposition.tuning.parallel_threshold", t.ParallelThreshold)
	v.SetDefault("decomposition.tuning.feature_grid_resolution", t.FeatureGridResolution)
	v.SetDefault("decomposition.tuning.adjacency_grid_resolution", t.AdjacencyGridResolution)
	v.SetDefault("decomposition.tuning.area_ratio", t.AreaRatio)
	v.SetDefault("decomposition.tuning.distance_factor", t.DistanceFactor)
	v.SetDefault("decomposition.tuning.normal_dot", t.NormalDot)
	v.SetDefault("decomposition.tuning.min_group_faces", t.MinGroupFaces)
	v.SetDefault("decomposition.tuning.min_cluster_faces", t.MinClusterFaces)
	v.SetDefault("decomposition.tuning.min_edge_ratio", t.MinEdgeRatio)
	v.SetDefault("decomposition.tuning.max_edge_ratio", t.MaxEdgeRatio)
	v.SetDefault("decomposition.tuning.min_extent", t.MinExtent)
	v.SetDefault("decomposition.tuning.escalation_face_count", t.EscalationFaceCount)
	v.SetDefault("decomposition.tuning.area_split_face_count", t.AreaSplitFaceCount)
	v.SetDefault("decomposition.tuning.large_face_factor", t.LargeFaceFactor)
	v.SetDefault("decomposition.tuning.normal_key_precision", t.NormalKeyPrecision)
	v.SetDefault("decomposition.tuning.shell_group_limit", t.ShellGroupLimit)
	v.SetDefault("decomposition.tuning.large_shell_factor", t.LargeShellFactor)
	v.SetDefault("decomposition.tuning.complex_shell_faces", t.ComplexShellFaces)
	v.SetDefault("decomposition.tuning.min_volume", t.MinVolume)
	v.SetDefault("decomposition.tuning.merge_fraction", t.MergeFraction)
	v.SetDefault("decomposition.tuning.merge_similarity", t.MergeSimilarity)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: failed %q (got: %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// Options converts the decomposition section for the decomposer.
func (c *Config) Options() (decompose.Options, error) {
	level, err := decompose.ParseLevel(c.Decomposition.Level)
	if err != nil {
		return decompose.Options{}, err
	}
	return decompose.Options{
		Enabled:   c.Decomposition.Enabled,
		Level:     level,
		Precision: c.Decomposition.Precision,
		Tuning:    c.Decomposition.Tuning,
	}, nil
}

// LoggerOptions converts the logging section.
func (c *Config) LoggerOptions() logging.Options {
	return logging.Options{Level: c.Logging.Level, Format: c.Logging.Format}
}

// YAML renders the configuration as a loadable file.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
