package decompose

import (
	"fmt"
	"strings"

	"github.com/chazu/splinter/pkg/cluster"
	"github.com/chazu/splinter/pkg/feature"
	"github.com/chazu/splinter/pkg/synth"
)

// Level is the requested decomposition granularity.
type Level int

const (
	LevelNone Level = iota
	LevelShape
	LevelSolid
	LevelShell
	LevelFace
)

// Levels lists every level from coarsest to finest.
var Levels = []Level{LevelNone, LevelShape, LevelSolid, LevelShell, LevelFace}

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelShape:
		return "shape"
	case LevelSolid:
		return "solid"
	case LevelShell:
		return "shell"
	case LevelFace:
		return "face"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
	}
	return LevelNone, fmt.Errorf("decompose: unknown level %q", s)
}

// Options control a single decomposition call.
type Options struct {
	Enabled bool
	Level   Level
	// Precision is the shell sewing tolerance.
	Precision float64
	Tuning    Tuning
}

// DefaultOptions decomposes at shape level with stock tuning.
func DefaultOptions() Options {
	return Options{
		Enabled:   true,
		Level:     LevelShape,
		Precision: synth.DefaultPrecision,
		Tuning:    DefaultTuning(),
	}
}

// Tuning holds the empirical thresholds of the strategies. None of them
// carries meaning beyond "worked on the models it was tuned on"; expect
// to revisit them for very different model scales.
type Tuning struct {
	// ParallelThreshold is the face count above which feature extraction
	// runs on several workers.
	ParallelThreshold int `mapstructure:"parallel_threshold" yaml:"parallel_threshold" validate:"gte=0"`
	// FeatureGridResolution is G for similarity clustering.
	FeatureGridResolution int `mapstructure:"feature_grid_resolution" yaml:"feature_grid_resolution" validate:"gte=1"`
	// AdjacencyGridResolution is G for the adjacency graph.
	AdjacencyGridResolution int `mapstructure:"adjacency_grid_resolution" yaml:"adjacency_grid_resolution" validate:"gte=1"`

	AreaRatio      float64 `mapstructure:"area_ratio" yaml:"area_ratio" validate:"gt=0,lte=1"`
	DistanceFactor float64 `mapstructure:"distance_factor" yaml:"distance_factor" validate:"gt=0"`
	NormalDot      float64 `mapstructure:"normal_dot" yaml:"normal_dot" validate:"gte=0,lte=1"`
	// MinGroupFaces is the smallest similarity group promoted to a component.
	MinGroupFaces int `mapstructure:"min_group_faces" yaml:"min_group_faces" validate:"gte=1"`

	MinClusterFaces int     `mapstructure:"min_cluster_faces" yaml:"min_cluster_faces" validate:"gte=1"`
	MinEdgeRatio    float64 `mapstructure:"min_edge_ratio" yaml:"min_edge_ratio" validate:"gte=0"`
	MaxEdgeRatio    float64 `mapstructure:"max_edge_ratio" yaml:"max_edge_ratio" validate:"gtefield=MinEdgeRatio"`
	MinExtent       float64 `mapstructure:"min_extent" yaml:"min_extent" validate:"gte=0"`

	// EscalationFaceCount: a single-shell solid with more faces than this
	// is split by geometric features.
	EscalationFaceCount int `mapstructure:"escalation_face_count" yaml:"escalation_face_count" validate:"gte=0"`
	// AreaSplitFaceCount: with at most two feature groups and more faces
	// than this, faces are split by area instead.
	AreaSplitFaceCount int     `mapstructure:"area_split_face_count" yaml:"area_split_face_count" validate:"gte=0"`
	LargeFaceFactor    float64 `mapstructure:"large_face_factor" yaml:"large_face_factor" validate:"gt=0"`
	// NormalKeyPrecision is the rounding step of plane normals when
	// grouping planar faces.
	NormalKeyPrecision float64 `mapstructure:"normal_key_precision" yaml:"normal_key_precision" validate:"gt=0"`

	// ShellGroupLimit: up to this many shells are split by volume, more
	// by face count.
	ShellGroupLimit   int     `mapstructure:"shell_group_limit" yaml:"shell_group_limit" validate:"gte=1"`
	LargeShellFactor  float64 `mapstructure:"large_shell_factor" yaml:"large_shell_factor" validate:"gt=0"`
	ComplexShellFaces int     `mapstructure:"complex_shell_faces" yaml:"complex_shell_faces" validate:"gte=0"`

	// MinVolume: components at or below it are discarded by refinement.
	MinVolume float64 `mapstructure:"min_volume" yaml:"min_volume" validate:"gte=0"`
	// MergeFraction of the median volume below which a component is merged
	// into a neighbor.
	MergeFraction float64 `mapstructure:"merge_fraction" yaml:"merge_fraction" validate:"gte=0,lte=1"`
	// MergeSimilarity is the smallest bounding-box volume ratio of a merge.
	MergeSimilarity float64 `mapstructure:"merge_similarity" yaml:"merge_similarity" validate:"gt=0,lte=1"`
}

// DefaultTuning returns the stock thresholds.
func DefaultTuning() Tuning {
	sim := cluster.DefaultSimilarity()
	val := cluster.DefaultValidation()
	return Tuning{
		ParallelThreshold:       feature.DefaultParallelThreshold,
		FeatureGridResolution:   8,
		AdjacencyGridResolution: 4,

		AreaRatio:      sim.MinAreaRatio,
		DistanceFactor: sim.DistanceFactor,
		NormalDot:      sim.MinNormalDot,
		MinGroupFaces:  2,

		MinClusterFaces: val.MinFaces,
		MinEdgeRatio:    val.MinEdgeRatio,
		MaxEdgeRatio:    val.MaxEdgeRatio,
		MinExtent:       val.MinExtent,

		EscalationFaceCount: 20,
		AreaSplitFaceCount:  50,
		LargeFaceFactor:     2.0,
		NormalKeyPrecision:  1e-3,

		ShellGroupLimit:   3,
		LargeShellFactor:  0.5,
		ComplexShellFaces: 10,

		MinVolume:       1e-12,
		MergeFraction:   0.01,
		MergeSimilarity: 0.8,
	}
}

func (t Tuning) similarity() cluster.SimilarityParams {
	return cluster.SimilarityParams{
		MinAreaRatio:   t.AreaRatio,
		DistanceFactor: t.DistanceFactor,
		MinNormalDot:   t.NormalDot,
	}
}

func (t Tuning) validation() cluster.ValidationParams {
	return cluster.ValidationParams{
		MinFaces:     t.MinClusterFaces,
		MinEdgeRatio: t.MinEdgeRatio,
		MaxEdgeRatio: t.MaxEdgeRatio,
		MinExtent:    t.MinExtent,
	}
}
