package decompose

import (
	"fmt"
	"math"
	"slices"

	"github.com/chazu/splinter/pkg/adjacency"
	"github.com/chazu/splinter/pkg/cluster"
	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/spatial"
)

// Strategy names a way of producing components.
type Strategy int

const (
	// StrategyTopology explodes the shape by level without heuristics.
	StrategyTopology Strategy = iota
	// StrategyFreeCADLike splits along the solid/shell structure.
	StrategyFreeCADLike
	// StrategyFeatureRecognition groups similar faces into components.
	StrategyFeatureRecognition
	// StrategyAdjacencyClustering groups edge-connected faces.
	StrategyAdjacencyClustering
	// StrategyShellGroups splits shells by size.
	StrategyShellGroups
	// StrategyGeometricFeatures groups faces by surface type.
	StrategyGeometricFeatures
	// StrategyDirectShells returns each shell.
	StrategyDirectShells
	// StrategyFallback returns the undecomposed input.
	StrategyFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyTopology:
		return "topology"
	case StrategyFreeCADLike:
		return "freecad-like"
	case StrategyFeatureRecognition:
		return "feature-recognition"
	case StrategyAdjacencyClustering:
		return "adjacency-clustering"
	case StrategyShellGroups:
		return "shell-groups"
	case StrategyGeometricFeatures:
		return "geometric-features"
	case StrategyDirectShells:
		return "direct-shells"
	case StrategyFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// escalation lists, per level, the strategies tried in order when
// topology extraction separates nothing.
var escalation = map[Level][]Strategy{
	LevelNone:  nil,
	LevelShape: {StrategyFreeCADLike, StrategyFeatureRecognition, StrategyShellGroups},
	LevelSolid: {StrategyFreeCADLike, StrategyGeometricFeatures, StrategyAdjacencyClustering},
	LevelShell: {StrategyDirectShells, StrategyShellGroups, StrategyGeometricFeatures},
	LevelFace:  nil,
}

// Escalation returns the strategies tried at level, in order.
func Escalation(level Level) []Strategy {
	return slices.Clone(escalation[level])
}

func (r *run) attempt(s Strategy) []kernel.Shape {
	switch s {
	case StrategyFreeCADLike:
		return r.freeCADLike()
	case StrategyFeatureRecognition:
		return r.featureRecognition()
	case StrategyAdjacencyClustering:
		return r.adjacencyClustering()
	case StrategyShellGroups:
		return r.shellGroups()
	case StrategyGeometricFeatures:
		return r.geometricFeatures()
	case StrategyDirectShells:
		return r.topology(LevelShell)
	}
	return r.whole()
}

// topology explodes the shape into sub-shapes of the level's kind.
func (r *run) topology(level Level) []kernel.Shape {
	var out []kernel.Shape
	switch level {
	case LevelSolid:
		out = r.a.Explore(r.shape, kernel.KindSolid)
	case LevelShell:
		out = r.a.Explore(r.shape, kernel.KindShell)
	case LevelFace:
		out = r.faceLevel()
	}
	if len(out) == 0 {
		return r.whole()
	}
	return out
}

// faceLevel returns every face, looking through shells and then solids
// when the shape exposes none directly.
func (r *run) faceLevel() []kernel.Shape {
	if len(r.faces) > 0 {
		return slices.Clone(r.faces)
	}
	for _, kind := range []kernel.ShapeKind{kernel.KindShell, kernel.KindSolid} {
		seen := make(map[kernel.Shape]bool)
		var out []kernel.Shape
		for _, parent := range r.a.Explore(r.shape, kind) {
			for _, f := range r.a.Explore(parent, kernel.KindFace) {
				if !seen[f] {
					seen[f] = true
					out = append(out, f)
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// freeCADLike splits by structure: one component per solid, else by
// shells, else by surface features for a large single-shell solid.
func (r *run) freeCADLike() []kernel.Shape {
	solids := r.a.Explore(r.shape, kernel.KindSolid)
	shells := r.a.Explore(r.shape, kernel.KindShell)
	switch {
	case len(solids) > 1:
		return solids
	case len(solids) == 1 && len(shells) > 1:
		return r.shellGroups()
	case len(solids) == 1 && len(shells) == 1 && len(r.faces) > r.opts.Tuning.EscalationFaceCount:
		return r.geometricFeatures()
	}
	return r.whole()
}

// featureRecognition promotes groups of similar faces to components.
func (r *run) featureRecognition() []kernel.Shape {
	if len(r.faces) == 0 {
		return r.whole()
	}
	t := r.opts.Tuning
	boxes := r.bounds()
	grid := spatial.NewGrid(boxes, t.FeatureGridResolution)
	groups := cluster.BySimilarity(r.features(), boxes, grid, t.similarity())

	var out []kernel.Shape
	for _, g := range groups {
		if len(g) < t.MinGroupFaces {
			continue
		}
		out = append(out, r.synth.Build(r.faceShapes(g)))
	}
	r.log.Debug("feature recognition", "groups", len(groups), "components", len(out))
	if len(out) == 0 {
		return r.whole()
	}
	return out
}

// adjacencyClustering promotes each edge-connected face cluster. If any
// cluster fails validation the strategy yields the whole shape: keeping
// only the valid clusters would leave the rejected faces in no component,
// and connectivity results must cover every face exactly once.
func (r *run) adjacencyClustering() []kernel.Shape {
	if len(r.faces) == 0 {
		return r.whole()
	}
	t := r.opts.Tuning
	boxes := r.bounds()
	edges := r.edgeLists()
	graph := adjacency.Build(edges, spatial.NewGrid(boxes, t.AdjacencyGridResolution))
	clusters := cluster.Connected(graph)

	out := make([]kernel.Shape, 0, len(clusters))
	for _, c := range clusters {
		if err := cluster.Validate(c, edges, boxes, t.validation()); err != nil {
			r.log.Debug("cluster rejected", "faces", len(c), "reason", err)
			return r.whole()
		}
		out = append(out, r.synth.Build(r.faceShapes(c)))
	}
	return out
}

// shellGroups splits up to ShellGroupLimit shells by volume, more by
// face count.
func (r *run) shellGroups() []kernel.Shape {
	shells := r.a.Explore(r.shape, kernel.KindShell)
	if len(shells) == 0 {
		return r.whole()
	}
	t := r.opts.Tuning

	var big, small []kernel.Shape
	if len(shells) <= t.ShellGroupLimit {
		vols := make([]float64, len(shells))
		ok := make([]bool, len(shells))
		var total float64
		for i, sh := range shells {
			vols[i], ok[i] = r.a.VolumeChecked(sh)
			total += vols[i]
		}
		avg := total / float64(len(shells))
		for i, sh := range shells {
			if !ok[i] || vols[i] > avg*t.LargeShellFactor {
				big = append(big, sh)
			} else {
				small = append(small, sh)
			}
		}
	} else {
		for _, sh := range shells {
			if len(r.a.Explore(sh, kernel.KindFace)) > t.ComplexShellFaces {
				big = append(big, sh)
			} else {
				small = append(small, sh)
			}
		}
	}
	return r.group(big, small)
}

// geometricFeatures groups faces by surface type, planes further by
// normal direction. With few groups on a many-faced shape, faces are
// split by area instead.
func (r *run) geometricFeatures() []kernel.Shape {
	if len(r.faces) == 0 {
		return r.whole()
	}
	t := r.opts.Tuning
	feats := r.features()

	groups := make(map[string][]kernel.Shape)
	for _, f := range feats {
		key := f.Type.String()
		if f.Type == kernel.SurfacePlane {
			key = fmt.Sprintf("%s(%s)", key, normalKey(f.Normal.X, f.Normal.Y, f.Normal.Z, t.NormalKeyPrecision))
		}
		groups[key] = append(groups[key], f.Face)
	}

	if len(groups) <= 2 && len(r.faces) > t.AreaSplitFaceCount {
		var total float64
		for _, f := range feats {
			total += f.Area
		}
		avg := total / float64(len(feats))
		var big, small []kernel.Shape
		for _, f := range feats {
			if f.Area > avg*t.LargeFaceFactor {
				big = append(big, f.Face)
			} else {
				small = append(small, f.Face)
			}
		}
		return r.group(big, small)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]kernel.Shape, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.single(groups[k]))
	}
	return out
}

// group emits each non-empty set as one shape.
func (r *run) group(sets ...[]kernel.Shape) []kernel.Shape {
	var out []kernel.Shape
	for _, s := range sets {
		if len(s) > 0 {
			out = append(out, r.single(s))
		}
	}
	if len(out) == 0 {
		return r.whole()
	}
	return out
}

// single returns the lone member of shapes, or a compound of them.
func (r *run) single(shapes []kernel.Shape) kernel.Shape {
	if len(shapes) == 1 {
		return shapes[0]
	}
	return r.a.Compound(shapes)
}

func normalKey(x, y, z, step float64) string {
	round := func(v float64) float64 {
		v = math.Round(v/step) * step
		if v == 0 {
			v = 0 // drop the sign of -0
		}
		return v
	}
	return fmt.Sprintf("%.6g,%.6g,%.6g", round(x), round(y), round(z))
}
