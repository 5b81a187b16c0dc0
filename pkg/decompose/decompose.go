// Package decompose splits a BRep shape into components for independent
// coloring and selection.
//
// A run is a small state machine: topology extraction explodes the shape
// at the requested level; if that separates nothing, strategies are tried
// in a per-level order until one yields more than one component; the
// winning result is refined (zero-volume parts dropped, tiny parts merged
// into similar neighbors). A run never fails. Its worst case is a single
// component holding the whole input.
package decompose

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/chazu/splinter/pkg/feature"
	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/synth"
)

// State is a stage of a decomposition run.
type State int

const (
	StateTopology State = iota
	StateEscalation
	StateRefinement
	StateDone
)

func (s State) String() string {
	switch s {
	case StateTopology:
		return "topology"
	case StateEscalation:
		return "escalation"
	case StateRefinement:
		return "refinement"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Step records one transition of a run.
type Step struct {
	State      State
	Strategy   Strategy
	Components int
}

// Result is the outcome of a run. Components is never empty.
type Result struct {
	Components []Component
	Level      Level
	// Strategy produced Components.
	Strategy  Strategy
	Trace     []Step
	FaceCount int
}

// Shapes returns the component shapes in order.
func (r *Result) Shapes() []kernel.Shape {
	out := make([]kernel.Shape, len(r.Components))
	for i, c := range r.Components {
		out[i] = c.Shape
	}
	return out
}

// Decomposer runs decompositions against one kernel. It holds no per-run
// state and is safe for concurrent use if the kernel is.
type Decomposer struct {
	adapter *kernel.Adapter
	logger  *slog.Logger
}

// Option configures a Decomposer.
type Option func(*Decomposer)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Decomposer) {
		if l != nil {
			d.logger = l
		}
	}
}

// New returns a Decomposer over k.
func New(k kernel.Kernel, opts ...Option) *Decomposer {
	d := &Decomposer{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	d.adapter = kernel.NewAdapter(k, d.logger)
	return d
}

// Decompose returns the component shapes of shape. The result is never
// empty.
func (d *Decomposer) Decompose(ctx context.Context, shape kernel.Shape, opts Options) []kernel.Shape {
	return d.Run(ctx, shape, opts).Shapes()
}

// Run decomposes shape and reports how the result came about.
func (d *Decomposer) Run(ctx context.Context, shape kernel.Shape, opts Options) *Result {
	start := time.Now()
	r := d.newRun(shape, opts)

	ctx, span := startRunSpan(ctx, opts.Level, len(r.faces))
	defer span.End()

	res := r.execute(ctx)
	r.finish(res)

	setRunSpanResult(span, res)
	recordRunMetrics(ctx, time.Since(start), res)
	d.logger.Info("decomposition finished",
		"level", res.Level.String(),
		"strategy", res.Strategy.String(),
		"faces", res.FaceCount,
		"components", len(res.Components),
		"duration", time.Since(start))
	return res
}

// run is the per-call state. Derived face data is computed on first use
// and shared by every strategy of the run.
type run struct {
	a     *kernel.Adapter
	log   *slog.Logger
	opts  Options
	shape kernel.Shape
	synth *synth.Synthesizer

	faces []kernel.Shape
	index map[kernel.Shape]int

	boxes []kernel.BoundingBox
	edges [][]kernel.Shape
	feats []feature.FaceFeature

	trace []Step
}

func (d *Decomposer) newRun(shape kernel.Shape, opts Options) *run {
	r := &run{
		a:     d.adapter,
		log:   d.logger.With("level", opts.Level.String()),
		opts:  opts,
		shape: shape,
		synth: synth.New(d.adapter, opts.Precision, d.logger),
		index: make(map[kernel.Shape]int),
	}
	r.faces = r.a.Explore(shape, kernel.KindFace)
	for i, f := range r.faces {
		r.index[f] = i
	}
	return r
}

func (r *run) step(state State, s Strategy, n int) {
	r.trace = append(r.trace, Step{State: state, Strategy: s, Components: n})
	r.log.Debug("decomposition step", "state", state.String(), "strategy", s.String(), "components", n)
}

// execute drives the state machine. A strategy wins once its refined
// output splits the faces into more than one component. Panics from the
// kernel or a strategy degrade to the whole shape.
func (r *run) execute(ctx context.Context) (res *Result) {
	res = &Result{Level: r.opts.Level, FaceCount: len(r.faces)}
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("decomposition panicked", "panic", fmt.Sprint(p))
			res.Components = []Component{r.component(r.shape)}
			res.Strategy = StrategyFallback
		}
	}()

	if !r.opts.Enabled || r.shape == nil {
		res.Components = []Component{r.component(r.shape)}
		res.Strategy = StrategyFallback
		return res
	}

	shapes := r.topology(r.opts.Level)
	r.step(StateTopology, StrategyTopology, len(shapes))
	res.Components = r.components(shapes)
	res.Strategy = StrategyTopology

	if r.opts.Level != LevelFace && len(shapes) == 1 {
		for _, s := range escalation[r.opts.Level] {
			sctx, span := startStrategySpan(ctx, s)
			candidates := r.attempt(s)
			var comps []Component
			if len(candidates) > 1 {
				comps = r.refine(s, candidates)
			}
			span.End()

			won := comps != nil
			recordStrategyAttempt(sctx, s, won)
			r.step(StateEscalation, s, len(candidates))
			if won {
				res.Components = comps
				res.Strategy = s
				r.step(StateRefinement, s, len(comps))
				break
			}
		}
	}

	if len(res.Components) == 1 && res.Components[0].Kind == KindWhole {
		res.Strategy = StrategyFallback
	}
	r.step(StateDone, res.Strategy, len(res.Components))
	return res
}

// finish fills volumes and the trace.
func (r *run) finish(res *Result) {
	for i := range res.Components {
		c := &res.Components[i]
		if c.Volume == 0 && c.Shape != nil {
			c.Volume = r.a.Volume(c.Shape)
		}
	}
	res.Trace = r.trace
}

// component wraps one output shape.
func (r *run) component(s kernel.Shape) Component {
	c := Component{Shape: s, Faces: r.faceIndices(s)}
	if s == r.shape {
		c.Kind = KindWhole
	} else {
		c.Kind = kindOf(s)
	}
	c.ID = componentID(c.Kind, c.Faces)
	return c
}

func (r *run) components(shapes []kernel.Shape) []Component {
	out := make([]Component, len(shapes))
	for i, s := range shapes {
		out[i] = r.component(s)
	}
	return out
}

// faceIndices maps the faces of s back to input face indices.
func (r *run) faceIndices(s kernel.Shape) []int {
	if s == nil {
		return nil
	}
	if s == r.shape {
		all := make([]int, len(r.faces))
		for i := range all {
			all[i] = i
		}
		return all
	}
	var out []int
	for _, f := range r.a.Explore(s, kernel.KindFace) {
		if i, ok := r.index[f]; ok {
			out = append(out, i)
		}
	}
	slices.Sort(out)
	return out
}

func (r *run) whole() []kernel.Shape {
	return []kernel.Shape{r.shape}
}

// faceShapes returns the input faces at the given indices.
func (r *run) faceShapes(indices []int) []kernel.Shape {
	out := make([]kernel.Shape, len(indices))
	for i, idx := range indices {
		out[i] = r.faces[idx]
	}
	return out
}

func (r *run) bounds() []kernel.BoundingBox {
	if r.boxes == nil {
		r.boxes = make([]kernel.BoundingBox, len(r.faces))
		for i, f := range r.faces {
			r.boxes[i] = r.a.Bounds(f)
		}
	}
	return r.boxes
}

func (r *run) edgeLists() [][]kernel.Shape {
	if r.edges == nil {
		r.edges = make([][]kernel.Shape, len(r.faces))
		for i, f := range r.faces {
			r.edges[i] = r.a.EdgesOf(f)
		}
	}
	return r.edges
}

func (r *run) features() []feature.FaceFeature {
	if r.feats == nil {
		r.feats = feature.Extract(r.a, r.faces, r.opts.Tuning.ParallelThreshold)
	}
	return r.feats
}
