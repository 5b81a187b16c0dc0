package decompose

import (
	"math"
	"slices"

	"github.com/chazu/splinter/pkg/kernel"
	"github.com/dhconnelly/rtreego"
)

// refine turns the output of strategy s into components. Strategies that
// synthesize solids from face clusters drop parts that came out without
// volume, and feature recognition then folds small parts into similar
// neighbors. Face groupings are kept as they are. The result is nil
// unless it holds more than one component and every input face lands in
// exactly one of them.
func (r *run) refine(s Strategy, shapes []kernel.Shape) []Component {
	comps := r.components(shapes)
	switch s {
	case StrategyAdjacencyClustering:
		comps = r.dropFlat(comps)
	case StrategyFeatureRecognition:
		comps = r.mergeSmall(r.dropFlat(comps))
	}
	if len(comps) < 2 {
		return nil
	}
	if !r.partitions(comps) {
		r.log.Debug("refinement lost faces, rejecting strategy", "strategy", s.String(), "components", len(comps))
		return nil
	}
	return comps
}

// dropFlat measures each component and removes those with no volume.
func (r *run) dropFlat(comps []Component) []Component {
	kept := comps[:0:0]
	for _, c := range comps {
		c.Volume = r.a.Volume(c.Shape)
		if c.Volume <= r.opts.Tuning.MinVolume {
			r.log.Debug("dropping zero-volume component", "faces", len(c.Faces))
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// partitions reports whether comps hold every input face exactly once.
func (r *run) partitions(comps []Component) bool {
	seen := make([]bool, len(r.faces))
	n := 0
	for _, c := range comps {
		for _, f := range c.Faces {
			if seen[f] {
				return false
			}
			seen[f] = true
			n++
		}
	}
	return n == len(r.faces)
}

// boxItem indexes a component's bounding box in the R-tree.
type boxItem struct {
	index int
	rect  rtreego.Rect
}

func (b *boxItem) Bounds() rtreego.Rect { return b.rect }

// rectOf converts a box to an R-tree rectangle grown by pad on each side.
// The tree rejects zero-length sides, so flat boxes get a minimal depth.
func rectOf(b kernel.BoundingBox, pad float64) (rtreego.Rect, error) {
	const minSide = 1e-9
	lo := b.Box.Min
	size := b.Size()
	return rtreego.NewRect(
		rtreego.Point{lo.X - pad, lo.Y - pad, lo.Z - pad},
		[]float64{
			math.Max(size.X+2*pad, minSide),
			math.Max(size.Y+2*pad, minSide),
			math.Max(size.Z+2*pad, minSide),
		},
	)
}

// mergeSmall folds every component whose volume is below MergeFraction of
// the median into the earliest overlapping component with a similar
// bounding-box volume. Components are visited in order; each absorbs
// later small neighbors, so the result is deterministic.
func (r *run) mergeSmall(comps []Component) []Component {
	t := r.opts.Tuning
	if len(comps) < 2 {
		return comps
	}

	vols := make([]float64, 0, len(comps))
	for _, c := range comps {
		if c.Volume > t.MinVolume {
			vols = append(vols, c.Volume)
		}
	}
	if len(vols) == 0 {
		return comps
	}
	slices.Sort(vols)
	threshold := vols[len(vols)/2] * t.MergeFraction

	boxes := make([]kernel.BoundingBox, len(comps))
	tree := rtreego.NewTree(3, 2, 8)
	for i, c := range comps {
		boxes[i] = r.a.Bounds(c.Shape)
		if boxes[i].Void {
			continue
		}
		rect, err := rectOf(boxes[i], 0)
		if err != nil {
			continue
		}
		tree.Insert(&boxItem{index: i, rect: rect})
	}

	absorbed := make([]bool, len(comps))
	members := make([][]int, len(comps))
	for i := range comps {
		if absorbed[i] || boxes[i].Void {
			continue
		}
		query, err := rectOf(boxes[i], boxes[i].Diagonal()/2)
		if err != nil {
			continue
		}
		var near []int
		for _, s := range tree.SearchIntersect(query) {
			near = append(near, s.(*boxItem).index)
		}
		slices.Sort(near)
		for _, j := range near {
			if j <= i || absorbed[j] || comps[j].Volume >= threshold {
				continue
			}
			if !r.similarBoxes(boxes[i], boxes[j]) {
				continue
			}
			absorbed[j] = true
			members[i] = append(members[i], j)
		}
	}

	out := make([]Component, 0, len(comps))
	for i, c := range comps {
		if absorbed[i] {
			continue
		}
		if len(members[i]) == 0 {
			out = append(out, c)
			continue
		}
		shapes := []kernel.Shape{c.Shape}
		faces := slices.Clone(c.Faces)
		vol := c.Volume
		for _, j := range members[i] {
			shapes = append(shapes, comps[j].Shape)
			faces = append(faces, comps[j].Faces...)
			vol += comps[j].Volume
		}
		slices.Sort(faces)
		merged := Component{
			Shape:  r.a.Compound(shapes),
			Kind:   KindCompound,
			Faces:  faces,
			Volume: vol,
		}
		merged.ID = componentID(merged.Kind, merged.Faces)
		r.log.Debug("merged small components", "into", i, "absorbed", len(members[i]))
		out = append(out, merged)
	}
	return out
}

// similarBoxes reports whether two boxes have comparable volume.
func (r *run) similarBoxes(a, b kernel.BoundingBox) bool {
	va, vb := a.Volume(), b.Volume()
	hi := math.Max(va, vb)
	if hi <= r.opts.Tuning.MinVolume {
		return false
	}
	return math.Min(va, vb)/hi >= r.opts.Tuning.MergeSimilarity
}
