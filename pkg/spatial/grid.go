// Package spatial buckets faces into a uniform grid so that neighbor
// searches only visit nearby cells.
package spatial

import (
	"math"

	"github.com/chazu/splinter/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Grid is a G×G×G partition of the union of the indexed boxes. Each item
// lives in the cell holding its box's minimum corner and is also listed
// in every cell its box covers. A Grid is read-only after construction
// and safe for concurrent reads.
type Grid struct {
	resolution int
	bounds     kernel.BoundingBox
	cells      map[int][]int
	covers     map[int][]int
	cellOf     []int // -1 for items with void boxes
	spans      []span
}

// span is the inclusive range of cells an item's box covers.
type span struct {
	lo, hi [3]int
}

// NewGrid indexes boxes at the given resolution (clamped to at least 1).
// Void boxes are left out of the index.
func NewGrid(boxes []kernel.BoundingBox, resolution int) *Grid {
	if resolution < 1 {
		resolution = 1
	}
	g := &Grid{
		resolution: resolution,
		bounds:     kernel.Union(boxes),
		cells:      make(map[int][]int),
		covers:     make(map[int][]int),
		cellOf:     make([]int, len(boxes)),
		spans:      make([]span, len(boxes)),
	}
	for i, b := range boxes {
		if b.Void {
			g.cellOf[i] = -1
			continue
		}
		x, y, z := g.locate(b.Box.Min)
		hx, hy, hz := g.locate(b.Box.Max)
		g.spans[i] = span{lo: [3]int{x, y, z}, hi: [3]int{hx, hy, hz}}
		c := g.key(x, y, z)
		g.cellOf[i] = c
		g.cells[c] = append(g.cells[c], i)
		g.visit(g.spans[i].lo, g.spans[i].hi, func(k int) {
			g.covers[k] = append(g.covers[k], i)
		})
	}
	return g
}

// Resolution returns G.
func (g *Grid) Resolution() int { return g.resolution }

// Bounds returns the union box the grid spans.
func (g *Grid) Bounds() kernel.BoundingBox { return g.bounds }

// Len returns the number of items the grid was built over.
func (g *Grid) Len() int { return len(g.cellOf) }

func (g *Grid) key(x, y, z int) int {
	return x + y*g.resolution + z*g.resolution*g.resolution
}

func (g *Grid) axis(v, lo, extent float64) int {
	if extent <= 0 {
		return 0
	}
	c := int(math.Floor((v - lo) / extent * float64(g.resolution)))
	return max(0, min(g.resolution-1, c))
}

func (g *Grid) locate(p v3.Vec) (x, y, z int) {
	lo := g.bounds.Box.Min
	ext := g.bounds.Size()
	return g.axis(p.X, lo.X, ext.X),
		g.axis(p.Y, lo.Y, ext.Y),
		g.axis(p.Z, lo.Z, ext.Z)
}

// Cell returns the cell coordinates of item i; ok is false when i has a
// void box or is out of range.
func (g *Grid) Cell(i int) (x, y, z int, ok bool) {
	if i < 0 || i >= len(g.cellOf) || g.cellOf[i] < 0 {
		return 0, 0, 0, false
	}
	c := g.cellOf[i]
	r := g.resolution
	return c % r, (c / r) % r, c / (r * r), true
}

// Nearby returns the items in the 3×3×3 block of cells around item i,
// excluding i itself, in cell then insertion order.
func (g *Grid) Nearby(i int) []int {
	cx, cy, cz, ok := g.Cell(i)
	if !ok {
		return nil
	}
	c := [3]int{cx, cy, cz}
	return g.collect(i, c, c)
}

// Candidates returns every item whose covered cells lie within one ring
// of the cells covered by item i, excluding i, each once. Any item whose
// box touches the box of i is among them, and the relation is symmetric.
func (g *Grid) Candidates(i int) []int {
	if _, _, _, ok := g.Cell(i); !ok {
		return nil
	}
	sp := g.spans[i]
	seen := map[int]bool{i: true}
	var out []int
	g.visit(g.ring(sp.lo, -1), g.ring(sp.hi, 1), func(k int) {
		for _, j := range g.covers[k] {
			if !seen[j] {
				seen[j] = true
				out = append(out, j)
			}
		}
	})
	return out
}

// collect gathers the items whose min corner lies in cells [lo-1, hi+1],
// clamped, except skip.
func (g *Grid) collect(skip int, lo, hi [3]int) []int {
	var out []int
	g.visit(g.ring(lo, -1), g.ring(hi, 1), func(k int) {
		for _, j := range g.cells[k] {
			if j != skip {
				out = append(out, j)
			}
		}
	})
	return out
}

// ring offsets c by d on every axis, clamped to the grid.
func (g *Grid) ring(c [3]int, d int) [3]int {
	for a := range c {
		c[a] = max(0, min(g.resolution-1, c[a]+d))
	}
	return c
}

// visit calls fn with the key of every cell in [lo, hi], z-major.
func (g *Grid) visit(lo, hi [3]int, fn func(k int)) {
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				fn(g.key(x, y, z))
			}
		}
	}
}
