// Package brep implements kernel.Kernel over a small in-memory boundary
// representation. Topological identity is pointer identity: faces that
// share an *Edge are adjacent, faces that merely touch are not.
package brep

import (
	"github.com/chazu/splinter/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vertex is a topological vertex.
type Vertex struct {
	P v3.Vec
}

// Edge is a straight edge between two vertices.
type Edge struct {
	V0, V1 *Vertex
}

// Surface is the analytic surface a face lies on. Several faces may share
// one Surface, e.g. the facets of a split cylinder.
type Surface struct {
	Type   kernel.SurfaceType
	Origin v3.Vec
	// Axis is the plane normal or the axis of revolution.
	Axis v3.Vec
	// RefDir is the u=0 direction of a surface of revolution.
	RefDir v3.Vec
}

// Face is a planar polygonal patch of a surface. Edges[i] joins Verts[i]
// and Verts[(i+1)%n]; the loop is counter-clockwise seen from outside.
type Face struct {
	Surface *Surface
	Verts   []*Vertex
	Edges   []*Edge
}

// Shell is a connected set of faces.
type Shell struct {
	Faces  []*Face
	closed bool
}

// Closed reports whether the shell was sewn closed.
func (s *Shell) Closed() bool { return s.closed }

// Solid is the region bounded by its first shell; extra shells are voids.
type Solid struct {
	Shells []*Shell
}

// Compound groups arbitrary shapes.
type Compound struct {
	Children []kernel.Shape
}

func (*Vertex) Kind() kernel.ShapeKind   { return kernel.KindVertex }
func (*Edge) Kind() kernel.ShapeKind     { return kernel.KindEdge }
func (*Face) Kind() kernel.ShapeKind     { return kernel.KindFace }
func (*Shell) Kind() kernel.ShapeKind    { return kernel.KindShell }
func (*Solid) Kind() kernel.ShapeKind    { return kernel.KindSolid }
func (*Compound) Kind() kernel.ShapeKind { return kernel.KindCompound }

// explore collects the distinct sub-shapes of kind under s in depth-first
// order. An explicit stack keeps deep compounds off the goroutine stack.
func explore(s kernel.Shape, kind kernel.ShapeKind) []kernel.Shape {
	var out []kernel.Shape
	seen := make(map[kernel.Shape]bool)
	stack := []kernel.Shape{s}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil || seen[cur] {
			continue
		}
		seen[cur] = true
		if cur.Kind() == kind {
			out = append(out, cur)
		}
		if cur.Kind() < kind || cur.Kind() == kernel.KindCompound {
			// Reverse push so children pop in order.
			children := childrenOf(cur)
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
	return out
}

func childrenOf(s kernel.Shape) []kernel.Shape {
	switch v := s.(type) {
	case *Compound:
		return v.Children
	case *Solid:
		out := make([]kernel.Shape, len(v.Shells))
		for i, sh := range v.Shells {
			out[i] = sh
		}
		return out
	case *Shell:
		out := make([]kernel.Shape, len(v.Faces))
		for i, f := range v.Faces {
			out[i] = f
		}
		return out
	case *Face:
		out := make([]kernel.Shape, len(v.Edges))
		for i, e := range v.Edges {
			out[i] = e
		}
		return out
	case *Edge:
		return []kernel.Shape{v.V0, v.V1}
	}
	return nil
}

// facesOf returns every face under s.
func facesOf(s kernel.Shape) []*Face {
	shapes := explore(s, kernel.KindFace)
	out := make([]*Face, len(shapes))
	for i, f := range shapes {
		out[i] = f.(*Face)
	}
	return out
}

// points returns the face loop positions.
func (f *Face) points() []v3.Vec {
	pts := make([]v3.Vec, len(f.Verts))
	for i, v := range f.Verts {
		pts[i] = v.P
	}
	return pts
}

// fan calls fn for each triangle of the face's fan triangulation.
func (f *Face) fan(fn func(a, b, c v3.Vec)) {
	for i := 1; i+1 < len(f.Verts); i++ {
		fn(f.Verts[0].P, f.Verts[i].P, f.Verts[i+1].P)
	}
}

// vectorArea returns the Newell vector of the loop: its direction is the
// polygon normal and its length twice the polygon area.
func (f *Face) vectorArea() v3.Vec {
	var n v3.Vec
	f.fan(func(a, b, c v3.Vec) {
		n = n.Add(b.Sub(a).Cross(c.Sub(a)))
	})
	return n
}
