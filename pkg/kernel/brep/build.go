package brep

import (
	"math"

	"github.com/chazu/splinter/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Builder creates faces that share edges: asking twice for the edge
// between the same two vertices returns the same *Edge.
type Builder struct {
	edges map[[2]*Vertex]*Edge
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{edges: make(map[[2]*Vertex]*Edge)}
}

// Vertex returns a new vertex at p.
func (b *Builder) Vertex(p v3.Vec) *Vertex {
	return &Vertex{P: p}
}

// Edge returns the edge joining u and v, creating it on first use.
func (b *Builder) Edge(u, v *Vertex) *Edge {
	if e, ok := b.edges[[2]*Vertex{u, v}]; ok {
		return e
	}
	if e, ok := b.edges[[2]*Vertex{v, u}]; ok {
		return e
	}
	e := &Edge{V0: u, V1: v}
	b.edges[[2]*Vertex{u, v}] = e
	return e
}

// Face returns a face on surf bounded by the closed loop verts.
func (b *Builder) Face(surf *Surface, verts ...*Vertex) *Face {
	f := &Face{Surface: surf, Verts: verts, Edges: make([]*Edge, len(verts))}
	for i := range verts {
		f.Edges[i] = b.Edge(verts[i], verts[(i+1)%len(verts)])
	}
	return f
}

// Plane returns a planar surface through origin with the given normal.
func Plane(origin, normal v3.Vec) *Surface {
	return &Surface{Type: kernel.SurfacePlane, Origin: origin, Axis: normal.Normalize()}
}

// Box returns a closed solid box with its minimum corner at corner.
func Box(corner, size v3.Vec) *Solid {
	b := NewBuilder()
	var c [8]*Vertex
	for i := range c {
		p := corner
		if i&1 != 0 {
			p.X += size.X
		}
		if i&2 != 0 {
			p.Y += size.Y
		}
		if i&4 != 0 {
			p.Z += size.Z
		}
		c[i] = b.Vertex(p)
	}
	far := corner.Add(size)
	faces := []*Face{
		b.Face(Plane(corner, v3.Vec{Z: -1}), c[0], c[2], c[3], c[1]),
		b.Face(Plane(far, v3.Vec{Z: 1}), c[4], c[5], c[7], c[6]),
		b.Face(Plane(corner, v3.Vec{Y: -1}), c[0], c[1], c[5], c[4]),
		b.Face(Plane(far, v3.Vec{Y: 1}), c[2], c[6], c[7], c[3]),
		b.Face(Plane(corner, v3.Vec{X: -1}), c[0], c[4], c[6], c[2]),
		b.Face(Plane(far, v3.Vec{X: 1}), c[1], c[3], c[7], c[5]),
	}
	return &Solid{Shells: []*Shell{{Faces: faces, closed: true}}}
}

// Prism returns a closed right prism with a regular n-gon section around
// the Z axis through base. Its side faces all lie on one surface of the
// given type, so a cylinder faceted into n patches is Prism(..., SurfaceCylinder).
func Prism(base v3.Vec, radius, height float64, segments int, side kernel.SurfaceType) *Solid {
	if segments < 3 {
		segments = 3
	}
	b := NewBuilder()
	bottom := make([]*Vertex, segments)
	top := make([]*Vertex, segments)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		off := v3.Vec{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
		bottom[i] = b.Vertex(base.Add(off))
		top[i] = b.Vertex(base.Add(off).Add(v3.Vec{Z: height}))
	}

	lateral := &Surface{
		Type:   side,
		Origin: base,
		Axis:   v3.Vec{Z: 1},
		RefDir: v3.Vec{X: 1},
	}
	faces := make([]*Face, 0, segments+2)
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		faces = append(faces, b.Face(lateral, bottom[i], bottom[j], top[j], top[i]))
	}

	rev := make([]*Vertex, segments)
	for i := range bottom {
		rev[i] = bottom[segments-1-i]
	}
	faces = append(faces,
		b.Face(Plane(base, v3.Vec{Z: -1}), rev...),
		b.Face(Plane(base.Add(v3.Vec{Z: height}), v3.Vec{Z: 1}), top...),
	)
	return &Solid{Shells: []*Shell{{Faces: faces, closed: true}}}
}

// Cylinder returns a cylinder faceted into segments side faces that all
// share one cylindrical surface.
func Cylinder(base v3.Vec, radius, height float64, segments int) *Solid {
	return Prism(base, radius, height, segments, kernel.SurfaceCylinder)
}

// NewCompound groups shapes.
func NewCompound(shapes ...kernel.Shape) *Compound {
	return &Compound{Children: append([]kernel.Shape(nil), shapes...)}
}

// Fuse returns one solid whose single shell holds every face of shapes,
// in order. The shell counts as closed only if every input shell was.
func Fuse(shapes ...kernel.Shape) *Solid {
	shell := &Shell{closed: true}
	seen := make(map[*Face]bool)
	found := false
	for _, s := range shapes {
		for _, sh := range explore(s, kernel.KindShell) {
			found = true
			shell.closed = shell.closed && sh.(*Shell).closed
		}
		for _, f := range facesOf(s) {
			if !seen[f] {
				seen[f] = true
				shell.Faces = append(shell.Faces, f)
			}
		}
	}
	if !found {
		shell.closed = false
	}
	return &Solid{Shells: []*Shell{shell}}
}

// Translate returns a deep copy of s moved by d. Sharing inside s is
// preserved; nothing is shared with the original.
func Translate(s kernel.Shape, d v3.Vec) kernel.Shape {
	c := &copier{
		d:        d,
		vertices: make(map[*Vertex]*Vertex),
		edges:    make(map[*Edge]*Edge),
		surfaces: make(map[*Surface]*Surface),
		faces:    make(map[*Face]*Face),
		shells:   make(map[*Shell]*Shell),
	}
	return c.shape(s)
}

// Retype returns a deep copy of s whose faces all lie on surfaces of type t.
func Retype(s kernel.Shape, t kernel.SurfaceType) kernel.Shape {
	c := &copier{
		vertices: make(map[*Vertex]*Vertex),
		edges:    make(map[*Edge]*Edge),
		surfaces: make(map[*Surface]*Surface),
		faces:    make(map[*Face]*Face),
		shells:   make(map[*Shell]*Shell),
		retype:   &t,
	}
	return c.shape(s)
}

type copier struct {
	d        v3.Vec
	retype   *kernel.SurfaceType
	vertices map[*Vertex]*Vertex
	edges    map[*Edge]*Edge
	surfaces map[*Surface]*Surface
	faces    map[*Face]*Face
	shells   map[*Shell]*Shell
}

func (c *copier) shape(s kernel.Shape) kernel.Shape {
	switch v := s.(type) {
	case *Compound:
		out := &Compound{Children: make([]kernel.Shape, len(v.Children))}
		for i, ch := range v.Children {
			out.Children[i] = c.shape(ch)
		}
		return out
	case *Solid:
		out := &Solid{Shells: make([]*Shell, len(v.Shells))}
		for i, sh := range v.Shells {
			out.Shells[i] = c.shell(sh)
		}
		return out
	case *Shell:
		return c.shell(v)
	case *Face:
		return c.face(v)
	case *Edge:
		return c.edge(v)
	case *Vertex:
		return c.vertex(v)
	}
	return s
}

func (c *copier) shell(s *Shell) *Shell {
	if out, ok := c.shells[s]; ok {
		return out
	}
	out := &Shell{Faces: make([]*Face, len(s.Faces)), closed: s.closed}
	for i, f := range s.Faces {
		out.Faces[i] = c.face(f)
	}
	c.shells[s] = out
	return out
}

func (c *copier) face(f *Face) *Face {
	if out, ok := c.faces[f]; ok {
		return out
	}
	out := &Face{
		Surface: c.surface(f.Surface),
		Verts:   make([]*Vertex, len(f.Verts)),
		Edges:   make([]*Edge, len(f.Edges)),
	}
	for i, v := range f.Verts {
		out.Verts[i] = c.vertex(v)
	}
	for i, e := range f.Edges {
		out.Edges[i] = c.edge(e)
	}
	c.faces[f] = out
	return out
}

func (c *copier) surface(s *Surface) *Surface {
	if s == nil {
		return nil
	}
	if out, ok := c.surfaces[s]; ok {
		return out
	}
	out := *s
	out.Origin = out.Origin.Add(c.d)
	if c.retype != nil {
		out.Type = *c.retype
	}
	c.surfaces[s] = &out
	return &out
}

func (c *copier) edge(e *Edge) *Edge {
	if out, ok := c.edges[e]; ok {
		return out
	}
	out := &Edge{V0: c.vertex(e.V0), V1: c.vertex(e.V1)}
	c.edges[e] = out
	return out
}

func (c *copier) vertex(v *Vertex) *Vertex {
	if out, ok := c.vertices[v]; ok {
		return out
	}
	out := &Vertex{P: v.P.Add(c.d)}
	c.vertices[v] = out
	return out
}
