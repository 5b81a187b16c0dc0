package brep

import (
	"fmt"
	"math"

	"github.com/chazu/splinter/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// minSolidVolume is the smallest volume MakeSolid accepts.
const minSolidVolume = 1e-12

// Kernel implements kernel.Kernel over brep shapes.
type Kernel struct{}

// New returns a new Kernel.
func New() *Kernel {
	return &Kernel{}
}

func asFace(s kernel.Shape) (*Face, error) {
	f, ok := s.(*Face)
	if !ok || f == nil {
		return nil, fmt.Errorf("brep: %T: %w", s, kernel.ErrNotFace)
	}
	if len(f.Verts) < 3 {
		return nil, fmt.Errorf("brep: face with %d vertices: %w", len(f.Verts), kernel.ErrDegenerateFace)
	}
	return f, nil
}

func asShell(s kernel.Shape) (*Shell, error) {
	sh, ok := s.(*Shell)
	if !ok || sh == nil {
		return nil, fmt.Errorf("brep: %T: %w", s, kernel.ErrNotShell)
	}
	return sh, nil
}

// Explore returns the distinct sub-shapes of kind under s.
func (k *Kernel) Explore(s kernel.Shape, kind kernel.ShapeKind) []kernel.Shape {
	return explore(s, kind)
}

// Edges returns the boundary edges of a face in loop order.
func (k *Kernel) Edges(face kernel.Shape) ([]kernel.Shape, error) {
	f, err := asFace(face)
	if err != nil {
		return nil, err
	}
	out := make([]kernel.Shape, len(f.Edges))
	for i, e := range f.Edges {
		out[i] = e
	}
	return out, nil
}

// SurfaceType classifies the face's underlying surface.
func (k *Kernel) SurfaceType(face kernel.Shape) (kernel.SurfaceType, error) {
	f, err := asFace(face)
	if err != nil {
		return kernel.SurfaceOther, err
	}
	if f.Surface == nil {
		return kernel.SurfaceOther, fmt.Errorf("brep: face has no surface")
	}
	return f.Surface.Type, nil
}

// SurfaceProperties returns the face area and area-weighted centroid.
func (k *Kernel) SurfaceProperties(face kernel.Shape) (float64, v3.Vec, error) {
	f, err := asFace(face)
	if err != nil {
		return 0, v3.Vec{}, err
	}
	var area float64
	var moment v3.Vec
	f.fan(func(a, b, c v3.Vec) {
		ta := b.Sub(a).Cross(c.Sub(a)).Length() / 2
		area += ta
		moment = moment.Add(a.Add(b).Add(c).MulScalar(ta / 3))
	})
	if area == 0 {
		return 0, v3.Vec{}, fmt.Errorf("brep: zero-area face: %w", kernel.ErrDegenerateFace)
	}
	return area, moment.DivScalar(area), nil
}

// Normal returns the face normal. Planar and freeform faces use the loop
// normal; surfaces of revolution are evaluated at the centre of their
// parameter range, so every patch of one such surface shares a normal.
func (k *Kernel) Normal(face kernel.Shape) (v3.Vec, error) {
	f, err := asFace(face)
	if err != nil {
		return v3.Vec{}, err
	}
	if f.Surface != nil {
		switch f.Surface.Type {
		case kernel.SurfaceCylinder, kernel.SurfaceCone, kernel.SurfaceSphere, kernel.SurfaceTorus:
			ref := f.Surface.RefDir
			if ref.Length() == 0 {
				return v3.Vec{}, fmt.Errorf("brep: %s surface without reference direction", f.Surface.Type)
			}
			// u = pi turns the reference direction around the axis by half a turn.
			return ref.Normalize().MulScalar(-1), nil
		}
	}
	n := f.vectorArea()
	if n.Length() == 0 {
		if f.Surface != nil && f.Surface.Axis.Length() > 0 {
			return f.Surface.Axis.Normalize(), nil
		}
		return v3.Vec{}, fmt.Errorf("brep: zero normal: %w", kernel.ErrDegenerateFace)
	}
	return n.Normalize(), nil
}

// BoundingBox returns the box around every vertex of s.
func (k *Kernel) BoundingBox(s kernel.Shape) (kernel.BoundingBox, error) {
	verts := explore(s, kernel.KindVertex)
	if len(verts) == 0 {
		return kernel.VoidBox(), fmt.Errorf("brep: bounding box: %w", kernel.ErrEmptyShape)
	}
	pts := make([]v3.Vec, len(verts))
	for i, v := range verts {
		pts[i] = v.(*Vertex).P
	}
	return kernel.BoundPoints(pts), nil
}

// Volume returns the volume enclosed by the faces of s, by the divergence
// theorem about the centre of its bounding box. Open and flat face sets
// give a best-effort value.
func (k *Kernel) Volume(s kernel.Shape) (float64, error) {
	faces := facesOf(s)
	if len(faces) == 0 {
		return 0, fmt.Errorf("brep: volume: %w", kernel.ErrEmptyShape)
	}
	bb, err := k.BoundingBox(s)
	if err != nil {
		return 0, err
	}
	ref := bb.Center()
	var vol float64
	for _, f := range faces {
		f.fan(func(a, b, c v3.Vec) {
			a, b, c = a.Sub(ref), b.Sub(ref), c.Sub(ref)
			vol += a.Dot(b.Cross(c)) / 6
		})
	}
	return math.Abs(vol), nil
}

// MakeCompound groups shapes.
func (k *Kernel) MakeCompound(shapes []kernel.Shape) kernel.Shape {
	return NewCompound(shapes...)
}

// MakeShell builds an unsewn shell from faces.
func (k *Kernel) MakeShell(faces []kernel.Shape) (kernel.Shape, error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("brep: shell: %w", kernel.ErrEmptyShape)
	}
	sh := &Shell{Faces: make([]*Face, len(faces))}
	for i, s := range faces {
		f, ok := s.(*Face)
		if !ok {
			return nil, fmt.Errorf("brep: shell member %d is %T: %w", i, s, kernel.ErrNotFace)
		}
		sh.Faces[i] = f
	}
	return sh, nil
}

// FixShell closes a shell when every edge bounds exactly two of its faces,
// either by identity or by sewing a free edge to another free edge whose
// endpoints coincide within precision.
func (k *Kernel) FixShell(shell kernel.Shape, precision float64) (kernel.Shape, error) {
	sh, err := asShell(shell)
	if err != nil {
		return nil, err
	}
	if len(sh.Faces) == 0 {
		return sh, fmt.Errorf("brep: fix shell: %w", kernel.ErrEmptyShape)
	}

	uses := make(map[*Edge]int)
	var order []*Edge
	for _, f := range sh.Faces {
		for _, e := range f.Edges {
			if uses[e] == 0 {
				order = append(order, e)
			}
			uses[e]++
		}
	}

	var free []*Edge
	for _, e := range order {
		switch n := uses[e]; {
		case n > 2:
			return sh, fmt.Errorf("brep: edge used by %d faces: %w", n, kernel.ErrNonManifold)
		case n == 1:
			free = append(free, e)
		}
	}

	unmatched := sew(free, precision)
	out := &Shell{Faces: sh.Faces, closed: unmatched == 0}
	if unmatched > 0 {
		return out, fmt.Errorf("brep: %d free edges: %w", unmatched, kernel.ErrOpenShell)
	}
	return out, nil
}

// sew pairs coincident free edges and returns how many stay unmatched.
func sew(free []*Edge, precision float64) int {
	matched := make([]bool, len(free))
	near := func(a, b v3.Vec) bool { return a.Sub(b).Length() <= precision }
	unmatched := 0
	for i, e := range free {
		if matched[i] {
			continue
		}
		for j := i + 1; j < len(free); j++ {
			if matched[j] {
				continue
			}
			o := free[j]
			if (near(e.V0.P, o.V0.P) && near(e.V1.P, o.V1.P)) ||
				(near(e.V0.P, o.V1.P) && near(e.V1.P, o.V0.P)) {
				matched[i], matched[j] = true, true
				break
			}
		}
		if !matched[i] {
			unmatched++
		}
	}
	return unmatched
}

// MakeSolid builds a solid from a closed shell.
func (k *Kernel) MakeSolid(shell kernel.Shape) (kernel.Shape, error) {
	sh, err := asShell(shell)
	if err != nil {
		return nil, err
	}
	if !sh.closed {
		return nil, fmt.Errorf("brep: make solid: %w", kernel.ErrOpenShell)
	}
	vol, err := k.Volume(sh)
	if err != nil {
		return nil, err
	}
	if vol <= minSolidVolume {
		return nil, fmt.Errorf("brep: volume %g: %w", vol, kernel.ErrDegenerateSolid)
	}
	return &Solid{Shells: []*Shell{sh}}, nil
}

// ToMesh fan-triangulates every face of s into a flat mesh.
func (k *Kernel) ToMesh(s kernel.Shape) (*kernel.Mesh, error) {
	faces := facesOf(s)

	var numTri int
	for _, f := range faces {
		if len(f.Verts) >= 3 {
			numTri += len(f.Verts) - 2
		}
	}
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	i := 0
	for _, f := range faces {
		f.fan(func(a, b, c v3.Vec) {
			tri := sdf.Triangle3{a, b, c}
			n := tri.Normal()
			nx := float32(n.X)
			ny := float32(n.Y)
			nz := float32(n.Z)

			for j := 0; j < 3; j++ {
				v := tri[j]
				vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
				normals = append(normals, nx, ny, nz)
				indices = append(indices, uint32(i*3+j))
			}
			i++
		})
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
