// Package kernel defines the abstract BRep kernel interface consumed by
// the decomposition pipeline. Implementations (brep) own the topology
// behind opaque Shape handles; the rest of the system only talks to them
// through Kernel, usually wrapped in an Adapter that absorbs failures.
package kernel

import (
	"errors"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ShapeKind is the topological kind of a Shape.
type ShapeKind int

const (
	KindCompound ShapeKind = iota
	KindSolid
	KindShell
	KindFace
	KindEdge
	KindVertex
)

func (k ShapeKind) String() string {
	switch k {
	case KindCompound:
		return "compound"
	case KindSolid:
		return "solid"
	case KindShell:
		return "shell"
	case KindFace:
		return "face"
	case KindEdge:
		return "edge"
	case KindVertex:
		return "vertex"
	default:
		return "unknown"
	}
}

// SurfaceType classifies the surface underlying a face.
type SurfaceType int

const (
	SurfacePlane SurfaceType = iota
	SurfaceCylinder
	SurfaceSphere
	SurfaceCone
	SurfaceTorus
	// SurfaceOther covers freeform and unrecognized surfaces.
	SurfaceOther
)

// SurfaceTypes lists every surface type in classification order.
var SurfaceTypes = []SurfaceType{
	SurfacePlane, SurfaceCylinder, SurfaceSphere, SurfaceCone, SurfaceTorus, SurfaceOther,
}

func (t SurfaceType) String() string {
	switch t {
	case SurfacePlane:
		return "PLANE"
	case SurfaceCylinder:
		return "CYLINDER"
	case SurfaceSphere:
		return "SPHERE"
	case SurfaceCone:
		return "CONE"
	case SurfaceTorus:
		return "TORUS"
	default:
		return "SURFACE"
	}
}

// Shape is an opaque handle to a topological entity. Two handles refer to
// the same entity iff they compare equal with ==, so implementations must
// hand out stable pointers.
type Shape interface {
	Kind() ShapeKind
}

// Sentinel errors returned (wrapped) by kernel implementations.
var (
	ErrUnsupported     = errors.New("kernel: unsupported shape")
	ErrNotFace         = errors.New("kernel: not a face")
	ErrNotShell        = errors.New("kernel: not a shell")
	ErrEmptyShape      = errors.New("kernel: shape has no geometry")
	ErrDegenerateFace  = errors.New("kernel: degenerate face")
	ErrOpenShell       = errors.New("kernel: shell is not closed")
	ErrNonManifold     = errors.New("kernel: non-manifold shell")
	ErrDegenerateSolid = errors.New("kernel: degenerate solid")
)

// Kernel is the raw BRep kernel interface. Methods may fail or panic on
// bad geometry; use Adapter to get safe defaults instead.
type Kernel interface {
	// Topology

	// Explore returns the distinct sub-shapes of the given kind reachable
	// from s, in a stable traversal order. s itself is included when it
	// has that kind.
	Explore(s Shape, kind ShapeKind) []Shape
	Edges(face Shape) ([]Shape, error)

	// Face queries
	SurfaceType(face Shape) (SurfaceType, error)
	SurfaceProperties(face Shape) (area float64, centroid v3.Vec, err error)
	Normal(face Shape) (v3.Vec, error)

	// Shape queries
	BoundingBox(s Shape) (BoundingBox, error)
	Volume(s Shape) (float64, error)

	// Construction
	MakeCompound(shapes []Shape) Shape
	MakeShell(faces []Shape) (Shape, error)
	// FixShell sews free edges within precision. A shell that cannot be
	// closed is returned alongside an error wrapping ErrOpenShell.
	FixShell(shell Shape, precision float64) (Shape, error)
	MakeSolid(shell Shape) (Shape, error)

	// Mesh output
	ToMesh(s Shape) (*Mesh, error)
}
