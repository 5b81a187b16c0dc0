package kernel

import (
	"fmt"
	"log/slog"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Adapter wraps a Kernel so that no query ever fails. Errors and panics
// from the kernel are logged and replaced with a safe default: area 0,
// centroid at the origin, normal +Z, SurfaceOther, a void box, no edges.
// It is safe for concurrent use if the wrapped kernel is.
type Adapter struct {
	k      Kernel
	logger *slog.Logger
}

// NewAdapter wraps k. A nil logger uses slog.Default().
func NewAdapter(k Kernel, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{k: k, logger: logger}
}

// Kernel returns the wrapped kernel.
func (a *Adapter) Kernel() Kernel {
	return a.k
}

// guard runs fn, returning fallback when it errors or panics.
func guard[T any](a *Adapter, op string, fallback T, fn func() (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("kernel panic absorbed", "op", op, "panic", fmt.Sprint(r))
			out = fallback
		}
	}()
	v, err := fn()
	if err != nil {
		a.logger.Debug("kernel query failed", "op", op, "error", err)
		return fallback
	}
	return v
}

// Explore lists the sub-shapes of kind under s, or nil on failure.
func (a *Adapter) Explore(s Shape, kind ShapeKind) []Shape {
	if s == nil {
		return nil
	}
	return guard(a, "explore", []Shape(nil), func() ([]Shape, error) {
		return a.k.Explore(s, kind), nil
	})
}

// Classify returns the surface type of face, SurfaceOther on failure.
func (a *Adapter) Classify(face Shape) SurfaceType {
	return guard(a, "classify", SurfaceOther, func() (SurfaceType, error) {
		return a.k.SurfaceType(face)
	})
}

type surfaceProps struct {
	area     float64
	centroid v3.Vec
}

// Properties returns the area and centroid of face together.
func (a *Adapter) Properties(face Shape) (float64, v3.Vec) {
	p := guard(a, "properties", surfaceProps{}, func() (surfaceProps, error) {
		area, c, err := a.k.SurfaceProperties(face)
		if err != nil {
			return surfaceProps{}, err
		}
		if area < 0 {
			return surfaceProps{}, fmt.Errorf("negative area %g", area)
		}
		return surfaceProps{area: area, centroid: c}, nil
	})
	return p.area, p.centroid
}

// Area returns the face area, 0 on failure.
func (a *Adapter) Area(face Shape) float64 {
	area, _ := a.Properties(face)
	return area
}

// Centroid returns the face centroid, the origin on failure.
func (a *Adapter) Centroid(face Shape) v3.Vec {
	_, c := a.Properties(face)
	return c
}

// Normal returns the unit normal of face, +Z on failure.
func (a *Adapter) Normal(face Shape) v3.Vec {
	up := v3.Vec{X: 0, Y: 0, Z: 1}
	return guard(a, "normal", up, func() (v3.Vec, error) {
		n, err := a.k.Normal(face)
		if err != nil {
			return up, err
		}
		if n.Length() == 0 {
			return up, fmt.Errorf("zero normal")
		}
		return n.Normalize(), nil
	})
}

// EdgesOf returns the edges bounding face, nil on failure.
func (a *Adapter) EdgesOf(face Shape) []Shape {
	return guard(a, "edges", []Shape(nil), func() ([]Shape, error) {
		return a.k.Edges(face)
	})
}

// Bounds returns the bounding box of s, void on failure.
func (a *Adapter) Bounds(s Shape) BoundingBox {
	return guard(a, "bounds", VoidBox(), func() (BoundingBox, error) {
		return a.k.BoundingBox(s)
	})
}

// Volume returns the enclosed volume of s, 0 on failure.
func (a *Adapter) Volume(s Shape) float64 {
	return guard(a, "volume", 0, func() (float64, error) {
		return a.k.Volume(s)
	})
}

// VolumeChecked is Volume but reports whether the kernel succeeded.
func (a *Adapter) VolumeChecked(s Shape) (float64, bool) {
	type result struct {
		v  float64
		ok bool
	}
	r := guard(a, "volume", result{}, func() (result, error) {
		v, err := a.k.Volume(s)
		return result{v: v, ok: err == nil}, err
	})
	return r.v, r.ok
}

// Compound groups shapes without touching their geometry.
func (a *Adapter) Compound(shapes []Shape) Shape {
	return a.k.MakeCompound(shapes)
}

// CloseShell builds a shell from faces and tries to sew it closed at
// precision. On failure the best shell available is returned with the
// error; if no shell could be built at all, a compound of the faces is.
func (a *Adapter) CloseShell(faces []Shape, precision float64) (out Shape, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("kernel panic absorbed", "op", "close_shell", "panic", fmt.Sprint(r))
			if out == nil {
				out = a.k.MakeCompound(faces)
			}
			err = fmt.Errorf("kernel: close shell: %v", r)
		}
	}()

	shell, err := a.k.MakeShell(faces)
	if err != nil {
		return a.k.MakeCompound(faces), err
	}
	out = shell
	fixed, err := a.k.FixShell(shell, precision)
	if fixed != nil {
		out = fixed
	}
	return out, err
}

// MakeSolid turns a closed shell into a solid.
func (a *Adapter) MakeSolid(shell Shape) (out Shape, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("kernel panic absorbed", "op", "make_solid", "panic", fmt.Sprint(r))
			out, err = nil, fmt.Errorf("kernel: make solid: %v", r)
		}
	}()
	return a.k.MakeSolid(shell)
}

// ToMesh tessellates s.
func (a *Adapter) ToMesh(s Shape) (*Mesh, error) {
	return a.k.ToMesh(s)
}
