package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// BoundingBox is an axis-aligned box that may be void (no geometry).
type BoundingBox struct {
	Box  sdf.Box3
	Void bool
}

// VoidBox returns a box containing nothing.
func VoidBox() BoundingBox {
	return BoundingBox{Void: true}
}

// NewBoundingBox returns the box spanning the two corners.
func NewBoundingBox(a, b v3.Vec) BoundingBox {
	return BoundingBox{Box: sdf.Box3{Min: a.Min(b), Max: a.Max(b)}}
}

// BoundPoints returns the box enclosing pts, or a void box for none.
func BoundPoints(pts []v3.Vec) BoundingBox {
	if len(pts) == 0 {
		return VoidBox()
	}
	bb := NewBoundingBox(pts[0], pts[0])
	for _, p := range pts[1:] {
		bb.Box.Min = bb.Box.Min.Min(p)
		bb.Box.Max = bb.Box.Max.Max(p)
	}
	return bb
}

// Add returns the union of b and o. Void boxes are the identity.
func (b BoundingBox) Add(o BoundingBox) BoundingBox {
	switch {
	case b.Void:
		return o
	case o.Void:
		return b
	}
	return BoundingBox{Box: b.Box.Extend(o.Box)}
}

// Union returns the box enclosing every non-void box in boxes.
func Union(boxes []BoundingBox) BoundingBox {
	out := VoidBox()
	for _, b := range boxes {
		out = out.Add(b)
	}
	return out
}

// Size returns the box extents, zero for a void box.
func (b BoundingBox) Size() v3.Vec {
	if b.Void {
		return v3.Vec{}
	}
	return b.Box.Size()
}

// Center returns the box center, the origin for a void box.
func (b BoundingBox) Center() v3.Vec {
	if b.Void {
		return v3.Vec{}
	}
	return b.Box.Center()
}

// Diagonal returns the length of the box diagonal.
func (b BoundingBox) Diagonal() float64 {
	return b.Size().Length()
}

// Volume returns the box volume.
func (b BoundingBox) Volume() float64 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// MinExtent returns the smallest of the three extents.
func (b BoundingBox) MinExtent() float64 {
	s := b.Size()
	return math.Min(s.X, math.Min(s.Y, s.Z))
}

// Intersects reports whether two non-void boxes overlap, touching included.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	if b.Void || o.Void {
		return false
	}
	return b.Box.Min.X <= o.Box.Max.X && o.Box.Min.X <= b.Box.Max.X &&
		b.Box.Min.Y <= o.Box.Max.Y && o.Box.Min.Y <= b.Box.Max.Y &&
		b.Box.Min.Z <= o.Box.Max.Z && o.Box.Min.Z <= b.Box.Max.Z
}
