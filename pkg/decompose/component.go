package decompose

import (
	"strconv"
	"strings"

	"github.com/chazu/splinter/pkg/kernel"
	"github.com/google/uuid"
)

// ComponentKind tags what a component's shape is.
type ComponentKind int

const (
	// KindWhole is the undecomposed input shape.
	KindWhole ComponentKind = iota
	KindSolid
	KindShell
	KindFace
	KindCompound
)

func (k ComponentKind) String() string {
	switch k {
	case KindWhole:
		return "whole"
	case KindSolid:
		return "solid"
	case KindShell:
		return "shell"
	case KindFace:
		return "face"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// Component is one unit of a decomposition result.
type Component struct {
	// ID is derived from Kind and Faces, so equal decompositions of equal
	// inputs carry equal IDs.
	ID    uuid.UUID
	Shape kernel.Shape
	Kind  ComponentKind
	// Faces are the indices, in the input's face order, of the faces the
	// component was built from. Ascending.
	Faces []int
	// Volume is the enclosed volume reported by the kernel, 0 if unknown.
	Volume float64
}

var componentNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("splinter/component"))

func componentID(kind ComponentKind, faces []int) uuid.UUID {
	var b strings.Builder
	b.WriteString(kind.String())
	b.WriteByte(':')
	for i, f := range faces {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(f))
	}
	return uuid.NewSHA1(componentNamespace, []byte(b.String()))
}

func kindOf(s kernel.Shape) ComponentKind {
	if s == nil {
		return KindWhole
	}
	switch s.Kind() {
	case kernel.KindSolid:
		return KindSolid
	case kernel.KindShell:
		return KindShell
	case kernel.KindFace:
		return KindFace
	default:
		return KindCompound
	}
}
