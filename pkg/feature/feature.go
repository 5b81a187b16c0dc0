// Package feature computes per-face geometric descriptors.
package feature

import (
	"runtime"

	"github.com/chazu/splinter/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelThreshold is the face count above which extraction is
// split across workers.
const DefaultParallelThreshold = 100

// FaceFeature describes one face of the shape being decomposed.
type FaceFeature struct {
	Face     kernel.Shape
	Index    int
	Type     kernel.SurfaceType
	Area     float64
	Centroid v3.Vec
	Normal   v3.Vec
}

// Describe computes the feature of a single face.
func Describe(a *kernel.Adapter, face kernel.Shape, index int) FaceFeature {
	area, centroid := a.Properties(face)
	return FaceFeature{
		Face:     face,
		Index:    index,
		Type:     a.Classify(face),
		Area:     area,
		Centroid: centroid,
		Normal:   a.Normal(face),
	}
}

// Extract returns one feature per face, in face order. Above threshold
// faces the work is split into contiguous chunks, one per worker, each
// writing only its own slots of the result.
func Extract(a *kernel.Adapter, faces []kernel.Shape, threshold int) []FaceFeature {
	out := make([]FaceFeature, len(faces))
	if len(faces) <= threshold {
		for i, f := range faces {
			out[i] = Describe(a, f, i)
		}
		return out
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(faces) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(faces); start += chunk {
		lo, hi := start, min(start+chunk, len(faces))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				out[i] = Describe(a, faces[i], i)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never fail; kernel errors are absorbed by the adapter
	return out
}
