// Package cluster groups faces into candidate components, either by
// geometric similarity or by edge connectivity, and validates clusters
// before they are promoted.
package cluster

import (
	"math"
	"slices"

	"github.com/chazu/splinter/pkg/feature"
	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/spatial"
)

// SimilarityParams are the thresholds of the similarity predicate.
type SimilarityParams struct {
	// MinAreaRatio is the smallest accepted min(area)/max(area).
	MinAreaRatio float64
	// DistanceFactor scales the mean bounding-box diagonal of the two faces
	// into the largest accepted centroid distance.
	DistanceFactor float64
	// MinNormalDot is the smallest accepted |n1·n2| for planes and cylinders.
	MinNormalDot float64
}

// DefaultSimilarity returns the stock thresholds.
func DefaultSimilarity() SimilarityParams {
	return SimilarityParams{
		MinAreaRatio:   0.75,
		DistanceFactor: 2.0,
		MinNormalDot:   0.9,
	}
}

// Similar reports whether two faces belong in the same feature group.
// Faces without area cannot be compared and are never similar.
func Similar(a, b feature.FaceFeature, boxA, boxB kernel.BoundingBox, p SimilarityParams) bool {
	if a.Type != b.Type {
		return false
	}
	hi := math.Max(a.Area, b.Area)
	if hi <= 0 || math.Min(a.Area, b.Area)/hi < p.MinAreaRatio {
		return false
	}
	reach := p.DistanceFactor * (boxA.Diagonal() + boxB.Diagonal()) / 2
	if a.Centroid.Sub(b.Centroid).Length() > reach {
		return false
	}
	if a.Type == kernel.SurfacePlane || a.Type == kernel.SurfaceCylinder {
		if math.Abs(a.Normal.Dot(b.Normal)) < p.MinNormalDot {
			return false
		}
	}
	return true
}

// BySimilarity groups faces of equal surface type that pass Similar
// against their group's seed. Groups grow through spatial neighbors: the
// neighbors of every absorbed face are candidates too, so a chain of small
// patches covering one surface ends up in one group. Every face lands in
// exactly one group; groups come out per surface type in SurfaceTypes
// order, then by seed index, with members ascending.
func BySimilarity(feats []feature.FaceFeature, boxes []kernel.BoundingBox, grid *spatial.Grid, p SimilarityParams) [][]int {
	buckets := make(map[kernel.SurfaceType][]int)
	for i, f := range feats {
		buckets[f.Type] = append(buckets[f.Type], i)
	}

	assigned := make([]bool, len(feats))
	var groups [][]int
	for _, st := range kernel.SurfaceTypes {
		for _, seed := range buckets[st] {
			if assigned[seed] {
				continue
			}
			assigned[seed] = true
			group := []int{seed}
			queue := []int{seed}
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				for _, j := range grid.Nearby(cur) {
					if assigned[j] || feats[j].Type != st {
						continue
					}
					if !Similar(feats[seed], feats[j], boxes[seed], boxes[j], p) {
						continue
					}
					assigned[j] = true
					group = append(group, j)
					queue = append(queue, j)
				}
			}
			slices.Sort(group)
			groups = append(groups, group)
		}
	}
	return groups
}
