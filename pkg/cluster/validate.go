package cluster

import (
	"errors"
	"fmt"

	"github.com/chazu/splinter/pkg/kernel"
)

// Rejection reasons returned (wrapped) by Validate.
var (
	ErrTooFewFaces = errors.New("cluster: too few faces")
	ErrEdgeRatio   = errors.New("cluster: edge to face ratio out of range")
	ErrDegenerate  = errors.New("cluster: degenerate bounding box")
)

// ValidationParams bound what a connectivity cluster may look like.
type ValidationParams struct {
	MinFaces     int
	MinEdgeRatio float64
	MaxEdgeRatio float64
	// MinExtent is the smallest accepted bounding-box dimension.
	MinExtent float64
}

// DefaultValidation returns the stock limits.
func DefaultValidation() ValidationParams {
	return ValidationParams{
		MinFaces:     3,
		MinEdgeRatio: 2.5,
		MaxEdgeRatio: 6.0,
		MinExtent:    1e-6,
	}
}

// Validate checks a cluster of face indices. edges[i] and boxes[i] are the
// edges and bounding box of face i. A nil error means the cluster may be
// promoted to a component.
func Validate(members []int, edges [][]kernel.Shape, boxes []kernel.BoundingBox, p ValidationParams) error {
	if len(members) < p.MinFaces {
		return fmt.Errorf("%w: %d < %d", ErrTooFewFaces, len(members), p.MinFaces)
	}

	unique := make(map[kernel.Shape]struct{})
	bb := kernel.VoidBox()
	for _, i := range members {
		for _, e := range edges[i] {
			unique[e] = struct{}{}
		}
		bb = bb.Add(boxes[i])
	}

	ratio := float64(len(unique)) / float64(len(members))
	if ratio < p.MinEdgeRatio || ratio > p.MaxEdgeRatio {
		return fmt.Errorf("%w: %.2f not in [%g, %g]", ErrEdgeRatio, ratio, p.MinEdgeRatio, p.MaxEdgeRatio)
	}
	if bb.Void || bb.MinExtent() < p.MinExtent {
		return fmt.Errorf("%w: extents %v", ErrDegenerate, bb.Size())
	}
	return nil
}
