// Package tessellate turns decomposition components into triangle meshes,
// one per component, each tagged with a distinct display color.
package tessellate

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/splinter/pkg/decompose"
	"github.com/chazu/splinter/pkg/kernel"
)

// Palette is cycled through to color components.
var Palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Color returns the palette color of the i-th component.
func Color(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

// Name returns the display name of the i-th component.
func Name(i int, c decompose.Component) string {
	return fmt.Sprintf("%s-%d", c.Kind, i+1)
}

// Tessellate meshes every component with k. Meshes keep component order;
// components without a shape or without triangles produce no mesh. The
// first kernel failure cancels the rest.
func Tessellate(ctx context.Context, k kernel.Kernel, comps []decompose.Component) ([]*kernel.Mesh, error) {
	meshes := make([]*kernel.Mesh, len(comps))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range comps {
		if c.Shape == nil {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := k.ToMesh(c.Shape)
			if err != nil {
				return fmt.Errorf("tessellate: component %s: %w", Name(i, c), err)
			}
			m.Component = Name(i, c)
			m.Color = Color(i)
			meshes[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := meshes[:0]
	for _, m := range meshes {
		if m != nil && !m.IsEmpty() {
			out = append(out, m)
		}
	}
	return out, nil
}

// Merge concatenates meshes into one, e.g. for a single-buffer viewer.
func Merge(meshes []*kernel.Mesh) *kernel.Mesh {
	out := &kernel.Mesh{Component: "all"}
	for _, m := range meshes {
		out.Append(m)
	}
	return out
}
