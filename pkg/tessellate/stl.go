package tessellate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/splinter/pkg/kernel"
)

// Triangles converts a mesh back into sdfx triangles.
func Triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	if m == nil {
		return nil
	}
	vertex := func(i uint32) v3.Vec {
		return v3.Vec{
			X: float64(m.Vertices[3*i]),
			Y: float64(m.Vertices[3*i+1]),
			Z: float64(m.Vertices[3*i+2]),
		}
	}
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		tris = append(tris, &sdf.Triangle3{
			vertex(m.Indices[i]),
			vertex(m.Indices[i+1]),
			vertex(m.Indices[i+2]),
		})
	}
	return tris
}

// WriteSTL saves each mesh as a binary STL file in dir, named after its
// component. It returns the written paths in mesh order.
func WriteSTL(dir string, meshes []*kernel.Mesh) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}
	paths := make([]string, 0, len(meshes))
	for i, m := range meshes {
		if m == nil || m.IsEmpty() {
			continue
		}
		name := m.Component
		if name == "" {
			name = fmt.Sprintf("mesh-%d", i+1)
		}
		path := filepath.Join(dir, name+".stl")
		if err := render.SaveSTL(path, Triangles(m)); err != nil {
			return paths, fmt.Errorf("stl: %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
