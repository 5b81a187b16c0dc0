package kernel

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices  []float32 `json:"vertices" yaml:"-"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals" yaml:"-"`  // [nx0,ny0,nz0, ...]
	Indices   []uint32  `json:"indices" yaml:"-"`  // [i0,i1,i2, ...] triangles
	Component string    `json:"component" yaml:"component"` // which decomposition component this came from
	Color     string    `json:"color" yaml:"color"`         // hex color, e.g. "#4A90D9"
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Append adds the triangles of o to m, rebasing its indices.
func (m *Mesh) Append(o *Mesh) {
	if o == nil {
		return
	}
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, idx := range o.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}
