package cluster

import (
	"testing"

	"github.com/chazu/splinter/pkg/adjacency"
	"github.com/chazu/splinter/pkg/feature"
	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/kernel/brep"
	"github.com/chazu/splinter/pkg/spatial"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type faceData struct {
	faces []kernel.Shape
	feats []feature.FaceFeature
	edges [][]kernel.Shape
	boxes []kernel.BoundingBox
}

func describe(s kernel.Shape) faceData {
	a := kernel.NewAdapter(brep.New(), nil)
	d := faceData{faces: a.Explore(s, kernel.KindFace)}
	d.feats = feature.Extract(a, d.faces, feature.DefaultParallelThreshold)
	for _, f := range d.faces {
		d.edges = append(d.edges, a.EdgesOf(f))
		d.boxes = append(d.boxes, a.Bounds(f))
	}
	return d
}

func TestSimilar(t *testing.T) {
	box := kernel.NewBoundingBox(v3.Vec{}, v3.Vec{X: 1, Y: 1})
	base := feature.FaceFeature{
		Type:   kernel.SurfacePlane,
		Area:   1,
		Normal: v3.Vec{Z: 1},
	}
	p := DefaultSimilarity()

	tests := []struct {
		name   string
		mutate func(f *feature.FaceFeature)
		want   bool
	}{
		{"identical", func(f *feature.FaceFeature) {}, true},
		{"other type", func(f *feature.FaceFeature) { f.Type = kernel.SurfaceSphere }, false},
		{"area ratio at limit", func(f *feature.FaceFeature) { f.Area = 0.75 }, true},
		{"area ratio below", func(f *feature.FaceFeature) { f.Area = 0.7 }, false},
		{"within reach", func(f *feature.FaceFeature) { f.Centroid = v3.Vec{X: 2.8} }, true},
		{"too far", func(f *feature.FaceFeature) { f.Centroid = v3.Vec{X: 3} }, false},
		{"flipped normal", func(f *feature.FaceFeature) { f.Normal = v3.Vec{Z: -1} }, true},
		{"tilted normal", func(f *feature.FaceFeature) { f.Normal = v3.Vec{X: 1} }, false},
		{"zero area", func(f *feature.FaceFeature) { f.Area = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			tt.mutate(&other)
			assert.Equal(t, tt.want, Similar(base, other, box, box, p))
		})
	}

	t.Run("normals ignored off planes and cylinders", func(t *testing.T) {
		a, b := base, base
		a.Type, b.Type = kernel.SurfaceSphere, kernel.SurfaceSphere
		b.Normal = v3.Vec{X: 1}
		assert.True(t, Similar(a, b, box, box, p))
	})

	t.Run("both zero area", func(t *testing.T) {
		a, b := base, base
		a.Area, b.Area = 0, 0
		assert.False(t, Similar(a, b, box, box, p))
	})
}

func TestBySimilarityCylinder(t *testing.T) {
	d := describe(brep.Cylinder(v3.Vec{}, 10, 40, 30))
	require.Len(t, d.faces, 32)

	grid := spatial.NewGrid(d.boxes, 8)
	groups := BySimilarity(d.feats, d.boxes, grid, DefaultSimilarity())

	var cylinders [][]int
	covered := make(map[int]int)
	for _, g := range groups {
		for _, i := range g {
			covered[i]++
		}
		if d.feats[g[0]].Type == kernel.SurfaceCylinder {
			cylinders = append(cylinders, g)
		}
	}
	require.Len(t, cylinders, 1)
	assert.Len(t, cylinders[0], 30)
	assert.Len(t, covered, 32)
	for i, n := range covered {
		assert.Equal(t, 1, n, "face %d grouped %d times", i, n)
	}
}

func TestBySimilarityDeterministic(t *testing.T) {
	d := describe(brep.NewCompound(
		brep.Cylinder(v3.Vec{}, 10, 40, 30),
		brep.Box(v3.Vec{X: 30}, v3.Vec{X: 5, Y: 5, Z: 5}),
	))
	grid := spatial.NewGrid(d.boxes, 8)
	first := BySimilarity(d.feats, d.boxes, grid, DefaultSimilarity())
	second := BySimilarity(d.feats, d.boxes, grid, DefaultSimilarity())
	assert.Equal(t, first, second)
}

func TestConnected(t *testing.T) {
	d := describe(brep.NewCompound(
		brep.Box(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}),
		brep.Box(v3.Vec{X: 1}, v3.Vec{X: 1, Y: 1, Z: 1}),
	))
	g := adjacency.Build(d.edges, spatial.NewGrid(d.boxes, 4))

	clusters := Connected(g)
	require.Len(t, clusters, 2)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, clusters[0])
	assert.Equal(t, []int{6, 7, 8, 9, 10, 11}, clusters[1])
}

func TestConnectedLongChain(t *testing.T) {
	const n = 100000
	pairs := make([][2]int, 0, n-1)
	for i := 0; i+1 < n; i++ {
		pairs = append(pairs, [2]int{i, i + 1})
	}
	clusters := Connected(adjacency.FromPairs(n, pairs))
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0], n)
}

func TestConnectedIsolated(t *testing.T) {
	clusters := Connected(adjacency.FromPairs(3, nil))
	assert.Equal(t, [][]int{{0}, {1}, {2}}, clusters)
}

func TestValidate(t *testing.T) {
	p := DefaultValidation()

	t.Run("prism accepted", func(t *testing.T) {
		d := describe(brep.Cylinder(v3.Vec{}, 5, 10, 12))
		all := make([]int, len(d.faces))
		for i := range all {
			all[i] = i
		}
		// 36 edges over 14 faces.
		assert.NoError(t, Validate(all, d.edges, d.boxes, p))
	})

	t.Run("too few faces", func(t *testing.T) {
		d := describe(brep.Box(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}))
		assert.ErrorIs(t, Validate([]int{0, 2}, d.edges, d.boxes, p), ErrTooFewFaces)
	})

	t.Run("box edge ratio too low", func(t *testing.T) {
		d := describe(brep.Box(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}))
		// 12 edges over 6 faces.
		assert.ErrorIs(t, Validate([]int{0, 1, 2, 3, 4, 5}, d.edges, d.boxes, p), ErrEdgeRatio)
	})

	t.Run("flat cluster", func(t *testing.T) {
		b := brep.NewBuilder()
		up := brep.Plane(v3.Vec{}, v3.Vec{Z: 1})
		var tris []kernel.Shape
		for i := 0; i < 3; i++ {
			x := float64(i) * 2
			tris = append(tris, b.Face(up,
				b.Vertex(v3.Vec{X: x}),
				b.Vertex(v3.Vec{X: x + 1}),
				b.Vertex(v3.Vec{X: x, Y: 1}),
			))
		}
		d := describe(brep.NewCompound(tris...))
		assert.ErrorIs(t, Validate([]int{0, 1, 2}, d.edges, d.boxes, p), ErrDegenerate)
	})
}
