package decompose

import (
	"testing"

	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/kernel/brep"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefineDropsFlatParts(t *testing.T) {
	a, b := unitBox(0), unitBox(3)
	d := newDecomposer()
	r := d.newRun(brep.NewCompound(a, b), optionsAt(LevelShape))

	out := r.refine(StrategyAdjacencyClustering, []kernel.Shape{a, b})
	require.Len(t, out, 2)
	assert.Same(t, b, out[1].Shape)
	assert.InDelta(t, 1.0, out[1].Volume, 1e-9)

	// Dropping the flat face would leave it uncovered.
	fs := a.Shells[0].Faces
	flat := fs[0]
	rest := brep.NewCompound(fs[1], fs[2], fs[3], fs[4], fs[5])
	assert.Nil(t, r.refine(StrategyAdjacencyClustering, []kernel.Shape{flat, rest, b}))
	assert.Len(t, r.refine(StrategyGeometricFeatures, []kernel.Shape{flat, rest, b}), 3)
}

func TestRefineKeepsFaceGroups(t *testing.T) {
	a, b := unitBox(0), unitBox(3)
	d := newDecomposer()
	r := d.newRun(brep.NewCompound(a, b), optionsAt(LevelSolid))

	faces := make([]kernel.Shape, 0, 6)
	for _, f := range a.Shells[0].Faces {
		faces = append(faces, f)
	}
	for _, s := range []Strategy{StrategyGeometricFeatures, StrategyShellGroups, StrategyFreeCADLike} {
		out := r.refine(s, []kernel.Shape{brep.NewCompound(faces...), b})
		require.Len(t, out, 2, s.String())
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, out[0].Faces)
	}
}

func TestRefineRejectsNonPartitions(t *testing.T) {
	a, b := unitBox(0), unitBox(3)
	d := newDecomposer()
	r := d.newRun(brep.NewCompound(a, b), optionsAt(LevelSolid))

	assert.Nil(t, r.refine(StrategyGeometricFeatures, []kernel.Shape{a}), "one part is not a split")
	assert.Nil(t, r.refine(StrategyGeometricFeatures, []kernel.Shape{a, a.Shells[0].Faces[0], b}), "face listed twice")
	assert.Nil(t, r.refine(StrategyGeometricFeatures, []kernel.Shape{a, b.Shells[0].Faces[0]}), "faces missing")
}

func TestMergeSmallFoldsIntoSimilarNeighbor(t *testing.T) {
	a := unitBox(0)
	b := unitBox(5)
	sliver := brep.Box(v3.Vec{X: 0.05}, v3.Vec{X: 1, Y: 1, Z: 0.9})
	d := newDecomposer()
	r := d.newRun(brep.NewCompound(a, b, sliver), optionsAt(LevelShape))

	comps := r.components([]kernel.Shape{a, b, sliver})
	comps[0].Volume, comps[1].Volume, comps[2].Volume = 1, 1, 0.001

	out := r.mergeSmall(comps)
	require.Len(t, out, 2)

	merged := out[0]
	assert.Equal(t, KindCompound, merged.Kind)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 12, 13, 14, 15, 16, 17}, merged.Faces)
	assert.InDelta(t, 1.001, merged.Volume, 1e-12)
	assert.NotEqual(t, comps[0].ID, merged.ID)
	assert.Same(t, b, out[1].Shape)
}

func TestMergeSmallKeepsDissimilarNeighbors(t *testing.T) {
	a := unitBox(0)
	b := unitBox(5)
	// Overlaps a but its box is far smaller, so it stays separate.
	chip := brep.Box(v3.Vec{X: 0.2, Y: 0.2, Z: 0.2}, v3.Vec{X: 0.1, Y: 0.1, Z: 0.1})
	d := newDecomposer()
	r := d.newRun(brep.NewCompound(a, b, chip), optionsAt(LevelShape))

	comps := r.components([]kernel.Shape{a, b, chip})
	comps[0].Volume, comps[1].Volume, comps[2].Volume = 1, 1, 0.001

	out := r.mergeSmall(comps)
	require.Len(t, out, 3)
	for i := range out {
		assert.Equal(t, comps[i].ID, out[i].ID)
	}
}

func TestEscalationOrder(t *testing.T) {
	assert.Equal(t, []Strategy{StrategyFreeCADLike, StrategyFeatureRecognition, StrategyShellGroups}, Escalation(LevelShape))
	assert.Equal(t, []Strategy{StrategyDirectShells, StrategyShellGroups, StrategyGeometricFeatures}, Escalation(LevelShell))
	assert.Empty(t, Escalation(LevelFace))
	assert.Empty(t, Escalation(LevelNone))

	got := Escalation(LevelSolid)
	got[0] = StrategyFallback
	assert.Equal(t, StrategyFreeCADLike, Escalation(LevelSolid)[0])
}

func TestNormalKey(t *testing.T) {
	assert.Equal(t, "0,0,1", normalKey(-1e-7, 0, 1, 1e-3))
	assert.Equal(t, normalKey(0.70710678, 0.70710678, 0, 1e-3), normalKey(0.7072, 0.7069, 0, 1e-3))
	assert.NotEqual(t, normalKey(0, 0, 1, 1e-3), normalKey(0, 0, -1, 1e-3))
}

func TestGeometricFeaturesGroupsPlanesByNormal(t *testing.T) {
	d := newDecomposer()
	box := unitBox(0)
	r := d.newRun(box, optionsAt(LevelSolid))

	out := r.geometricFeatures()
	require.Len(t, out, 6)
	for _, s := range out {
		assert.Equal(t, kernel.KindFace, s.Kind())
	}
}
