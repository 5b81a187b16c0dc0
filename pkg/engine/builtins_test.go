package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/kernel/brep"
)

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(box :size v)`,
			expect: `(box "__kw_size" v)`,
		},
		{
			name:   "multiple keywords",
			input:  `(cylinder :radius 4 :height 10)`,
			expect: `(cylinder "__kw_radius" 4 "__kw_height" 10)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :text`",
			expect: "`raw :text`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(my-shape :at here)`,
			expect: `(my_shape "__kw_at" here)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `(vec3 -1 0 2)`,
			expect: `(vec3 -1 0 2)`,
		},
		{
			name:   "comment converted to // style",
			input:  ";; comment with :keyword\n(box)",
			expect: "// comment with :keyword\n(box)",
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:head-dia`,
			expect: `"__kw_head-dia"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func evalOK(t *testing.T, src string) kernel.Shape {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(src)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil shape")
	}
	return s
}

func evalFails(t *testing.T, src, want string) {
	t.Helper()
	s, evalErrs, err := NewEngine().Evaluate(src)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil shape on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error")
	}
	if !strings.Contains(evalErrs[0].Message, want) {
		t.Errorf("error %q should mention %q", evalErrs[0].Message, want)
	}
}

func TestBox(t *testing.T) {
	s := evalOK(t, `(model (box :size (vec3 2 3 4) :at (vec3 1 1 1)))`)

	solid, ok := s.(*brep.Solid)
	if !ok {
		t.Fatalf("expected *brep.Solid, got %T", s)
	}
	if n := faceCount(solid); n != 6 {
		t.Errorf("expected 6 faces, got %d", n)
	}
	k := brep.New()
	bb, err := k.BoundingBox(solid)
	if err != nil {
		t.Fatalf("bounding box: %v", err)
	}
	if bb.Box.Min.X != 1 || bb.Box.Max.Z != 5 {
		t.Errorf("unexpected bounds %v", bb.Box)
	}
	vol, err := k.Volume(solid)
	if err != nil {
		t.Fatalf("volume: %v", err)
	}
	if vol < 23.999 || vol > 24.001 {
		t.Errorf("expected volume 24, got %g", vol)
	}
}

func TestCylinderAndPrism(t *testing.T) {
	cyl := evalOK(t, `(model (cylinder :radius 2 :height 5 :segments 12))`)
	if n := faceCount(cyl); n != 14 {
		t.Errorf("cylinder: expected 14 faces, got %d", n)
	}
	k := brep.New()
	faces := k.Explore(cyl, kernel.KindFace)
	if st, _ := k.SurfaceType(faces[0]); st != kernel.SurfaceCylinder {
		t.Errorf("cylinder side: expected CYLINDER, got %s", st)
	}

	prism := evalOK(t, `(model (prism :radius 2 :height 5 :segments 6 :surface :other))`)
	faces = k.Explore(prism, kernel.KindFace)
	if len(faces) != 8 {
		t.Fatalf("prism: expected 8 faces, got %d", len(faces))
	}
	if st, _ := k.SurfaceType(faces[0]); st != kernel.SurfaceOther {
		t.Errorf("prism side: expected SURFACE, got %s", st)
	}

	def := evalOK(t, `(model (cylinder :radius 1 :height 1))`)
	if n := faceCount(def); n != DefaultSegments+2 {
		t.Errorf("default segments: expected %d faces, got %d", DefaultSegments+2, n)
	}
}

func TestVariableReference(t *testing.T) {
	src := `
; two boxes side by side
(def b (box :size (vec3 1 1 1)))
(model (compound b (move b :by (vec3 3 0 0))))
`
	s := evalOK(t, src)
	k := brep.New()
	solids := k.Explore(s, kernel.KindSolid)
	if len(solids) != 2 {
		t.Fatalf("expected 2 solids, got %d", len(solids))
	}
	if solids[0] == solids[1] {
		t.Error("move should copy its shape")
	}
}

func TestDefshapeWithoutModel(t *testing.T) {
	src := `
(defshape "base" (box :size (vec3 4 4 1)))
(defshape "post" (cylinder :radius 0.5 :height 3 :segments 8 :at (vec3 2 2 1)))
`
	s := evalOK(t, src)
	c, ok := s.(*brep.Compound)
	if !ok {
		t.Fatalf("expected compound, got %T", s)
	}
	if len(c.Children) != 2 {
		t.Fatalf("expected 2 named shapes, got %d", len(c.Children))
	}
	if n := faceCount(c.Children[0]); n != 6 {
		t.Errorf("first child should be the base, got %d faces", n)
	}
}

func TestShapeLookup(t *testing.T) {
	s := evalOK(t, `
(defshape "a" (box :size (vec3 1 1 1)))
(model (compound (shape "a") (move (shape "a") :by (vec3 0 0 5))))
`)
	if n := len(brep.New().Explore(s, kernel.KindSolid)); n != 2 {
		t.Errorf("expected 2 solids, got %d", n)
	}

	evalFails(t, `(shape "missing")`, "missing")
}

func TestFuseAndRetype(t *testing.T) {
	s := evalOK(t, `
(def a (prism :radius 5 :height 10 :segments 12))
(model (retype (fuse a (move a :by (vec3 20 0 0))) :surface :freeform))
`)
	k := brep.New()
	if n := len(k.Explore(s, kernel.KindSolid)); n != 1 {
		t.Errorf("expected one solid, got %d", n)
	}
	if n := len(k.Explore(s, kernel.KindShell)); n != 1 {
		t.Errorf("expected one shell, got %d", n)
	}
	faces := k.Explore(s, kernel.KindFace)
	if len(faces) != 28 {
		t.Fatalf("expected 28 faces, got %d", len(faces))
	}
	for _, f := range faces {
		if st, _ := k.SurfaceType(f); st != kernel.SurfaceOther {
			t.Fatalf("expected every face retyped, got %s", st)
		}
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"vec3 type", `(vec3 1 "a" 2)`, "expected number"},
		{"box without size", `(box)`, "positive"},
		{"box flat", `(box :size (vec3 1 0 1))`, "positive"},
		{"cylinder radius", `(cylinder :height 2)`, "radius is required"},
		{"prism segments", `(prism :radius 1 :height 1 :segments 2)`, "at least 3"},
		{"bad surface", `(prism :radius 1 :height 1 :surface :blob)`, "invalid surface"},
		{"compound of numbers", `(compound 1 2)`, "expected shape"},
		{"fuse nothing", `(fuse)`, "at least one"},
		{"retype without surface", `(retype (box :size (vec3 1 1 1)))`, "surface is required"},
		{"model arity", `(model)`, "exactly one"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.src, tt.want)
		})
	}
}

func TestExampleModels(t *testing.T) {
	paths, err := filepath.Glob("../../examples/models/*.lisp")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no example models")
	}
	for _, p := range paths {
		t.Run(filepath.Base(p), func(t *testing.T) {
			src, err := os.ReadFile(p)
			if err != nil {
				t.Fatal(err)
			}
			if n := faceCount(evalOK(t, string(src))); n == 0 {
				t.Error("example model has no faces")
			}
		})
	}
}
