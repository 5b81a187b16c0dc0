package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/splinter/pkg/kernel"
	"github.com/chazu/splinter/pkg/kernel/brep"
)

// DefaultSegments is the facet count of round primitives.
const DefaultSegments = 32

// sexpShape wraps a kernel.Shape so it can be passed between builtins.
type sexpShape struct {
	shape kernel.Shape
	name  string
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	if s.name != "" {
		return fmt.Sprintf("(shape %q)", s.name)
	}
	return fmt.Sprintf("(%s)", s.shape.Kind())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a point or direction.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a parsed mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// trailing keyword with no value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float returns keyword k as a number, or def when absent.
func (a kwArgs) float(k string, def float64) (float64, error) {
	v, ok := a.kw[k]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return f, nil
}

// positive returns keyword k, which must be present and greater than zero.
func (a kwArgs) positive(k string) (float64, error) {
	if _, ok := a.kw[k]; !ok {
		return 0, fmt.Errorf("%s is required", k)
	}
	f, err := a.float(k, 0)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %g", k, f)
	}
	return f, nil
}

// vec returns keyword k as a vec3, or the zero vector when absent.
func (a kwArgs) vec(k string) (v3.Vec, error) {
	v, ok := a.kw[k]
	if !ok {
		return v3.Vec{}, nil
	}
	out, err := toVec3(v)
	if err != nil {
		return v3.Vec{}, fmt.Errorf("%s: %w", k, err)
	}
	return out, nil
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	if name, ok := isKW(s); ok {
		return name, nil
	}
	str, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected keyword or string: %w", err)
	}
	return str, nil
}

// toSurface converts a keyword such as :cylinder to a surface type.
func toSurface(s zygo.Sexp) (kernel.SurfaceType, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	switch strings.ToLower(name) {
	case "plane":
		return kernel.SurfacePlane, nil
	case "cylinder":
		return kernel.SurfaceCylinder, nil
	case "sphere":
		return kernel.SurfaceSphere, nil
	case "cone":
		return kernel.SurfaceCone, nil
	case "torus":
		return kernel.SurfaceTorus, nil
	case "other", "surface", "freeform":
		return kernel.SurfaceOther, nil
	}
	return 0, fmt.Errorf("invalid surface %q, expected plane, cylinder, sphere, cone, torus or other", name)
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a shape from a sexpShape.
func toShape(s zygo.Sexp) (kernel.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toShapes extracts every argument as a shape.
func toShapes(fn string, args []zygo.Sexp) ([]kernel.Shape, error) {
	out := make([]kernel.Shape, len(args))
	for i, a := range args {
		s, err := toShape(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, i+1, err)
		}
		out[i] = s
	}
	return out, nil
}

// registerBuiltins installs the modeling builtins into env. Definitions
// land in m.
//
// Source must go through preprocessSource first so that :keyword tokens
// arrive as recognizable strings.
func registerBuiltins(env *zygo.Zlisp, m *model) {

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// (box :size (vec3 10 20 5) :at (vec3 0 0 0))
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size, err := pa.vec("size")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: size must be positive on every axis, got %v", size)
		}
		at, err := pa.vec("at")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpShape{shape: brep.Box(at, size)}, nil
	})

	// (prism :radius 5 :height 10 :segments 12 :at (vec3 0 0 0) :surface :plane)
	prism := func(fn string, side kernel.SurfaceType) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			r, err := pa.positive("radius")
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			h, err := pa.positive("height")
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			segs, err := pa.float("segments", DefaultSegments)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			if segs < 3 {
				return zygo.SexpNull, fmt.Errorf("%s: segments must be at least 3, got %g", fn, segs)
			}
			at, err := pa.vec("at")
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			if v, ok := pa.kw["surface"]; ok {
				side, err = toSurface(v)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("%s: surface: %w", fn, err)
				}
			}
			return &sexpShape{shape: brep.Prism(at, r, h, int(segs), side)}, nil
		}
	}
	env.AddFunction("prism", prism("prism", kernel.SurfacePlane))
	env.AddFunction("cylinder", prism("cylinder", kernel.SurfaceCylinder))

	// (compound a b ...)
	env.AddFunction("compound", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		shapes, err := toShapes("compound", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: brep.NewCompound(shapes...)}, nil
	})

	// (fuse a b ...) puts every face of the arguments into one shell of
	// one solid.
	env.AddFunction("fuse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 0 {
			return zygo.SexpNull, fmt.Errorf("fuse requires at least one shape")
		}
		shapes, err := toShapes("fuse", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: brep.Fuse(shapes...)}, nil
	})

	// (move s :by (vec3 10 0 0))
	env.AddFunction("move", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("move requires one shape")
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: %w", err)
		}
		by, err := pa.vec("by")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: %w", err)
		}
		return &sexpShape{shape: brep.Translate(s, by)}, nil
	})

	// (retype s :surface :other)
	env.AddFunction("retype", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("retype requires one shape")
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("retype: %w", err)
		}
		v, ok := pa.kw["surface"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("retype: surface is required")
		}
		t, err := toSurface(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("retype: surface: %w", err)
		}
		return &sexpShape{shape: brep.Retype(s, t)}, nil
	})

	// (defshape "name" expr)
	env.AddFunction("defshape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defshape requires a name and a shape expression")
		}
		n, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: name: %w", err)
		}
		s, err := toShape(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		m.define(n, s)
		return &sexpShape{shape: s, name: n}, nil
	})

	// (shape "name")
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		n, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		s, ok := m.named[n]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", n)
		}
		return &sexpShape{shape: s, name: n}, nil
	})

	// (model expr)
	env.AddFunction("model", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("model requires exactly one shape")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("model: %w", err)
		}
		m.root = s
		return args[0], nil
	})
}
