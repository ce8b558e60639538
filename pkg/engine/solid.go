package engine

import (
	"fmt"

	"github.com/chazu/sdfgen/pkg/kernel"
	zygo "github.com/glycerine/zygomys/zygo"
)

// solidBuiltins returns the geometry builtins backed by k. Solids only exist
// to size links; see solid-link and solid-extent.
func solidBuiltins(k kernel.Kernel) map[string]userFunc {
	return map[string]userFunc{
		// (solid-box 100 50 25)
		"solid_box": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			dims, err := positiveFloats("solid-box", args, "x", "y", "z")
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpSolid{solid: k.Box(dims[0], dims[1], dims[2])}, nil
		},

		// (solid-cylinder 50 10)
		"solid_cylinder": func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			dims, err := positiveFloats("solid-cylinder", args, "height", "radius")
			if err != nil {
				return zygo.SexpNull, err
			}
			return &sexpSolid{solid: k.Cylinder(dims[0], dims[1])}, nil
		},

		"solid_union":        combine("solid-union", k.Union),
		"solid_difference":   combine("solid-difference", k.Difference),
		"solid_intersection": combine("solid-intersection", k.Intersection),
		"solid_translate":    transform("solid-translate", k.Translate),
		"solid_rotate":       transform("solid-rotate", k.Rotate),
	}
}

// positiveFloats reads exactly len(labels) positive numbers.
func positiveFloats(builtin string, args []zygo.Sexp, labels ...string) ([]float64, error) {
	if len(args) != len(labels) {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", builtin, len(labels), len(args))
	}
	out := make([]float64, len(labels))
	for i, label := range labels {
		f, err := toFloat64(args[i])
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", builtin, label, err)
		}
		if f <= 0 {
			return nil, fmt.Errorf("%s: %s must be positive, got %v", builtin, label, f)
		}
		out[i] = f
	}
	return out, nil
}

// (solid-union a b)
func combine(builtin string, op func(a, b kernel.Solid) kernel.Solid) userFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires exactly 2 solids, got %d", builtin, len(args))
		}
		a, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: first: %w", builtin, err)
		}
		b, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: second: %w", builtin, err)
		}
		return &sexpSolid{solid: op(a, b)}, nil
	}
}

// (solid-translate s (vec3 10 0 0))
func transform(builtin string, op func(s kernel.Solid, x, y, z float64) kernel.Solid) userFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vec3", builtin)
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: solid: %w", builtin, err)
		}
		v, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", builtin, err)
		}
		return &sexpSolid{solid: op(s, v.X, v.Y, v.Z)}, nil
	}
}
