package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/sdfgen/pkg/element"
	"github.com/chazu/sdfgen/pkg/kernel"
	"github.com/chazu/sdfgen/pkg/sdf"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpFragment wraps a fragment so it can be passed between builtins.
type sexpFragment struct {
	el *element.Element
}

func (f *sexpFragment) SexpString(ps *zygo.PrintState) string {
	return f.el.String()
}
func (f *sexpFragment) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an sdf.Vec3.
type sexpVec3 struct {
	vec sdf.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return "(vec3 " + v.vec.String() + ")"
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a kernel.Solid.
type sexpSolid struct {
	solid kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return "(solid " + sdf.Extent(s.solid).String() + ")"
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A trailing keyword with no value maps to SexpNull.
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

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

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

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a SexpBool.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (sdf.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return sdf.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toFragment extracts a fragment from a sexpFragment.
func toFragment(s zygo.Sexp) (*element.Element, error) {
	if f, ok := s.(*sexpFragment); ok {
		return f.el, nil
	}
	return nil, fmt.Errorf("expected fragment, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a kernel.Solid from a sexpSolid.
func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// optFragment reads an optional fragment keyword.
func optFragment(pa kwArgs, key string) (*element.Element, error) {
	v, ok := pa.kw[key]
	if !ok {
		return nil, nil
	}
	return toFragment(v)
}

// optFloat reads an optional numeric keyword.
func optFloat(pa kwArgs, key string) (*float64, error) {
	v, ok := pa.kw[key]
	if !ok {
		return nil, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// optInt reads an optional integer keyword.
func optInt(pa kwArgs, key string) (*int, error) {
	v, ok := pa.kw[key]
	if !ok {
		return nil, nil
	}
	n, err := toInt(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// linkOptions reads the shared keywords of box-link and solid-link.
func linkOptions(pa kwArgs) (sdf.BoxLinkOptions, error) {
	var opts sdf.BoxLinkOptions
	if v, ok := pa.kw["visual"]; ok {
		b, err := toBool(v)
		if err != nil {
			return opts, fmt.Errorf("visual: %w", err)
		}
		opts.NoVisual = !b
	}
	if v, ok := pa.kw["collision"]; ok {
		b, err := toBool(v)
		if err != nil {
			return opts, fmt.Errorf("collision: %w", err)
		}
		opts.NoCollision = !b
	}
	m, err := optFragment(pa, "material")
	if err != nil {
		return opts, fmt.Errorf("material: %w", err)
	}
	opts.Material = m
	bm, err := optInt(pa, "bitmask")
	if err != nil {
		return opts, fmt.Errorf("bitmask: %w", err)
	}
	opts.Bitmask = bm
	return opts, nil
}

// positionals checks the positional arity of a builtin.
func positionals(name string, pa kwArgs, n int, usage string) error {
	if len(pa.positional) < n {
		return fmt.Errorf("%s requires %s", name, usage)
	}
	return nil
}

// userFunc is the zygomys builtin signature.
type userFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the fragment builtins into a zygomys environment.
// Fragments passed to (emit ...) are handed to emit in call order.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, k kernel.Kernel, emit func(*element.Element)) {
	builtins := map[string]userFunc{
		"vec3":            builtinVec3,
		"element":         builtinElement,
		"box":             builtinBox,
		"collide_bitmask": builtinCollideBitmask,
		"visual":          builtinVisual,
		"collision":       builtinCollision,
		"box_link":        builtinBoxLink,
		"joint":           builtinJoint,
		"solid_link":      builtinSolidLink,
		"solid_extent":    builtinSolidExtent,
	}
	for name, fn := range solidBuiltins(k) {
		builtins[name] = fn
	}

	// (emit fragment...) returns its last argument.
	builtins["emit"] = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		frags := make([]*element.Element, 0, len(args))
		for i, a := range args {
			f, err := toFragment(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("emit: argument %d: %w", i+1, err)
			}
			frags = append(frags, f)
		}
		for _, f := range frags {
			emit(f)
		}
		if len(args) == 0 {
			return zygo.SexpNull, nil
		}
		return args[len(args)-1], nil
	}

	for name, fn := range builtins {
		env.AddFunction(name, fn)
	}
}

// (vec3 1 2 3)
func builtinVec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var xyz [3]float64
	for i, label := range []string{"x", "y", "z"} {
		f, err := toFloat64(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", label, err)
		}
		xyz[i] = f
	}
	return &sexpVec3{vec: sdf.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
}

// (element "pose" :relative_to "world" :text "0 0 1 0 0 0" child...)
//
// Every keyword other than :text becomes an attribute; attributes are
// written in keyword name order.
func builtinElement(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := positionals("element", pa, 1, "a tag argument"); err != nil {
		return zygo.SexpNull, err
	}
	tag, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("element: tag: %w", err)
	}
	el := element.New(tag)

	keys := make([]string, 0, len(pa.kw))
	for key := range pa.kw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		val, err := toString(pa.kw[key])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("element: %s: %w", key, err)
		}
		if key == "text" {
			el.Text = val
			continue
		}
		el.Set(key, val)
	}

	for i, c := range pa.positional[1:] {
		child, err := toFragment(c)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("element: child %d: %w", i+1, err)
		}
		// Children are cloned so one fragment can be reused across a script.
		if err := el.Append(child.Clone()); err != nil {
			return zygo.SexpNull, fmt.Errorf("element: child %d: %w", i+1, err)
		}
	}
	return &sexpFragment{el: el}, nil
}

// (box (vec3 1 2 3))
func builtinBox(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("box requires exactly 1 argument, got %d", len(args))
	}
	size, err := toVec3(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
	}
	return &sexpFragment{el: sdf.Box(size)}, nil
}

// (collide-bitmask 3)
func builtinCollideBitmask(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("collide-bitmask requires exactly 1 argument, got %d", len(args))
	}
	bm, err := toInt(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("collide-bitmask: %w", err)
	}
	return &sexpFragment{el: sdf.CollideBitmask(bm)}, nil
}

// nameAndSize reads the leading "name" (vec3 ...) positionals.
func nameAndSize(builtin string, pa kwArgs) (string, sdf.Vec3, error) {
	if err := positionals(builtin, pa, 2, "a name and a size"); err != nil {
		return "", sdf.Vec3{}, err
	}
	n, err := toString(pa.positional[0])
	if err != nil {
		return "", sdf.Vec3{}, fmt.Errorf("%s: name: %w", builtin, err)
	}
	size, err := toVec3(pa.positional[1])
	if err != nil {
		return "", sdf.Vec3{}, fmt.Errorf("%s: size: %w", builtin, err)
	}
	return n, size, nil
}

// (visual "name" (vec3 1 1 1) :pose p :material m)
func builtinVisual(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	n, size, err := nameAndSize("visual", pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	pose, err := optFragment(pa, "pose")
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("visual: pose: %w", err)
	}
	material, err := optFragment(pa, "material")
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("visual: material: %w", err)
	}
	return &sexpFragment{el: sdf.Visual(n, pose.Clone(), size, material.Clone())}, nil
}

// (collision "name" (vec3 1 1 1) :pose p :bitmask 3)
func builtinCollision(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	n, size, err := nameAndSize("collision", pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	pose, err := optFragment(pa, "pose")
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("collision: pose: %w", err)
	}
	bm, err := optInt(pa, "bitmask")
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("collision: bitmask: %w", err)
	}
	return &sexpFragment{el: sdf.Collision(n, pose.Clone(), size, bm)}, nil
}

// (box-link "name" (vec3 1 1 1) pose :visual false :collision true :bitmask 3)
func builtinBoxLink(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	n, size, err := nameAndSize("box-link", pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	if err := positionals("box-link", pa, 3, "a name, a size and a pose"); err != nil {
		return zygo.SexpNull, err
	}
	pose, err := toFragment(pa.positional[2])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box-link: pose: %w", err)
	}
	opts, err := linkOptions(pa)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("box-link: %w", err)
	}
	link, err := sdf.BoxLink(n, size, pose.Clone(), opts)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpFragment{el: link}, nil
}

// (joint "j1" "revolute" "base" "arm" :axis :x :lower -1 :upper 1 :effort 10 :pose p)
func builtinJoint(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := positionals("joint", pa, 4, "a name, a type, a parent and a child"); err != nil {
		return zygo.SexpNull, err
	}
	var strs [4]string
	for i, label := range []string{"name", "type", "parent", "child"} {
		s, err := toKeywordString(pa.positional[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("joint: %s: %w", label, err)
		}
		strs[i] = s
	}

	var opts sdf.JointOptions
	if v, ok := pa.kw["axis"]; ok {
		a, err := toKeywordString(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("joint: axis: %w", err)
		}
		opts.Axis = sdf.Axis(a)
	}
	var err error
	if opts.Lower, err = optFloat(pa, "lower"); err != nil {
		return zygo.SexpNull, fmt.Errorf("joint: lower: %w", err)
	}
	if opts.Upper, err = optFloat(pa, "upper"); err != nil {
		return zygo.SexpNull, fmt.Errorf("joint: upper: %w", err)
	}
	if opts.Effort, err = optFloat(pa, "effort"); err != nil {
		return zygo.SexpNull, fmt.Errorf("joint: effort: %w", err)
	}
	pose, err := optFragment(pa, "pose")
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("joint: pose: %w", err)
	}
	opts.Pose = pose.Clone()

	j, err := sdf.Joint(strs[0], sdf.JointType(strs[1]), strs[2], strs[3], opts)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("joint: %w", err)
	}
	return &sexpFragment{el: j}, nil
}

// (solid-link "name" solid pose :visual false :bitmask 3)
func builtinSolidLink(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if err := positionals("solid-link", pa, 3, "a name, a solid and a pose"); err != nil {
		return zygo.SexpNull, err
	}
	n, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("solid-link: name: %w", err)
	}
	s, err := toSolid(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("solid-link: solid: %w", err)
	}
	pose, err := toFragment(pa.positional[2])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("solid-link: pose: %w", err)
	}
	opts, err := linkOptions(pa)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("solid-link: %w", err)
	}
	link, err := sdf.SolidLink(n, s, pose.Clone(), opts)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpFragment{el: link}, nil
}

// (solid-extent solid) returns the bounding box size as a vec3.
func builtinSolidExtent(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("solid-extent requires exactly 1 argument, got %d", len(args))
	}
	s, err := toSolid(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("solid-extent: %w", err)
	}
	return &sexpVec3{vec: sdf.Extent(s)}, nil
}
