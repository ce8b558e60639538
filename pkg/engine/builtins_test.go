package engine

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/chazu/sdfgen/pkg/element"
)

// evalOK evaluates source and fails the test on any error.
func evalOK(t *testing.T, source string) []*element.Element {
	t.Helper()
	frags, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	return frags
}

// evalFails evaluates source and returns the joined eval error messages.
func evalFails(t *testing.T, source string) string {
	t.Helper()
	frags, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if frags != nil {
		t.Fatal("expected nil fragments on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	msgs := make([]string, len(evalErrs))
	for i, e := range evalErrs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "\n")
}

func TestBuiltinBox(t *testing.T) {
	frags := evalOK(t, `(emit (box (vec3 1 2.5 3)))`)
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	if got := frags[0].String(); got != "<box><size>1 2.5 3</size></box>" {
		t.Errorf("got %s", got)
	}
}

func TestBuiltinCollideBitmask(t *testing.T) {
	frags := evalOK(t, `(emit (collide-bitmask 7))`)
	want := "<surface><contact><collide_bitmask>7</collide_bitmask></contact></surface>"
	if got := frags[0].String(); got != want {
		t.Errorf("got %s", got)
	}
}

func TestBuiltinElementAttributes(t *testing.T) {
	frags := evalOK(t, `(emit (element "pose" :text "0 0 1 0 0 0" :relative_to "world"))`)
	want := `<pose relative_to="world">0 0 1 0 0 0</pose>`
	if got := frags[0].String(); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestBuiltinVisualAndCollision(t *testing.T) {
	source := `
(def p (element "pose" :text "0 0 0 0 0 0"))
(def m (element "material" (element "ambient" :text "1 0 0 1")))
(emit (visual "v" (vec3 1 1 1) :pose p :material m))
(emit (collision "c" (vec3 1 1 1) :bitmask 2))
`
	frags := evalOK(t, source)
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}

	v := frags[0]
	if v.Tag != "visual" || len(v.Children) != 3 {
		t.Fatalf("unexpected visual: %s", v)
	}
	if v.Children[0].Tag != "pose" || v.Children[2].Tag != "material" {
		t.Errorf("unexpected visual order: %s", v)
	}

	c := frags[1]
	if c.Find("surface") == nil {
		t.Errorf("expected bitmask surface in %s", c)
	}
	if c.Find("pose") != nil {
		t.Errorf("unexpected pose in %s", c)
	}
}

func TestBuiltinBoxLinkFlags(t *testing.T) {
	source := `
(def p (element "pose" :text "0 0 0 0 0 0"))
(emit (box-link "base" (vec3 1 1 1) p :visual false :collision false))
(emit (box-link "arm" (vec3 0.1 0.1 1) p :bitmask 1))
`
	frags := evalOK(t, source)
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}

	base := frags[0]
	if len(base.Children) != 1 || base.Children[0].Tag != "pose" {
		t.Errorf("expected pose-only link, got %s", base)
	}

	arm := frags[1]
	if name, _ := arm.Get("name"); name != "arm" {
		t.Errorf("name = %q", name)
	}
	visual := arm.Find("visual")
	collision := arm.Find("collision")
	if visual == nil || collision == nil {
		t.Fatalf("expected visual and collision in %s", arm)
	}
	if name, _ := visual.Get("name"); name != "arm_visual" {
		t.Errorf("visual name = %q", name)
	}
	if collision.Find("surface") == nil {
		t.Errorf("bitmask not forwarded: %s", collision)
	}
}

func TestBuiltinPoseNotShared(t *testing.T) {
	source := `
(def p (element "pose" :text "0 0 0 0 0 0"))
(emit (box-link "a" (vec3 1 1 1) p) (box-link "b" (vec3 1 1 1) p))
`
	frags := evalOK(t, source)
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(frags))
	}
	if frags[0].Find("pose") == frags[1].Find("pose") {
		t.Error("pose fragment shared between links")
	}
}

func TestBuiltinJointExample(t *testing.T) {
	frags := evalOK(t, `(emit (joint "j1" "revolute" "base" "arm" :axis :x :lower -1 :upper 1 :effort 10))`)
	want := `<joint name="j1" type="revolute">` +
		`<parent>base</parent><child>arm</child>` +
		`<axis><xyz>1 0 0</xyz><limit><lower>-1</lower><upper>1</upper><effort>10</effort></limit></axis>` +
		`</joint>`
	if got := frags[0].String(); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestBuiltinFixedJoint(t *testing.T) {
	frags := evalOK(t, `(emit (joint "j" "fixed" "a" "b" :axis :w :lower 0 :upper 1))`)
	if got := frags[0].String(); got != `<joint name="j" type="fixed"><parent>a</parent><child>b</child></joint>` {
		t.Errorf("got %s", got)
	}
}

func TestBuiltinJointErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"bad type", `(joint "j" "ball" "a" "b")`, "joint type not supported"},
		{"bad axis", `(joint "j" "revolute" "a" "b" :axis :w)`, "axis not supported"},
		{"missing child", `(joint "j" "revolute" "a")`, "joint requires"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := evalFails(t, tt.source)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("message %q does not contain %q", msg, tt.want)
			}
		})
	}
}

func TestBuiltinTypeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"vec3 arity", `(vec3 1 2)`},
		{"box needs vec3", `(box 1)`},
		{"emit needs fragment", `(emit 1)`},
		{"box-link needs pose", `(box-link "l" (vec3 1 1 1))`},
		{"visual flag needs bool", `(box-link "l" (vec3 1 1 1) (element "pose") :visual 1)`},
		{"bitmask needs integer", `(collision "c" (vec3 1 1 1) :bitmask 1.5)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.source)
		})
	}
}

func TestBuiltinSolidLink(t *testing.T) {
	source := `
(def plate (solid-union (solid-box 2 1 0.5)
                        (solid-translate (solid-box 1 1 0.5) (vec3 2 0 0))))
(emit (solid-link "plate" plate (element "pose" :text "0 0 0 0 0 0") :visual false))
`
	frags := evalOK(t, source)
	link := frags[0]
	if link.Find("visual") != nil {
		t.Errorf("unexpected visual in %s", link)
	}
	size := link.Find("collision").Find("geometry").Find("box").Find("size").Text
	if size != "3 1 0.5" {
		t.Errorf("size = %q, want \"3 1 0.5\"", size)
	}
}

func TestBuiltinSolidExtent(t *testing.T) {
	frags := evalOK(t, `(emit (box (solid-extent (solid-box 4 2 1))))`)
	if got := frags[0].Find("size").Text; got != "4 2 1" {
		t.Errorf("size = %q", got)
	}
}

func TestBuiltinSolidRejectsNonPositive(t *testing.T) {
	msg := evalFails(t, `(solid-box 1 0 1)`)
	if !strings.Contains(msg, "must be positive") {
		t.Errorf("message %q", msg)
	}
}

func TestVariableReference(t *testing.T) {
	source := `
(def h 0.25)
(emit (box (vec3 1 1 h)))
`
	frags := evalOK(t, source)
	if got := frags[0].Find("size").Text; got != "1 1 0.25" {
		t.Errorf("size = %q", got)
	}
}

// TestDocumentedForms evaluates one script per builtin form in the script
// reference.
func TestDocumentedForms(t *testing.T) {
	prelude := `
(def p (element "pose" :text "0 0 0 0 0 0"))
(def m (element "material" (element "ambient" :text "1 0 0 1")))
(def a (solid-box 2 2 2))
(def b (solid-translate (solid-box 2 2 2) (vec3 1 0 0)))
`
	tests := []struct {
		name   string
		source string
		root   string
	}{
		{"vec3", `(emit (box (vec3 1 2 3)))`, "box"},
		{"element", `(emit (element "pose" :relative_to "world" :text "0 0 1 0 0 0" (element "x")))`, "pose"},
		{"box", `(emit (box (vec3 1 1 1)))`, "box"},
		{"collide-bitmask", `(emit (collide-bitmask 3))`, "surface"},
		{"visual", `(emit (visual "v" (vec3 1 1 1) :pose p :material m))`, "visual"},
		{"collision", `(emit (collision "c" (vec3 1 1 1) :pose p :bitmask 3))`, "collision"},
		{"box-link", `(emit (box-link "l" (vec3 1 1 1) p :visual false :collision false :material m :bitmask 3))`, "link"},
		{"joint", `(emit (joint "j" "revolute" "a" "b" :axis :x :lower -1 :upper 1 :effort 10 :pose p))`, "joint"},
		{"joint string axis", `(emit (joint "j" "prismatic" "a" "b" :axis "y"))`, "joint"},
		{"solid-box", `(emit (box (solid-extent (solid-box 1 2 3))))`, "box"},
		{"solid-cylinder", `(emit (box (solid-extent (solid-cylinder 4 1))))`, "box"},
		{"solid-union", `(emit (box (solid-extent (solid-union a b))))`, "box"},
		{"solid-difference", `(emit (box (solid-extent (solid-difference a b))))`, "box"},
		{"solid-intersection", `(emit (box (solid-extent (solid-intersection a b))))`, "box"},
		{"solid-translate", `(emit (box (solid-extent (solid-translate a (vec3 1 2 3)))))`, "box"},
		{"solid-rotate", `(emit (box (solid-extent (solid-rotate a (vec3 0 0 45)))))`, "box"},
		{"solid-link", `(emit (solid-link "s" a p :collision false))`, "link"},
		{"emit several", `(emit (box (vec3 1 1 1)) (collide-bitmask 1))`, "box"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := evalOK(t, prelude+tt.source)
			if len(frags) == 0 {
				t.Fatal("no fragments emitted")
			}
			if frags[0].Tag != tt.root {
				t.Errorf("root tag = %q, want %q", frags[0].Tag, tt.root)
			}
		})
	}
}

// sizeOf parses the text of the first <size> in f.
func sizeOf(t *testing.T, f *element.Element) [3]float64 {
	t.Helper()
	fields := strings.Fields(f.Find("size").Text)
	if len(fields) != 3 {
		t.Fatalf("size %q does not have 3 components", f.Find("size").Text)
	}
	var out [3]float64
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("size component %q: %v", s, err)
		}
		out[i] = v
	}
	return out
}

func TestBuiltinSolidExtents(t *testing.T) {
	tests := []struct {
		name  string
		solid string
		want  [3]float64
	}{
		{"cylinder", `(solid-cylinder 50 10)`, [3]float64{20, 20, 50}},
		{"rotate quarter turn", `(solid-rotate (solid-box 100 20 10) (vec3 0 0 90))`, [3]float64{20, 100, 10}},
		{"difference keeps first", `(solid-difference (solid-box 100 100 100) (solid-cylinder 200 10))`, [3]float64{100, 100, 100}},
		{"intersection overlap", `(solid-intersection (solid-box 100 100 100) (solid-translate (solid-box 100 100 100) (vec3 50 0 0)))`, [3]float64{50, 100, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags := evalOK(t, "(emit (box (solid-extent "+tt.solid+")))")
			got := sizeOf(t, frags[0])
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-9 {
					t.Errorf("size = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}
