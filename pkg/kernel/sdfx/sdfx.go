// Package sdfx implements kernel.Kernel on the github.com/deadsy/sdfx SDF
// library. Solids built here are only ever measured: sdf.Extent reads their
// bounding boxes to size box links, so every operation keeps a bounding box
// that encloses the solid.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/sdfgen/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var _ kernel.Kernel = (*SdfxKernel)(nil)

// solid pairs an SDF with the bounds reported for it. sdfx derives bounds
// itself for everything except intersections, where it keeps the first
// operand's box; those get the overlap of both boxes instead.
type solid struct {
	s  sdf.SDF3
	bb sdf.Box3
}

// BoundingBox returns the axis-aligned bounds of the solid.
func (s *solid) BoundingBox() (min, max [3]float64) {
	return [3]float64{s.bb.Min.X, s.bb.Min.Y, s.bb.Min.Z},
		[3]float64{s.bb.Max.X, s.bb.Max.Y, s.bb.Max.Z}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*solid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &solid{s: s, bb: s.BoundingBox()}
}

// Box creates an x by y by z box spanning [0,x]×[0,y]×[0,z], so the extent
// of an untransformed box is exactly its dimensions and its position is
// the corner a link pose refers to.
func (k *SdfxKernel) Box(x, y, z float64) kernel.Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Box3D: %v", err))
	}
	return wrap(sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})))
}

// Cylinder creates a cylinder along Z centered on the origin. Its extent is
// 2r × 2r × height.
func (k *SdfxKernel) Cylinder(height, radius float64) kernel.Solid {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Cylinder3D: %v", err))
	}
	return wrap(s)
}

// Union returns a ∪ b. Its extent covers both operands.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns a - b. Its extent is that of a.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns a ∩ b, bounded by the overlap of both boxes. When
// the boxes do not overlap the extent is zero, anchored at a's minimum.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	ba, bb := a.(*solid).bb, b.(*solid).bb
	lo := ba.Min.Max(bb.Min)
	hi := ba.Max.Min(bb.Max)
	if hi.X < lo.X || hi.Y < lo.Y || hi.Z < lo.Z {
		lo, hi = ba.Min, ba.Min
	}
	return &solid{
		s:  sdf.Intersect3D(unwrap(a), unwrap(b)),
		bb: sdf.Box3{Min: lo, Max: hi},
	}
}

// Translate moves a solid by (x, y, z); the extent is unchanged.
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})))
}

// Rotate rotates a solid by Euler angles in degrees, applied X then Y then
// Z. The extent grows to the bounds of the rotated box.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	rad := func(deg float64) float64 { return deg * math.Pi / 180.0 }
	m := sdf.RotateZ(rad(z)).Mul(sdf.RotateY(rad(y))).Mul(sdf.RotateX(rad(x)))
	return wrap(sdf.Transform3D(unwrap(s), m))
}
