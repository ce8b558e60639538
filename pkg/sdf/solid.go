package sdf

import (
	"github.com/chazu/sdfgen/pkg/element"
	"github.com/chazu/sdfgen/pkg/kernel"
)

// Extent returns the size of the solid's axis-aligned bounding box.
func Extent(s kernel.Solid) Vec3 {
	min, max := s.BoundingBox()
	return Vec3{X: max[0] - min[0], Y: max[1] - min[1], Z: max[2] - min[2]}
}

// SolidLink returns a box link whose geometry is the bounding box of s.
func SolidLink(name string, s kernel.Solid, pose *element.Element, opts BoxLinkOptions) (*element.Element, error) {
	return BoxLink(name, Extent(s), pose, opts)
}
