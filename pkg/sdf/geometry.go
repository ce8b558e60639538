package sdf

import (
	"strconv"

	"github.com/chazu/sdfgen/pkg/element"
)

// Box returns a <box> fragment whose <size> holds the dimensions in x y z
// order. Dimensions are not validated.
func Box(size Vec3) *element.Element {
	box := element.New("box")
	box.SubElement("size").Text = size.String()
	return box
}

// CollideBitmask returns a <surface><contact><collide_bitmask> fragment.
func CollideBitmask(bitmask int) *element.Element {
	surface := element.New("surface")
	contact := surface.SubElement("contact")
	contact.SubElement("collide_bitmask").Text = strconv.Itoa(bitmask)
	return surface
}
