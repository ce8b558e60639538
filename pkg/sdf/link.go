package sdf

import (
	"fmt"

	"github.com/chazu/sdfgen/pkg/element"
)

// Visual returns a named <visual> block holding box geometry of the given
// size. The pose, when non-nil, comes first; the material, when present,
// comes last. A material with no child elements counts as absent.
func Visual(name string, pose *element.Element, size Vec3, material *element.Element) *element.Element {
	visual := element.New("visual")
	visual.Set("name", name)
	attach(visual, pose)
	visual.SubElement("geometry").Children = []*element.Element{Box(size)}
	if material != nil && len(material.Children) > 0 {
		attach(visual, material)
	}
	return visual
}

// Collision returns a named <collision> block holding box geometry of the
// given size. A non-nil, non-zero bitmask adds a surface filter at the end.
func Collision(name string, pose *element.Element, size Vec3, bitmask *int) *element.Element {
	collision := element.New("collision")
	collision.Set("name", name)
	attach(collision, pose)
	collision.SubElement("geometry").Children = []*element.Element{Box(size)}
	if bitmask != nil && *bitmask != 0 {
		attach(collision, CollideBitmask(*bitmask))
	}
	return collision
}

// BoxLinkOptions controls the optional parts of a box link. The zero value
// builds both visual and collision blocks.
type BoxLinkOptions struct {
	NoVisual    bool
	NoCollision bool

	// Material is accepted but not forwarded to the visual block.
	Material *element.Element

	// Bitmask is forwarded to the collision block.
	Bitmask *int
}

// BoxLink returns a <link> carrying the pose followed by a visual and a
// collision block named <name>_visual and <name>_collision. The blocks carry
// no pose of their own. A nil pose yields element.ErrNilChild.
func BoxLink(name string, size Vec3, pose *element.Element, opts BoxLinkOptions) (*element.Element, error) {
	link := element.New("link")
	link.Set("name", name)
	if err := link.Append(pose); err != nil {
		return nil, fmt.Errorf("box link %q: pose: %w", name, err)
	}

	if !opts.NoVisual {
		attach(link, Visual(name+"_visual", nil, size, nil))
	}
	if !opts.NoCollision {
		attach(link, Collision(name+"_collision", nil, size, opts.Bitmask))
	}
	return link, nil
}

// attach appends child to parent when child is set.
func attach(parent, child *element.Element) {
	if child != nil {
		parent.Children = append(parent.Children, child)
	}
}
