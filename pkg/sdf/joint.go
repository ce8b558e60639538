package sdf

import (
	"fmt"

	"github.com/chazu/sdfgen/pkg/element"
)

// JointOptions holds the optional joint parameters. They are ignored for
// fixed joints.
type JointOptions struct {
	Axis Axis // empty means DefaultAxis

	// Lower and Upper produce a limit section only when both are set.
	Lower *float64
	Upper *float64

	// Effort is written inside the limit section, so it needs both limits.
	Effort *float64

	Pose *element.Element
}

// Joint returns a <joint> connecting parent to child.
//
// Fixed joints carry only <parent> and <child>. Prismatic and revolute
// joints add <axis><xyz> with the unit vector of the chosen axis, an
// optional <limit> under the axis, and the pose last.
func Joint(name string, typ JointType, parent, child string, opts JointOptions) (*element.Element, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedJointType, string(typ))
	}

	joint := element.New("joint")
	joint.Set("name", name)
	joint.Set("type", string(typ))
	joint.SubElement("parent").Text = parent
	joint.SubElement("child").Text = child

	if typ == JointFixed {
		return joint, nil
	}

	ax := opts.Axis
	if ax == "" {
		ax = DefaultAxis
	}
	unit, ok := ax.Unit()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAxis, string(ax))
	}
	axis := joint.SubElement("axis")
	axis.SubElement("xyz").Text = unit

	if opts.Lower != nil && opts.Upper != nil {
		limit := axis.SubElement("limit")
		limit.SubElement("lower").Text = formatNumber(*opts.Lower)
		limit.SubElement("upper").Text = formatNumber(*opts.Upper)
		if opts.Effort != nil {
			limit.SubElement("effort").Text = formatNumber(*opts.Effort)
		}
	}

	attach(joint, opts.Pose)
	return joint, nil
}
