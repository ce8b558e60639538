package sdf

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidArgument is the parent of every argument error returned here.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	ErrUnsupportedJointType = fmt.Errorf("%w: joint type not supported", ErrInvalidArgument)
	ErrUnsupportedAxis      = fmt.Errorf("%w: axis not supported, only \"x\", \"y\" and \"z\" available", ErrInvalidArgument)
)

// Vec3 is an ordered x, y, z triple.
type Vec3 struct {
	X, Y, Z float64
}

// String renders the triple as "x y z".
func (v Vec3) String() string {
	return formatNumber(v.X) + " " + formatNumber(v.Y) + " " + formatNumber(v.Z)
}

// formatNumber renders the shortest decimal that round-trips to v.
// Magnitudes of 1e16 and above, or below 1e-4, switch to exponent form
// ("1e+21", "1e-07"); everything else is plain ("-1", "0.25", "1000000").
func formatNumber(v float64) string {
	if a := math.Abs(v); a >= 1e16 || (a != 0 && a < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Ptr returns a pointer to v, for optional parameters.
func Ptr[T any](v T) *T {
	return &v
}

// JointType enumerates the supported joint kinds.
type JointType string

const (
	JointFixed     JointType = "fixed"
	JointPrismatic JointType = "prismatic"
	JointRevolute  JointType = "revolute"
)

// Valid reports whether t is one of the supported joint types.
func (t JointType) Valid() bool {
	switch t {
	case JointFixed, JointPrismatic, JointRevolute:
		return true
	}
	return false
}

// ParseJointType converts a string to a JointType.
func ParseJointType(s string) (JointType, error) {
	t := JointType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedJointType, s)
	}
	return t, nil
}

// Axis names one of the three coordinate directions a joint can move along.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// DefaultAxis is used when a joint is built without an explicit axis.
const DefaultAxis = AxisZ

// Unit returns the unit vector for the axis as SDF text.
func (a Axis) Unit() (string, bool) {
	switch a {
	case AxisX:
		return "1 0 0", true
	case AxisY:
		return "0 1 0", true
	case AxisZ:
		return "0 0 1", true
	}
	return "", false
}

// Valid reports whether a is x, y or z.
func (a Axis) Valid() bool {
	_, ok := a.Unit()
	return ok
}

// ParseAxis converts a string to an Axis.
func ParseAxis(s string) (Axis, error) {
	a := Axis(s)
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAxis, s)
	}
	return a, nil
}
