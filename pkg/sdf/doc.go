// Package sdf builds fragments of the SDF robot/world description format:
// box geometry, collision filtering, visual and collision blocks, box-shaped
// links and joints.
//
// Every builder is a pure function. Each call returns a fresh fragment that
// the caller owns; nothing is cached or shared, so builders may be called
// from any number of goroutines. Pose and material fragments are opaque:
// they are attached as given and never inspected.
//
// Example:
//
//	pose := element.New("pose")
//	pose.Text = "0 0 0.5 0 0 0"
//	link, err := sdf.BoxLink("base", sdf.Vec3{X: 1, Y: 1, Z: 0.2}, pose, sdf.BoxLinkOptions{})
//	if err != nil {
//	    return err
//	}
//	joint, err := sdf.Joint("j1", sdf.JointRevolute, "base", "arm", sdf.JointOptions{
//	    Axis:  sdf.AxisX,
//	    Lower: sdf.Ptr(-1.0),
//	    Upper: sdf.Ptr(1.0),
//	})
package sdf
