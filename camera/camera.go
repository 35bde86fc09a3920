// Package camera provides an orbit/zoom camera producing mgl32 matrices for
// drape scenes. The world is z-up.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Limits applied by Rotate and Zoom.
const (
	MaxPitch    = math32.Pi/2 - 0.01
	MinDistance = 1
)

// Orbit looks at Target from Distance away. Yaw turns around the z axis
// starting from +x; Pitch lifts the eye above the xy plane.
type Orbit struct {
	Target   mgl32.Vec3
	Yaw      float32
	Pitch    float32
	Distance float32

	// FovY is the vertical field of view in radians.
	FovY float32
	Near float32
	Far  float32
}

// NewOrbit returns a camera with a 45 degree field of view looking down at
// target from distance.
func NewOrbit(target mgl32.Vec3, distance float32) *Orbit {
	return &Orbit{
		Target:   target,
		Yaw:      -math32.Pi / 2,
		Pitch:    math32.Pi / 4,
		Distance: distance,
		FovY:     mgl32.DegToRad(45),
		Near:     0.1,
		Far:      1000,
	}
}

// Eye returns the camera position.
func (c *Orbit) Eye() mgl32.Vec3 {
	sp, cp := math32.Sincos(c.Pitch)
	sy, cy := math32.Sincos(c.Yaw)
	return c.Target.Add(mgl32.Vec3{cp * cy, cp * sy, sp}.Mul(c.Distance))
}

// View returns the world-to-camera matrix.
func (c *Orbit) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 0, 1})
}

// Projection returns the perspective matrix for a viewport aspect ratio.
func (c *Orbit) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// MVP returns Projection * View.
func (c *Orbit) MVP(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}

// Rotate orbits by the given angles. Pitch is clamped short of the poles.
func (c *Orbit) Rotate(dyaw, dpitch float32) {
	c.Yaw = math32.Remainder(c.Yaw+dyaw, 2*math32.Pi)
	c.Pitch = mgl32.Clamp(c.Pitch+dpitch, -MaxPitch, MaxPitch)
}

// Zoom scales the distance by factor; factors below 1 move closer.
func (c *Orbit) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.Distance = math32.Max(c.Distance*factor, MinDistance)
}

// PolygonModel maps prisms built with heights [0, 1] onto [minZ, maxZ].
// It lets one polygon buffer be drawn over terrains of different relief.
func PolygonModel(minZ, maxZ float32) mgl32.Mat4 {
	return mgl32.Translate3D(0, 0, minZ).Mul4(mgl32.Scale3D(1, 1, maxZ-minZ))
}
