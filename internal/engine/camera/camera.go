// Package camera provides the orbit camera for the terrain view.
package camera

import (
	gomath "math"

	"github.com/Faultbox/heightview/pkg/math"
)

// OrbitCamera orbits around a target point.
type OrbitCamera struct {
	Target math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // elevation above the XZ plane, radians
	Yaw      float32 // around +Y, radians; 0 looks from +Z

	// Projection
	FOV       float32 // vertical, degrees
	Near, Far float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera places a camera at position looking at the origin.
func NewOrbitCamera(position math.Vec3, fov float32) *OrbitCamera {
	c := &OrbitCamera{
		FOV:             fov,
		Near:            0.1,
		Far:             1000,
		MinDistance:     1,
		MaxDistance:     200,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
	c.LookFrom(position)
	return c
}

// LookFrom derives the spherical coordinates for position around Target.
func (c *OrbitCamera) LookFrom(position math.Vec3) {
	d := position.Sub(c.Target)
	c.Distance = d.Length()
	if c.Distance == 0 {
		c.Distance = c.MinDistance
		return
	}
	c.Pitch = float32(gomath.Asin(float64(d.Y / c.Distance)))
	c.Yaw = float32(gomath.Atan2(float64(d.X), float64(d.Z)))
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	return math.Vec3{
		X: c.Target.X + c.Distance*float32(cp*gomath.Sin(float64(c.Yaw))),
		Y: c.Target.Y + c.Distance*float32(gomath.Sin(float64(c.Pitch))),
		Z: c.Target.Z + c.Distance*float32(cp*gomath.Cos(float64(c.Yaw))),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	fov := c.FOV * gomath.Pi / 180
	return math.Perspective(fov, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = min(max(c.Pitch, c.MinPitch), c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}
