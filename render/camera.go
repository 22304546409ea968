package render

import "github.com/go-gl/mathgl/mgl32"

// Camera is a perspective camera looking from Position at Target.
//
// After changing FOV, Aspect, Near or Far call UpdateProjection.
type Camera struct {
	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	proj mgl32.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float32) *Camera {
	c := &Camera{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Up:     mgl32.Vec3{0, 1, 0},
	}
	c.UpdateProjection()
	return c
}

// SetAspect sets the aspect ratio and recomputes the projection.
func (c *Camera) SetAspect(aspect float32) {
	c.Aspect = aspect
	c.UpdateProjection()
}

func (c *Camera) UpdateProjection() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	fov := c.FOV
	if fov <= 0 {
		fov = 50
	}
	c.proj = mgl32.Perspective(mgl32.DegToRad(fov), aspect, c.Near, c.Far)
}

func (c *Camera) Projection() mgl32.Mat4 {
	if c.proj == (mgl32.Mat4{}) {
		c.UpdateProjection()
	}
	return c.proj
}

// View returns the camera view matrix.
func (c *Camera) View() mgl32.Mat4 {
	up := c.Up
	if up == (mgl32.Vec3{}) {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.Target, up)
}

// ViewProjection returns Projection·View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}
