package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const maxPitch = math.Pi/2 - 0.01

// OrbitControls orbits a camera around a target with optional damping.
//
// It does not depend on any input system: callers feed Rotate and Zoom and
// call Update once per frame.
type OrbitControls struct {
	Target mgl32.Vec3
	Yaw    float32
	Pitch  float32
	Radius float32

	MinRadius float32
	MaxRadius float32

	// Damping is the share of the pending motion applied per Update, in
	// (0,1]. Zero applies everything at once.
	Damping float32

	dYaw, dPitch, dRadius float32
}

// NewOrbitControls derives yaw, pitch and radius from the camera's current
// pose so the first Update leaves the camera where it is.
func NewOrbitControls(cam *Camera) *OrbitControls {
	c := &OrbitControls{Target: cam.Target}
	off := cam.Position.Sub(cam.Target)
	c.Radius = off.Len()
	if c.Radius > 0 {
		c.Pitch = float32(math.Asin(float64(off[1] / c.Radius)))
		c.Yaw = float32(math.Atan2(float64(off[0]), float64(off[2])))
	}
	return c
}

func (c *OrbitControls) Rotate(deltaYaw, deltaPitch float32) {
	c.dYaw += deltaYaw
	c.dPitch += deltaPitch
}

func (c *OrbitControls) Zoom(delta float32) {
	c.dRadius += delta
}

// Update applies pending motion to cam and reports whether it moved.
func (c *OrbitControls) Update(cam *Camera) bool {
	if cam == nil {
		return false
	}
	f := c.Damping
	if f <= 0 || f > 1 {
		f = 1
	}

	c.Yaw += c.dYaw * f
	c.Pitch += c.dPitch * f
	c.Radius += c.dRadius * f
	c.dYaw *= 1 - f
	c.dPitch *= 1 - f
	c.dRadius *= 1 - f

	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
	if c.MinRadius > 0 && c.Radius < c.MinRadius {
		c.Radius = c.MinRadius
	}
	if c.MaxRadius > 0 && c.Radius > c.MaxRadius {
		c.Radius = c.MaxRadius
	}

	cp := float32(math.Cos(float64(c.Pitch)))
	off := mgl32.Vec3{
		c.Radius * cp * float32(math.Sin(float64(c.Yaw))),
		c.Radius * float32(math.Sin(float64(c.Pitch))),
		c.Radius * cp * float32(math.Cos(float64(c.Yaw))),
	}
	pos := c.Target.Add(off)
	moved := !pos.ApproxEqualThreshold(cam.Position, 1e-5) || cam.Target != c.Target
	cam.Position = pos
	cam.Target = c.Target
	if cam.Up == (mgl32.Vec3{}) {
		cam.Up = mgl32.Vec3{0, 1, 0}
	}
	return moved
}
