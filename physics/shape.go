package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeKind identifies a collision shape.
type ShapeKind uint8

const (
	ShapePlane ShapeKind = iota + 1
	ShapeSphere
	ShapeBox
)

func (k ShapeKind) String() string {
	switch k {
	case ShapePlane:
		return "plane"
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	default:
		return "unknown"
	}
}

// Shape is the collision geometry of a body, centered on the body origin.
type Shape interface {
	Kind() ShapeKind
	// LocalInertia returns the diagonal of the inertia tensor for mass.
	LocalInertia(mass float64) mgl64.Vec3
	// AABB returns the world bounds when placed at pos with orientation q.
	AABB(pos mgl64.Vec3, q mgl64.Quat) AABB
}

// Plane is an infinite plane through the body origin. Its normal is local +Z;
// everything behind it is solid.
type Plane struct{}

func NewPlane() *Plane { return &Plane{} }

func (*Plane) Kind() ShapeKind { return ShapePlane }

func (*Plane) LocalInertia(float64) mgl64.Vec3 { return mgl64.Vec3{} }

// AABB is unbounded except when the normal is axis-aligned, in which case the
// box is clipped to the solid half-space.
func (*Plane) AABB(pos mgl64.Vec3, q mgl64.Quat) AABB {
	box := infiniteAABB()
	n := planeNormal(q)
	const eps = 1e-9
	for axis := 0; axis < 3; axis++ {
		switch {
		case math.Abs(n[axis]-1) < eps:
			box.Max[axis] = pos[axis]
		case math.Abs(n[axis]+1) < eps:
			box.Min[axis] = pos[axis]
		}
	}
	return box
}

func planeNormal(q mgl64.Quat) mgl64.Vec3 {
	return q.Rotate(mgl64.Vec3{0, 0, 1})
}

// Sphere is a ball of the given radius.
type Sphere struct {
	Radius float64
}

func NewSphere(radius float64) *Sphere { return &Sphere{Radius: radius} }

func (*Sphere) Kind() ShapeKind { return ShapeSphere }

func (s *Sphere) LocalInertia(mass float64) mgl64.Vec3 {
	i := 2.0 / 5.0 * mass * s.Radius * s.Radius
	return mgl64.Vec3{i, i, i}
}

func (s *Sphere) AABB(pos mgl64.Vec3, _ mgl64.Quat) AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: pos.Sub(r), Max: pos.Add(r)}
}

// Box is a cuboid given by its half extents.
type Box struct {
	HalfExtents mgl64.Vec3
}

func NewBox(halfExtents mgl64.Vec3) *Box { return &Box{HalfExtents: halfExtents} }

func (*Box) Kind() ShapeKind { return ShapeBox }

func (b *Box) LocalInertia(mass float64) mgl64.Vec3 {
	x, y, z := b.HalfExtents[0], b.HalfExtents[1], b.HalfExtents[2]
	return mgl64.Vec3{
		mass / 3 * (y*y + z*z),
		mass / 3 * (x*x + z*z),
		mass / 3 * (x*x + y*y),
	}
}

func (b *Box) AABB(pos mgl64.Vec3, q mgl64.Quat) AABB {
	axes := quatAxes(q)
	var ext mgl64.Vec3
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			ext[i] += math.Abs(axes[k][i]) * b.HalfExtents[k]
		}
	}
	return AABB{Min: pos.Sub(ext), Max: pos.Add(ext)}
}

// corners returns the eight world-space corners of b.
func (b *Box) corners(pos mgl64.Vec3, axes [3]mgl64.Vec3) [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	for i := range out {
		p := pos
		for k := 0; k < 3; k++ {
			d := axes[k].Mul(b.HalfExtents[k])
			if i&(1<<k) != 0 {
				p = p.Add(d)
			} else {
				p = p.Sub(d)
			}
		}
		out[i] = p
	}
	return out
}

// quatAxes returns the local X, Y and Z axes rotated by q.
func quatAxes(q mgl64.Quat) [3]mgl64.Vec3 {
	m := q.Mat4()
	return [3]mgl64.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
}
