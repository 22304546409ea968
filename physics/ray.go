package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RaycastResult describes where a ray hit a body.
type RaycastResult struct {
	Body     *Body
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}

// RaycastClosest casts the segment from→to and reports the hit nearest to
// from. If filter is non-nil, bodies for which it returns false are skipped.
func (w *World) RaycastClosest(from, to mgl64.Vec3, filter func(*Body) bool) (RaycastResult, bool) {
	seg := to.Sub(from)
	length := seg.Len()
	if length == 0 {
		return RaycastResult{}, false
	}
	dir := seg.Mul(1 / length)

	var best RaycastResult
	found := false
	for _, b := range w.bodies {
		if b.Shape == nil || (filter != nil && !filter(b)) {
			continue
		}
		t, n, ok := intersectRay(b, from, dir)
		if !ok || t > length || (found && t >= best.Distance) {
			continue
		}
		best = RaycastResult{Body: b, Point: from.Add(dir.Mul(t)), Normal: n, Distance: t}
		found = true
	}
	return best, found
}

// intersectRay returns the distance along the unit ray to the first surface
// of b facing the ray origin, and the world normal there.
func intersectRay(b *Body, origin, dir mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	switch s := b.Shape.(type) {
	case *Sphere:
		return raySphere(b.Position, s.Radius, origin, dir)
	case *Plane:
		return rayPlane(b.Position, planeNormal(b.Quaternion), origin, dir)
	case *Box:
		return rayBox(b, s.HalfExtents, origin, dir)
	}
	return 0, mgl64.Vec3{}, false
}

func raySphere(center mgl64.Vec3, r float64, origin, dir mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	oc := origin.Sub(center)
	bq := oc.Dot(dir)
	c := oc.Dot(oc) - r*r
	disc := bq*bq - c
	if disc < 0 {
		return 0, mgl64.Vec3{}, false
	}
	t := -bq - math.Sqrt(disc)
	if t < 0 {
		return 0, mgl64.Vec3{}, false
	}
	p := origin.Add(dir.Mul(t))
	return t, p.Sub(center).Normalize(), true
}

// rayPlane only reports hits on the front side of the plane.
func rayPlane(pos, n, origin, dir mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	den := dir.Dot(n)
	if den >= 0 {
		return 0, mgl64.Vec3{}, false
	}
	t := pos.Sub(origin).Dot(n) / den
	if t < 0 {
		return 0, mgl64.Vec3{}, false
	}
	return t, n, true
}

// rayBox is a slab test in box coordinates.
func rayBox(b *Body, h, origin, dir mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	inv := b.Quaternion.Inverse()
	o := inv.Rotate(origin.Sub(b.Position))
	d := inv.Rotate(dir)

	tmin, tmax := math.Inf(-1), math.Inf(1)
	axis, sign := -1, 0.0
	for k := 0; k < 3; k++ {
		if math.Abs(d[k]) < 1e-12 {
			if o[k] < -h[k] || o[k] > h[k] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}
		t1 := (-h[k] - o[k]) / d[k]
		t2 := (h[k] - o[k]) / d[k]
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin, axis, sign = t1, k, s
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, mgl64.Vec3{}, false
		}
	}
	if axis < 0 || tmin < 0 {
		return 0, mgl64.Vec3{}, false
	}
	var n mgl64.Vec3
	n[axis] = sign
	return tmin, b.Quaternion.Rotate(n), true
}
