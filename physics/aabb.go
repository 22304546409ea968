package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// infiniteAABB covers all of space. Huge finite values keep center and
// variance math free of NaNs.
func infiniteAABB() AABB {
	const big = math.MaxFloat64 / 4
	return AABB{
		Min: mgl64.Vec3{-big, -big, -big},
		Max: mgl64.Vec3{big, big, big},
	}
}

// Overlaps reports whether a and b intersect. Touching boxes overlap.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min[0] <= b.Max[0] && a.Max[0] >= b.Min[0] &&
		a.Min[1] <= b.Max[1] && a.Max[1] >= b.Min[1] &&
		a.Min[2] <= b.Max[2] && a.Max[2] >= b.Min[2]
}

func (a AABB) Contains(p mgl64.Vec3) bool {
	return p[0] >= a.Min[0] && p[0] <= a.Max[0] &&
		p[1] >= a.Min[1] && p[1] <= a.Max[1] &&
		p[2] >= a.Min[2] && p[2] <= a.Max[2]
}
