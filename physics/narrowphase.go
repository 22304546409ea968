package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// maxBoxContacts caps the contacts kept for one box-box pair.
const maxBoxContacts = 4

// Contact is one contact point between two bodies.
//
// Normal is a unit vector pointing from A into B. PointA and PointB are the
// deepest points of each surface in world space; Depth is the penetration
// along Normal and is positive while the bodies overlap.
type Contact struct {
	A, B   *Body
	Normal mgl64.Vec3
	PointA mgl64.Vec3
	PointB mgl64.Vec3
	Depth  float64
}

func (c Contact) flipped() Contact {
	return Contact{
		A:      c.B,
		B:      c.A,
		Normal: c.Normal.Mul(-1),
		PointA: c.PointB,
		PointB: c.PointA,
		Depth:  c.Depth,
	}
}

// Collide appends the contacts between a and b to dst.
func Collide(a, b *Body, dst []Contact) []Contact {
	if a.Shape == nil || b.Shape == nil {
		return dst
	}
	ka, kb := a.Shape.Kind(), b.Shape.Kind()
	if ka > kb {
		start := len(dst)
		dst = Collide(b, a, dst)
		for i := start; i < len(dst); i++ {
			dst[i] = dst[i].flipped()
		}
		return dst
	}

	switch {
	case ka == ShapePlane && kb == ShapeSphere:
		return planeSphere(a, b, dst)
	case ka == ShapePlane && kb == ShapeBox:
		return planeBox(a, b, dst)
	case ka == ShapeSphere && kb == ShapeSphere:
		return sphereSphere(a, b, dst)
	case ka == ShapeSphere && kb == ShapeBox:
		return sphereBox(a, b, dst)
	case ka == ShapeBox && kb == ShapeBox:
		return boxBox(a, b, dst)
	}
	return dst
}

func planeSphere(p, s *Body, dst []Contact) []Contact {
	r := s.Shape.(*Sphere).Radius
	n := planeNormal(p.Quaternion)
	dist := s.Position.Sub(p.Position).Dot(n)
	depth := r - dist
	if depth <= 0 {
		return dst
	}
	return append(dst, Contact{
		A:      p,
		B:      s,
		Normal: n,
		PointA: s.Position.Sub(n.Mul(dist)),
		PointB: s.Position.Sub(n.Mul(r)),
		Depth:  depth,
	})
}

func planeBox(p, b *Body, dst []Contact) []Contact {
	box := b.Shape.(*Box)
	n := planeNormal(p.Quaternion)
	for _, c := range box.corners(b.Position, quatAxes(b.Quaternion)) {
		dist := c.Sub(p.Position).Dot(n)
		if dist >= 0 {
			continue
		}
		dst = append(dst, Contact{
			A:      p,
			B:      b,
			Normal: n,
			PointA: c.Sub(n.Mul(dist)),
			PointB: c,
			Depth:  -dist,
		})
	}
	return dst
}

func sphereSphere(a, b *Body, dst []Contact) []Contact {
	ra := a.Shape.(*Sphere).Radius
	rb := b.Shape.(*Sphere).Radius
	d := b.Position.Sub(a.Position)
	dist := d.Len()
	if dist >= ra+rb {
		return dst
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-12 {
		n = d.Mul(1 / dist)
	}
	return append(dst, Contact{
		A:      a,
		B:      b,
		Normal: n,
		PointA: a.Position.Add(n.Mul(ra)),
		PointB: b.Position.Sub(n.Mul(rb)),
		Depth:  ra + rb - dist,
	})
}

func sphereBox(s, b *Body, dst []Contact) []Contact {
	r := s.Shape.(*Sphere).Radius
	h := b.Shape.(*Box).HalfExtents

	local := b.PointToLocal(s.Position)
	closest := local
	for k := 0; k < 3; k++ {
		closest[k] = clamp(local[k], -h[k], h[k])
	}

	var out mgl64.Vec3 // local, from box surface towards the sphere center
	var depth float64
	if closest != local {
		diff := local.Sub(closest)
		dist := diff.Len()
		if dist >= r {
			return dst
		}
		out = diff.Mul(1 / dist)
		depth = r - dist
	} else {
		// Center inside the box: push out through the nearest face.
		axis, gap := 0, math.Inf(1)
		for k := 0; k < 3; k++ {
			if g := h[k] - math.Abs(local[k]); g < gap {
				axis, gap = k, g
			}
		}
		sign := 1.0
		if local[axis] < 0 {
			sign = -1
		}
		out[axis] = sign
		closest[axis] = sign * h[axis]
		depth = r + gap
	}

	outW := b.Quaternion.Rotate(out)
	return append(dst, Contact{
		A:      s,
		B:      b,
		Normal: outW.Mul(-1),
		PointA: s.Position.Sub(outW.Mul(r)),
		PointB: b.PointToWorld(closest),
		Depth:  depth,
	})
}

// Face axes win over a slightly better axis of the other box or an edge
// axis, so a resting pair keeps the same reference face between steps.
const (
	faceRelTol = 0.95
	faceAbsTol = 0.001
)

// boxBox runs a separating-axis test over the 15 candidate axes. On a face
// axis the incident face of the other box is clipped against the side planes
// of the reference face; on an edge axis the closest points of the two edges
// give one contact.
func boxBox(a, b *Body, dst []Contact) []Contact {
	ha := a.Shape.(*Box).HalfExtents
	hb := b.Shape.(*Box).HalfExtents
	axesA, axesB := quatAxes(a.Quaternion), quatAxes(b.Quaternion)
	l := b.Position.Sub(a.Position)

	overlap := func(axis mgl64.Vec3) float64 {
		return boxProject(ha, axesA, axis) + boxProject(hb, axesB, axis) - math.Abs(l.Dot(axis))
	}

	faceA, idxA := math.Inf(1), 0
	faceB, idxB := math.Inf(1), 0
	for i := 0; i < 3; i++ {
		oa := overlap(axesA[i])
		if oa <= 0 {
			return dst
		}
		if oa < faceA {
			faceA, idxA = oa, i
		}
		ob := overlap(axesB[i])
		if ob <= 0 {
			return dst
		}
		if ob < faceB {
			faceB, idxB = ob, i
		}
	}

	edge, edgeI, edgeJ := math.Inf(1), -1, -1
	var edgeAxis mgl64.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := axesA[i].Cross(axesB[j])
			n2 := c.LenSqr()
			if n2 < 1e-6 {
				continue
			}
			c = c.Mul(1 / math.Sqrt(n2))
			o := overlap(c)
			if o <= 0 {
				return dst
			}
			if o < edge {
				edge, edgeI, edgeJ, edgeAxis = o, i, j, c
			}
		}
	}

	refIsA := faceB >= faceRelTol*faceA-faceAbsTol
	face := faceA
	if !refIsA {
		face = faceB
	}
	if edgeI >= 0 && edge < faceRelTol*face-faceAbsTol {
		n := edgeAxis
		if l.Dot(n) < 0 {
			n = n.Mul(-1)
		}
		pa, pb := edgeContact(a.Position, axesA, ha, edgeI, b.Position, axesB, hb, edgeJ, n)
		return append(dst, Contact{A: a, B: b, Normal: n, PointA: pa, PointB: pb, Depth: edge})
	}

	start := len(dst)
	if refIsA {
		n := axesA[idxA]
		if l.Dot(n) < 0 {
			n = n.Mul(-1)
		}
		for _, m := range clipFaces(a.Position, axesA, ha, idxA, n, b.Position, axesB, hb) {
			dst = append(dst, Contact{A: a, B: b, Normal: n, PointA: m.onRef, PointB: m.onInc, Depth: m.depth})
		}
	} else {
		// n points from b towards a.
		n := axesB[idxB]
		if l.Dot(n) > 0 {
			n = n.Mul(-1)
		}
		for _, m := range clipFaces(b.Position, axesB, hb, idxB, n, a.Position, axesA, ha) {
			dst = append(dst, Contact{A: a, B: b, Normal: n.Mul(-1), PointA: m.onInc, PointB: m.onRef, Depth: m.depth})
		}
	}
	if len(dst) == start {
		n := axesA[idxA]
		if l.Dot(n) < 0 {
			n = n.Mul(-1)
		}
		p := supportPoint(a.Position, axesA, ha, n)
		return append(dst, Contact{A: a, B: b, Normal: n, PointA: p, PointB: p.Sub(n.Mul(faceA)), Depth: faceA})
	}
	return dst
}

type manifoldPoint struct {
	onRef, onInc mgl64.Vec3
	depth        float64
}

// clipFaces clips the face of the incident box that faces against n onto the
// face k of the reference box and returns the points below the reference
// face, at most maxBoxContacts of them. n is the outward normal of that
// reference face.
func clipFaces(posR mgl64.Vec3, axesR [3]mgl64.Vec3, hR mgl64.Vec3, k int, n mgl64.Vec3,
	posI mgl64.Vec3, axesI [3]mgl64.Vec3, hI mgl64.Vec3) []manifoldPoint {

	m, best := 0, -1.0
	for i := 0; i < 3; i++ {
		if d := math.Abs(axesI[i].Dot(n)); d > best {
			m, best = i, d
		}
	}
	sign := 1.0
	if axesI[m].Dot(n) > 0 {
		sign = -1
	}
	center := posI.Add(axesI[m].Mul(sign * hI[m]))
	u := axesI[(m+1)%3].Mul(hI[(m+1)%3])
	v := axesI[(m+2)%3].Mul(hI[(m+2)%3])

	poly := make([]mgl64.Vec3, 0, 8)
	poly = append(poly,
		center.Add(u).Add(v),
		center.Sub(u).Add(v),
		center.Sub(u).Sub(v),
		center.Add(u).Sub(v),
	)
	tmp := make([]mgl64.Vec3, 0, 8)
	for _, side := range [2]int{(k + 1) % 3, (k + 2) % 3} {
		dir := axesR[side]
		off := posR.Dot(dir)
		tmp = clipPolygon(poly, dir, off+hR[side], tmp)
		poly, tmp = tmp, poly
		tmp = clipPolygon(poly, dir.Mul(-1), -off+hR[side], tmp)
		poly, tmp = tmp, poly
	}

	face := posR.Add(n.Mul(hR[k]))
	pts := make([]manifoldPoint, 0, len(poly))
	for _, p := range poly {
		sep := p.Sub(face).Dot(n)
		if sep > 0 {
			continue
		}
		pts = append(pts, manifoldPoint{onRef: p.Sub(n.Mul(sep)), onInc: p, depth: -sep})
	}
	return reduceManifold(pts, n)
}

// clipPolygon keeps the part of poly where p·dir <= offset.
func clipPolygon(poly []mgl64.Vec3, dir mgl64.Vec3, offset float64, out []mgl64.Vec3) []mgl64.Vec3 {
	out = out[:0]
	if len(poly) == 0 {
		return out
	}
	prev := poly[len(poly)-1]
	dPrev := prev.Dot(dir) - offset
	for _, cur := range poly {
		dCur := cur.Dot(dir) - offset
		switch {
		case dCur <= 0:
			if dPrev > 0 {
				out = append(out, lerp(prev, cur, dPrev/(dPrev-dCur)))
			}
			out = append(out, cur)
		case dPrev <= 0:
			out = append(out, lerp(prev, cur, dPrev/(dPrev-dCur)))
		}
		prev, dPrev = cur, dCur
	}
	return out
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// reduceManifold keeps at most four points spanning the contact patch: the
// deepest, the one farthest from it, and the points bounding the largest
// triangles on each side of that segment.
func reduceManifold(pts []manifoldPoint, n mgl64.Vec3) []manifoldPoint {
	if len(pts) <= maxBoxContacts {
		return pts
	}
	i0 := 0
	for i := range pts {
		if pts[i].depth > pts[i0].depth {
			i0 = i
		}
	}
	i1, far := -1, -1.0
	for i := range pts {
		if d := pts[i].onInc.Sub(pts[i0].onInc).LenSqr(); i != i0 && d > far {
			i1, far = i, d
		}
	}
	seg := pts[i1].onInc.Sub(pts[i0].onInc)
	i2, i3 := -1, -1
	maxArea, minArea := 0.0, 0.0
	for i := range pts {
		area := seg.Cross(pts[i].onInc.Sub(pts[i0].onInc)).Dot(n)
		if area > maxArea {
			i2, maxArea = i, area
		}
		if area < minArea {
			i3, minArea = i, area
		}
	}
	out := []manifoldPoint{pts[i0], pts[i1]}
	if i2 >= 0 {
		out = append(out, pts[i2])
	}
	if i3 >= 0 {
		out = append(out, pts[i3])
	}
	return out
}

// edgeContact returns the closest points between edge i of box A and edge j
// of box B, taking the edges that lie furthest towards each other along n.
func edgeContact(posA mgl64.Vec3, axesA [3]mgl64.Vec3, ha mgl64.Vec3, i int,
	posB mgl64.Vec3, axesB [3]mgl64.Vec3, hb mgl64.Vec3, j int, n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {

	pa := edgeMidpoint(posA, axesA, ha, i, n)
	pb := edgeMidpoint(posB, axesB, hb, j, n.Mul(-1))
	da, db := axesA[i], axesB[j]

	r := pa.Sub(pb)
	bd := da.Dot(db)
	c := da.Dot(r)
	f := db.Dot(r)
	var s float64
	if den := 1 - bd*bd; den > 1e-9 {
		s = clamp((bd*f-c)/den, -ha[i], ha[i])
	}
	t := clamp(bd*s+f, -hb[j], hb[j])
	s = clamp(bd*t-c, -ha[i], ha[i])
	return pa.Add(da.Mul(s)), pb.Add(db.Mul(t))
}

// edgeMidpoint is the midpoint of the edge parallel to axis i that lies
// furthest along dir.
func edgeMidpoint(pos mgl64.Vec3, axes [3]mgl64.Vec3, h mgl64.Vec3, i int, dir mgl64.Vec3) mgl64.Vec3 {
	p := pos
	for k := 0; k < 3; k++ {
		if k == i {
			continue
		}
		s := h[k]
		if axes[k].Dot(dir) < 0 {
			s = -s
		}
		p = p.Add(axes[k].Mul(s))
	}
	return p
}

func boxProject(h mgl64.Vec3, axes [3]mgl64.Vec3, axis mgl64.Vec3) float64 {
	return math.Abs(axes[0].Dot(axis))*h[0] +
		math.Abs(axes[1].Dot(axis))*h[1] +
		math.Abs(axes[2].Dot(axis))*h[2]
}

func supportPoint(pos mgl64.Vec3, axes [3]mgl64.Vec3, h mgl64.Vec3, dir mgl64.Vec3) mgl64.Vec3 {
	p := pos
	for k := 0; k < 3; k++ {
		s := h[k]
		if axes[k].Dot(dir) < 0 {
			s = -s
		}
		p = p.Add(axes[k].Mul(s))
	}
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
