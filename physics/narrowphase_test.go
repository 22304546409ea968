package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func near(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() <= eps
}

func TestCollideSpherePlaneBothOrders(t *testing.T) {
	plane := NewBody(BodyOptions{Shape: NewPlane(), Quaternion: mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})})
	ball := NewBody(BodyOptions{Mass: 1, Shape: NewSphere(0.5), Position: mgl64.Vec3{0, 0.4, 0}})

	cs := Collide(plane, ball, nil)
	if len(cs) != 1 {
		t.Fatalf("got %d contacts", len(cs))
	}
	c := cs[0]
	if c.A != plane || !near(c.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) || math.Abs(c.Depth-0.1) > 1e-9 {
		t.Fatalf("contact = %+v", c)
	}

	cs = Collide(ball, plane, nil)
	if len(cs) != 1 || cs[0].A != ball || !near(cs[0].Normal, mgl64.Vec3{0, -1, 0}, 1e-9) {
		t.Fatalf("flipped contact = %+v", cs)
	}
	if !near(cs[0].PointA, mgl64.Vec3{0, -0.1, 0}, 1e-9) {
		t.Fatalf("sphere point = %v", cs[0].PointA)
	}

	ball.Position = mgl64.Vec3{0, 0.6, 0}
	if cs := Collide(plane, ball, nil); len(cs) != 0 {
		t.Fatalf("separated bodies produced %d contacts", len(cs))
	}
}

func TestCollideSphereSphere(t *testing.T) {
	a := NewBody(BodyOptions{Mass: 1, Shape: NewSphere(0.5)})
	b := NewBody(BodyOptions{Mass: 1, Shape: NewSphere(0.5), Position: mgl64.Vec3{0.8, 0, 0}})
	cs := Collide(a, b, nil)
	if len(cs) != 1 || !near(cs[0].Normal, mgl64.Vec3{1, 0, 0}, 1e-9) || math.Abs(cs[0].Depth-0.2) > 1e-9 {
		t.Fatalf("contacts = %+v", cs)
	}
}

func TestCollideSphereBox(t *testing.T) {
	box := NewBody(BodyOptions{Mass: 1, Shape: NewBox(mgl64.Vec3{0.5, 0.5, 0.5})})
	ball := NewBody(BodyOptions{Mass: 1, Shape: NewSphere(0.5), Position: mgl64.Vec3{0, 0.9, 0}})

	cs := Collide(ball, box, nil)
	if len(cs) != 1 {
		t.Fatalf("got %d contacts", len(cs))
	}
	c := cs[0]
	if !near(c.Normal, mgl64.Vec3{0, -1, 0}, 1e-9) || math.Abs(c.Depth-0.1) > 1e-9 {
		t.Fatalf("contact = %+v", c)
	}
	if !near(c.PointB, mgl64.Vec3{0, 0.5, 0}, 1e-9) {
		t.Fatalf("box point = %v", c.PointB)
	}

	// Center inside the box exits through the nearest face.
	ball.Position = mgl64.Vec3{0.4, 0, 0}
	cs = Collide(box, ball, nil)
	if len(cs) != 1 || !near(cs[0].Normal, mgl64.Vec3{1, 0, 0}, 1e-9) || math.Abs(cs[0].Depth-0.6) > 1e-9 {
		t.Fatalf("inside contact = %+v", cs)
	}
}

func TestCollideBoxPlaneCorners(t *testing.T) {
	plane := NewBody(BodyOptions{Shape: NewPlane(), Quaternion: mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})})
	box := NewBody(BodyOptions{Mass: 1, Shape: NewBox(mgl64.Vec3{0.5, 0.5, 0.5}), Position: mgl64.Vec3{0, 0.45, 0}})

	cs := Collide(box, plane, nil)
	if len(cs) != 4 {
		t.Fatalf("got %d contacts, want the 4 bottom corners", len(cs))
	}
	for _, c := range cs {
		if c.A != box || math.Abs(c.Depth-0.05) > 1e-9 || math.Abs(c.PointA[1]+0.05) > 1e-9 {
			t.Fatalf("contact = %+v", c)
		}
	}
}

func TestCollideBoxBoxStacked(t *testing.T) {
	h := mgl64.Vec3{0.5, 0.5, 0.5}
	lower := NewBody(BodyOptions{Mass: 1, Shape: NewBox(h)})
	upper := NewBody(BodyOptions{Mass: 1, Shape: NewBox(h), Position: mgl64.Vec3{0, 0.9, 0}})

	cs := Collide(lower, upper, nil)
	if len(cs) != maxBoxContacts {
		t.Fatalf("got %d contacts, want %d", len(cs), maxBoxContacts)
	}
	for _, c := range cs {
		if !near(c.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) || math.Abs(c.Depth-0.1) > 1e-9 {
			t.Fatalf("contact = %+v", c)
		}
	}

	upper.Position = mgl64.Vec3{0, 1.1, 0}
	if cs := Collide(lower, upper, nil); len(cs) != 0 {
		t.Fatalf("separated boxes produced %d contacts", len(cs))
	}
}

func TestCollideBoxBoxOffsetClipsToOverlap(t *testing.T) {
	h := mgl64.Vec3{0.5, 0.5, 0.5}
	lower := NewBody(BodyOptions{Mass: 1, Shape: NewBox(h)})
	upper := NewBody(BodyOptions{Mass: 1, Shape: NewBox(h), Position: mgl64.Vec3{0.3, 0.99, 0}})

	cs := Collide(lower, upper, nil)
	if len(cs) != 4 {
		t.Fatalf("got %d contacts, want 4", len(cs))
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, c := range cs {
		if !near(c.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) || math.Abs(c.Depth-0.01) > 1e-9 {
			t.Fatalf("contact = %+v", c)
		}
		if math.Abs(c.PointA[1]-0.5) > 1e-9 {
			t.Fatalf("PointA %v not on the lower top face", c.PointA)
		}
		minX = math.Min(minX, c.PointB[0])
		maxX = math.Max(maxX, c.PointB[0])
	}
	if math.Abs(minX+0.2) > 1e-9 || math.Abs(maxX-0.5) > 1e-9 {
		t.Fatalf("contact x span [%v, %v], want [-0.2, 0.5]", minX, maxX)
	}
}

func TestCollideBoxBoxTiltedKeepsBothSides(t *testing.T) {
	h := mgl64.Vec3{0.5, 0.5, 0.5}
	lower := NewBody(BodyOptions{Mass: 1, Shape: NewBox(h)})
	upper := NewBody(BodyOptions{
		Mass:       1,
		Shape:      NewBox(h),
		Position:   mgl64.Vec3{0, 0.995, 0},
		Quaternion: mgl64.QuatRotate(0.005, mgl64.Vec3{0, 0, 1}),
	})

	cs := Collide(lower, upper, nil)
	if len(cs) < 2 {
		t.Fatalf("got %d contacts", len(cs))
	}
	left, right := false, false
	for _, c := range cs {
		if c.Normal[1] < 0.99 {
			t.Fatalf("normal %v, want the lower top face", c.Normal)
		}
		left = left || c.PointB[0] < -0.4
		right = right || c.PointB[0] > 0.4
	}
	if !left || !right {
		t.Fatalf("contacts only on one side: %+v", cs)
	}
}

func TestCollideBoxBoxSmallOnLarge(t *testing.T) {
	h := mgl64.Vec3{0.5, 0.5, 0.5}
	small := NewBody(BodyOptions{Mass: 1, Shape: NewBox(mgl64.Vec3{0.25, 0.25, 0.25}), Position: mgl64.Vec3{0, 0.7, 0}})
	big := NewBody(BodyOptions{Mass: 1, Shape: NewBox(h)})

	cs := Collide(small, big, nil)
	if len(cs) != 4 {
		t.Fatalf("got %d contacts, want 4", len(cs))
	}
	for _, c := range cs {
		if c.A != small || !near(c.Normal, mgl64.Vec3{0, -1, 0}, 1e-9) || math.Abs(c.Depth-0.05) > 1e-9 {
			t.Fatalf("contact = %+v", c)
		}
		if math.Abs(c.PointB[1]-0.5) > 1e-9 || math.Abs(c.PointA[1]-0.45) > 1e-9 {
			t.Fatalf("points = %v %v", c.PointA, c.PointB)
		}
	}
}

func TestCollideBoxBoxCrossedEdges(t *testing.T) {
	h := mgl64.Vec3{0.5, 0.5, 0.5}
	lower := NewBody(BodyOptions{Mass: 1, Shape: NewBox(h), Quaternion: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0})})
	upper := NewBody(BodyOptions{
		Mass:       1,
		Shape:      NewBox(h),
		Position:   mgl64.Vec3{0, 1.4, 0},
		Quaternion: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}),
	})

	cs := Collide(lower, upper, nil)
	if len(cs) != 1 {
		t.Fatalf("got %d contacts, want one edge contact", len(cs))
	}
	c := cs[0]
	wantDepth := math.Sqrt2 - 1.4
	if !near(c.Normal, mgl64.Vec3{0, 1, 0}, 1e-9) || math.Abs(c.Depth-wantDepth) > 1e-9 {
		t.Fatalf("contact = %+v", c)
	}
	if !near(c.PointA, mgl64.Vec3{0, math.Sqrt2 / 2, 0}, 1e-9) || !near(c.PointB, mgl64.Vec3{0, 1.4 - math.Sqrt2/2, 0}, 1e-9) {
		t.Fatalf("points = %v %v", c.PointA, c.PointB)
	}
}

func TestReduceManifoldKeepsCorners(t *testing.T) {
	var pts []manifoldPoint
	for _, p := range []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}, {0.5, 0, 0}, {0.5, 0, 1}, {0.2, 0, 0.5}} {
		pts = append(pts, manifoldPoint{onInc: p, onRef: p, depth: 0.01})
	}
	pts[0].depth = 0.02

	out := reduceManifold(pts, mgl64.Vec3{0, 1, 0})
	if len(out) != 4 {
		t.Fatalf("kept %d points", len(out))
	}
	seen := map[mgl64.Vec3]bool{}
	for _, m := range out {
		seen[m.onInc] = true
	}
	for _, want := range []mgl64.Vec3{{0, 0, 0}, {1, 0, 1}, {1, 0, 0}, {0, 0, 1}} {
		if !seen[want] {
			t.Fatalf("corner %v dropped: %+v", want, out)
		}
	}
}
