package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Solver tuning.
const (
	// Baumgarte factor: share of the penetration removed per step.
	baumgarte = 0.2
	// Penetration allowed before position correction kicks in.
	penetrationSlop = 0.01
	// Approach speeds below this do not bounce.
	restitutionThreshold = 1.0
	// Upper bound on the separation speed used to resolve penetration.
	maxPushSpeed = 2.0
	// A contact within this distance of last step's contact on the same pair,
	// measured in B's frame, starts from last step's impulses.
	warmStartDistance = 0.05
)

type pairKey struct{ a, b int }

// cachedImpulse is an accumulated impulse kept for warm starting.
type cachedImpulse struct {
	local          mgl64.Vec3
	normal, t1, t2 float64
}

// constraint is a contact prepared for the solver.
type constraint struct {
	a, b   *Body
	normal mgl64.Vec3
	t1, t2 mgl64.Vec3
	ra, rb mgl64.Vec3

	massN, massT1, massT2 float64
	bias                  float64
	friction              float64

	lambdaN, lambdaT1, lambdaT2 float64

	key   pairKey
	local mgl64.Vec3
}

// solver resolves contacts with sequential impulses, warm started from the
// impulses of the previous step.
type solver struct {
	iterations int
	rows       []constraint

	prev, next map[pairKey][]cachedImpulse
}

func (s *solver) solve(contacts []Contact, w *World, dt float64) {
	if s.prev == nil {
		s.prev = make(map[pairKey][]cachedImpulse)
		s.next = make(map[pairKey][]cachedImpulse)
	}

	s.rows = s.rows[:0]
	for _, c := range contacts {
		// One orientation per pair keeps cached impulses comparable.
		if c.A.ID > c.B.ID {
			c = c.flipped()
		}
		cm := w.ContactMaterial(c.A.Material, c.B.Material)
		k := prepare(c, cm, dt)
		k.key = pairKey{c.A.ID, c.B.ID}
		k.local = c.B.PointToLocal(c.PointB)
		if old, ok := s.cached(k.key, k.local); ok {
			k.lambdaN, k.lambdaT1, k.lambdaT2 = old.normal, old.t1, old.t2
		}
		s.rows = append(s.rows, k)
	}

	for i := range s.rows {
		s.rows[i].warmStart()
	}
	iters := s.iterations
	if iters < 1 {
		iters = 1
	}
	for it := 0; it < iters; it++ {
		for i := range s.rows {
			s.rows[i].solve()
		}
	}

	clear(s.next)
	for i := range s.rows {
		k := &s.rows[i]
		s.next[k.key] = append(s.next[k.key], cachedImpulse{
			local:  k.local,
			normal: k.lambdaN,
			t1:     k.lambdaT1,
			t2:     k.lambdaT2,
		})
	}
	s.prev, s.next = s.next, s.prev
}

// cached returns last step's impulse for the contact of pair key closest to
// local, if one lies within warmStartDistance.
func (s *solver) cached(key pairKey, local mgl64.Vec3) (cachedImpulse, bool) {
	var found cachedImpulse
	best := warmStartDistance * warmStartDistance
	ok := false
	for _, c := range s.prev[key] {
		if d := c.local.Sub(local).LenSqr(); d <= best {
			found, best, ok = c, d, true
		}
	}
	return found, ok
}

func prepare(c Contact, cm ContactMaterial, dt float64) constraint {
	k := constraint{
		a:        c.A,
		b:        c.B,
		normal:   c.Normal,
		ra:       c.PointA.Sub(c.A.Position),
		rb:       c.PointB.Sub(c.B.Position),
		friction: cm.Friction,
	}
	k.t1, k.t2 = tangents(c.Normal)
	k.massN = k.effectiveMass(k.normal)
	k.massT1 = k.effectiveMass(k.t1)
	k.massT2 = k.effectiveMass(k.t2)

	vn := k.relativeVelocity().Dot(k.normal)
	if vn < -restitutionThreshold {
		k.bias = -cm.Restitution * vn
	}
	push := math.Min(baumgarte/dt*math.Max(c.Depth-penetrationSlop, 0), maxPushSpeed)
	if push > k.bias {
		k.bias = push
	}
	return k
}

// effectiveMass returns 1 / (J M⁻¹ Jᵀ) along dir, or 0 when neither body can
// respond.
func (k *constraint) effectiveMass(dir mgl64.Vec3) float64 {
	ima, imb := k.a.solverInvMass(), k.b.solverInvMass()
	ra := k.ra.Cross(dir)
	rb := k.rb.Cross(dir)
	d := ima + imb +
		ra.Dot(k.a.invInertiaW.Mul3x1(ra)) +
		rb.Dot(k.b.invInertiaW.Mul3x1(rb))
	if d <= 0 {
		return 0
	}
	return 1 / d
}

// relativeVelocity is the velocity of B's contact point relative to A's.
func (k *constraint) relativeVelocity() mgl64.Vec3 {
	va := k.a.Velocity.Add(k.a.AngularVelocity.Cross(k.ra))
	vb := k.b.Velocity.Add(k.b.AngularVelocity.Cross(k.rb))
	return vb.Sub(va)
}

// apply adds impulse p to B and -p to A.
func (k *constraint) apply(p mgl64.Vec3) {
	if k.a.active() {
		k.a.Velocity = k.a.Velocity.Sub(p.Mul(k.a.invMass))
		k.a.AngularVelocity = k.a.AngularVelocity.Sub(k.a.invInertiaW.Mul3x1(k.ra.Cross(p)))
	}
	if k.b.active() {
		k.b.Velocity = k.b.Velocity.Add(p.Mul(k.b.invMass))
		k.b.AngularVelocity = k.b.AngularVelocity.Add(k.b.invInertiaW.Mul3x1(k.rb.Cross(p)))
	}
}

// warmStart applies the impulses carried over from the previous step.
func (k *constraint) warmStart() {
	if k.massN == 0 {
		k.lambdaN, k.lambdaT1, k.lambdaT2 = 0, 0, 0
		return
	}
	k.apply(k.normal.Mul(k.lambdaN).Add(k.t1.Mul(k.lambdaT1)).Add(k.t2.Mul(k.lambdaT2)))
}

func (k *constraint) solve() {
	if k.massN == 0 {
		return
	}
	vn := k.relativeVelocity().Dot(k.normal)
	dl := (k.bias - vn) * k.massN
	prev := k.lambdaN
	k.lambdaN = math.Max(prev+dl, 0)
	k.apply(k.normal.Mul(k.lambdaN - prev))

	limit := k.friction * k.lambdaN
	k.lambdaT1 = k.solveTangent(k.t1, k.massT1, k.lambdaT1, limit)
	k.lambdaT2 = k.solveTangent(k.t2, k.massT2, k.lambdaT2, limit)
}

func (k *constraint) solveTangent(t mgl64.Vec3, mass, acc, limit float64) float64 {
	if mass == 0 {
		return acc
	}
	vt := k.relativeVelocity().Dot(t)
	next := clamp(acc-vt*mass, -limit, limit)
	k.apply(t.Mul(next - acc))
	return next
}

// tangents returns two unit vectors orthogonal to n and to each other.
func tangents(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	t1 := n.Cross(ref).Normalize()
	return t1, n.Cross(t1)
}
