package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyType controls how a body responds to forces and contacts.
type BodyType uint8

const (
	// Dynamic bodies have mass and respond to forces and contacts.
	Dynamic BodyType = iota + 1
	// Static bodies never move.
	Static
)

// SleepState is the activity state of a dynamic body.
type SleepState uint8

const (
	Awake SleepState = iota
	Sleepy
	Sleeping
)

func (s SleepState) String() string {
	switch s {
	case Awake:
		return "awake"
	case Sleepy:
		return "sleepy"
	case Sleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}

// Body defaults.
const (
	DefaultLinearDamping   = 0.01
	DefaultAngularDamping  = 0.01
	DefaultSleepSpeedLimit = 0.1
	DefaultSleepTimeLimit  = 1.0
)

// BodyOptions configures NewBody. Zero values pick the defaults above;
// a zero Mass makes the body static.
type BodyOptions struct {
	Mass       float64
	Shape      Shape
	Material   *Material
	Position   mgl64.Vec3
	Quaternion mgl64.Quat

	LinearDamping  float64
	AngularDamping float64
}

// Body is a rigid body.
//
// Position, Quaternion, Velocity and AngularVelocity may be set directly
// between steps; assigning them does not wake a sleeping body.
type Body struct {
	ID       int
	Type     BodyType
	Shape    Shape
	Material *Material
	Mass     float64

	Position        mgl64.Vec3
	Quaternion      mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	LinearDamping  float64
	AngularDamping float64

	AllowSleep      bool
	SleepSpeedLimit float64
	SleepTimeLimit  float64

	sleepState      SleepState
	timeLastSleepy  float64
	wakeAfterNarrow bool

	force  mgl64.Vec3
	torque mgl64.Vec3

	invMass     float64
	invInertia  mgl64.Vec3
	invInertiaW mgl64.Mat3
	aabb        AABB
}

func NewBody(opts BodyOptions) *Body {
	b := &Body{
		Shape:           opts.Shape,
		Material:        opts.Material,
		Mass:            opts.Mass,
		Position:        opts.Position,
		Quaternion:      opts.Quaternion,
		LinearDamping:   opts.LinearDamping,
		AngularDamping:  opts.AngularDamping,
		AllowSleep:      true,
		SleepSpeedLimit: DefaultSleepSpeedLimit,
		SleepTimeLimit:  DefaultSleepTimeLimit,
	}
	if b.Quaternion == (mgl64.Quat{}) {
		b.Quaternion = mgl64.QuatIdent()
	}
	if b.LinearDamping == 0 {
		b.LinearDamping = DefaultLinearDamping
	}
	if b.AngularDamping == 0 {
		b.AngularDamping = DefaultAngularDamping
	}
	b.Type = Static
	if b.Mass > 0 {
		b.Type = Dynamic
	}
	b.UpdateMassProperties()
	return b
}

// UpdateMassProperties recomputes inverse mass and inertia after Mass or
// Shape changed.
func (b *Body) UpdateMassProperties() {
	b.invMass = 0
	b.invInertia = mgl64.Vec3{}
	if b.Type != Dynamic || b.Mass <= 0 {
		return
	}
	b.invMass = 1 / b.Mass
	if b.Shape == nil {
		return
	}
	inertia := b.Shape.LocalInertia(b.Mass)
	for i := 0; i < 3; i++ {
		if inertia[i] > 0 {
			b.invInertia[i] = 1 / inertia[i]
		}
	}
}

func (b *Body) SleepState() SleepState { return b.sleepState }

// Force returns the force accumulated for the next internal step.
func (b *Body) Force() mgl64.Vec3 { return b.force }

// Torque returns the torque accumulated for the next internal step.
func (b *Body) Torque() mgl64.Vec3 { return b.torque }

// AABB returns the world bounds computed at the last broad-phase pass.
func (b *Body) AABB() AABB { return b.aabb }

// ApplyForce adds force at relPoint, a world-oriented offset from the body
// origin. The force acts during the next internal step only.
func (b *Body) ApplyForce(force, relPoint mgl64.Vec3) {
	if b.Type != Dynamic {
		return
	}
	if b.sleepState == Sleeping {
		b.WakeUp()
	}
	b.force = b.force.Add(force)
	b.torque = b.torque.Add(relPoint.Cross(force))
}

// ApplyImpulse changes velocity immediately as if impulse acted at relPoint.
func (b *Body) ApplyImpulse(impulse, relPoint mgl64.Vec3) {
	if b.Type != Dynamic {
		return
	}
	if b.sleepState == Sleeping {
		b.WakeUp()
	}
	b.updateWorldInertia()
	b.Velocity = b.Velocity.Add(impulse.Mul(b.invMass))
	b.AngularVelocity = b.AngularVelocity.Add(b.invInertiaW.Mul3x1(relPoint.Cross(impulse)))
}

func (b *Body) WakeUp() {
	b.sleepState = Awake
	b.wakeAfterNarrow = false
}

// Sleep puts the body to sleep and zeroes its velocities.
func (b *Body) Sleep() {
	b.sleepState = Sleeping
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
	b.wakeAfterNarrow = false
}

// PointToWorld converts a point in body coordinates to world coordinates.
func (b *Body) PointToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return b.Position.Add(b.Quaternion.Rotate(local))
}

// PointToLocal converts a world point to body coordinates.
func (b *Body) PointToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return b.Quaternion.Inverse().Rotate(world.Sub(b.Position))
}

func (b *Body) speedSq() float64 {
	return b.Velocity.LenSqr() + b.AngularVelocity.LenSqr()
}

// sleepTick advances the sleep state machine at simulated time t.
func (b *Body) sleepTick(t float64) {
	if !b.AllowSleep || b.Type != Dynamic {
		return
	}
	limitSq := b.SleepSpeedLimit * b.SleepSpeedLimit
	speedSq := b.speedSq()
	switch {
	case b.sleepState == Awake && speedSq < limitSq:
		b.sleepState = Sleepy
		b.timeLastSleepy = t
	case b.sleepState == Sleepy && speedSq > limitSq:
		b.WakeUp()
	case b.sleepState == Sleepy && t-b.timeLastSleepy > b.SleepTimeLimit:
		b.Sleep()
	}
}

// active reports whether the body is integrated and solved as movable.
func (b *Body) active() bool {
	return b.Type == Dynamic && b.sleepState != Sleeping
}

// solverInvMass is the inverse mass seen by the contact solver.
func (b *Body) solverInvMass() float64 {
	if !b.active() {
		return 0
	}
	return b.invMass
}

func (b *Body) updateAABB() {
	if b.Shape == nil {
		b.aabb = AABB{Min: b.Position, Max: b.Position}
		return
	}
	b.aabb = b.Shape.AABB(b.Position, b.Quaternion)
}

// updateWorldInertia refreshes R·diag(invInertia)·Rᵀ.
func (b *Body) updateWorldInertia() {
	if !b.active() {
		b.invInertiaW = mgl64.Mat3{}
		return
	}
	r := b.Quaternion.Normalize().Mat4().Mat3()
	d := mgl64.Diag3(b.invInertia)
	b.invInertiaW = r.Mul3(d).Mul3(r.Transpose())
}

// integrateVelocity applies gravity and accumulated forces over dt, then
// damping v *= (1-d)^dt.
func (b *Body) integrateVelocity(gravity mgl64.Vec3, dt float64) {
	if !b.active() {
		return
	}
	acc := gravity.Add(b.force.Mul(b.invMass))
	b.Velocity = b.Velocity.Add(acc.Mul(dt))
	b.AngularVelocity = b.AngularVelocity.Add(b.invInertiaW.Mul3x1(b.torque).Mul(dt))

	b.Velocity = b.Velocity.Mul(math.Pow(1-b.LinearDamping, dt))
	b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1-b.AngularDamping, dt))
}

func (b *Body) integratePosition(dt float64) {
	if !b.active() {
		return
	}
	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	w := b.AngularVelocity
	if w.LenSqr() > 0 {
		spin := mgl64.Quat{W: 0, V: w}.Mul(b.Quaternion).Scale(0.5 * dt)
		b.Quaternion = b.Quaternion.Add(spin).Normalize()
	}
}

func (b *Body) clearForces() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}
