package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// World defaults.
const (
	DefaultSolverIterations = 10
	DefaultFriction         = 0.3
	DefaultRestitution      = 0.0
)

// World owns a set of bodies and steps them forward in time.
type World struct {
	Gravity    mgl64.Vec3
	Broadphase Broadphase
	AllowSleep bool

	// DefaultContactMaterial applies to pairs with no registered
	// ContactMaterial.
	DefaultContactMaterial ContactMaterial
	SolverIterations       int

	bodies           []*Body
	contactMaterials []ContactMaterial
	nextID           int

	accumulator float64
	time        float64
	stepNumber  int

	pairs    []Pair
	contacts []Contact
	solver   solver
}

// NewWorld returns a world with gravity (0,-9.82,0), a sweep-and-prune
// broad-phase and sleeping disabled.
func NewWorld() *World {
	return &World{
		Gravity:    mgl64.Vec3{0, -9.82, 0},
		Broadphase: NewSAPBroadphase(),
		DefaultContactMaterial: ContactMaterial{
			Friction:    DefaultFriction,
			Restitution: DefaultRestitution,
		},
		SolverIterations: DefaultSolverIterations,
		nextID:           1,
	}
}

// AddBody adds b and assigns its ID. Adding a body twice is a no-op.
func (w *World) AddBody(b *Body) {
	if b == nil {
		return
	}
	for _, x := range w.bodies {
		if x == b {
			return
		}
	}
	b.ID = w.nextID
	w.nextID++
	b.updateAABB()
	w.bodies = append(w.bodies, b)
}

// RemoveBody drops b, reporting whether it was present.
func (w *World) RemoveBody(b *Body) bool {
	for i, x := range w.bodies {
		if x == b {
			copy(w.bodies[i:], w.bodies[i+1:])
			w.bodies[len(w.bodies)-1] = nil
			w.bodies = w.bodies[:len(w.bodies)-1]
			return true
		}
	}
	return false
}

// Bodies returns the bodies in insertion order. The slice is owned by the
// world.
func (w *World) Bodies() []*Body { return w.bodies }

func (w *World) AddContactMaterial(cm ContactMaterial) {
	w.contactMaterials = append(w.contactMaterials, cm)
}

// ContactMaterial returns the contact material registered for a and b, or
// the world default.
func (w *World) ContactMaterial(a, b *Material) ContactMaterial {
	if a != nil && b != nil {
		for _, cm := range w.contactMaterials {
			if cm.matches(a, b) {
				return cm
			}
		}
	}
	return w.DefaultContactMaterial
}

// Time returns the simulated time in seconds: internal steps taken times
// their step size.
func (w *World) Time() float64 { return w.time }

// StepNumber returns the number of internal steps taken.
func (w *World) StepNumber() int { return w.stepNumber }

// Accumulator returns the unsimulated time carried to the next Step.
func (w *World) Accumulator() float64 { return w.accumulator }

// Contacts returns the contacts of the last internal step.
func (w *World) Contacts() []Contact { return w.contacts }

// Step advances the world using a semi-fixed timestep.
//
// timeSinceLast is added to an accumulator; while it holds at least dt and
// fewer than maxSubSteps internal steps have run, one step of exactly dt is
// taken. Whatever remains is then reduced modulo dt, so time beyond the cap
// is dropped and the simulation slows down instead of spiralling. Negative or
// non-finite timeSinceLast counts as zero.
// Step returns the number of internal steps taken.
func (w *World) Step(dt, timeSinceLast float64, maxSubSteps int) int {
	if dt <= 0 {
		return 0
	}
	if timeSinceLast < 0 || math.IsNaN(timeSinceLast) || math.IsInf(timeSinceLast, 0) {
		timeSinceLast = 0
	}
	if maxSubSteps < 1 {
		maxSubSteps = 1
	}
	w.accumulator += timeSinceLast
	n := 0
	for w.accumulator >= dt && n < maxSubSteps {
		w.internalStep(dt)
		w.accumulator -= dt
		n++
	}
	w.accumulator = math.Mod(w.accumulator, dt)
	return n
}

func (w *World) internalStep(dt float64) {
	bp := w.Broadphase
	if bp == nil {
		bp = NaiveBroadphase{}
	}

	for _, b := range w.bodies {
		b.updateWorldInertia()
		b.integrateVelocity(w.Gravity, dt)
	}

	w.pairs = bp.Pairs(w.bodies, w.pairs[:0])
	w.contacts = w.contacts[:0]
	for _, p := range w.pairs {
		start := len(w.contacts)
		w.contacts = Collide(p.A, p.B, w.contacts)
		if w.AllowSleep && len(w.contacts) > start {
			markWake(p.A, p.B)
			markWake(p.B, p.A)
		}
	}
	if w.AllowSleep {
		for _, b := range w.bodies {
			if b.wakeAfterNarrow {
				b.WakeUp()
				b.updateWorldInertia()
			}
		}
	}

	w.solver.iterations = w.SolverIterations
	w.solver.solve(w.contacts, w, dt)

	for _, b := range w.bodies {
		b.integratePosition(dt)
		b.clearForces()
	}

	w.time += dt
	w.stepNumber++

	if w.AllowSleep {
		for _, b := range w.bodies {
			b.sleepTick(w.time)
		}
	}
}

// markWake flags a sleeping body touched by an awake body that moves fast
// enough to disturb it.
func markWake(sleeper, other *Body) {
	if !sleeper.AllowSleep || sleeper.Type != Dynamic || sleeper.sleepState != Sleeping {
		return
	}
	if other.Type == Static || other.sleepState != Awake {
		return
	}
	limit := other.SleepSpeedLimit
	if other.speedSq() >= limit*limit*2 {
		sleeper.wakeAfterNarrow = true
	}
}
