package sim

import (
	"errors"
	"fmt"
	"math"

	"cubefall/hal"
	"cubefall/internal/config"
	"cubefall/internal/logger"
	"cubefall/physics"
	"cubefall/render"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrClosed is returned by Tick and Render after Close.
var ErrClosed = errors.New("sim: session closed")

// MeshColor is the base color of spawned meshes.
var MeshColor = render.Hex(0x777777)

// Overlay draws on top of each rendered frame.
type Overlay interface {
	Draw(t *render.RGBATarget, st Stats)
}

// Session owns everything one running demo needs: scene, camera, physics
// world, pair registry and clock state. It is not safe for concurrent use;
// all calls happen on the frame goroutine.
type Session struct {
	cfg     config.Config
	surface hal.Framebuffer
	target  render.RGBATarget

	scene    *render.Scene
	camera   *render.Camera
	controls *render.OrbitControls
	renderer *render.Renderer
	world    *physics.World
	material *physics.Material
	registry Registry

	boxGeometry    *render.Geometry
	sphereGeometry *render.Geometry

	debugTarget *physics.Body

	overlay    Overlay
	showHUD    bool
	picking    bool
	pointer    mgl32.Vec2
	hasPointer bool
	hovered    *Pair

	prevElapsed float64
	lastDelta   float64
	subSteps    int
	frames      uint64
	closed      bool
}

// New builds a session with an empty scene and world configured from cfg,
// rendering into surface.
func New(cfg config.Config, surface hal.Framebuffer) (*Session, error) {
	if surface == nil {
		return nil, errors.New("sim: nil surface")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	s := &Session{
		cfg:      cfg,
		surface:  surface,
		scene:    render.NewScene(),
		renderer: render.NewRenderer(),
		showHUD:  cfg.Debug.HUD,
		picking:  cfg.Debug.Picking,
	}
	s.renderer.Wireframe = cfg.Debug.Wireframe
	s.renderer.Shadows = cfg.Scene.Shadows

	cc := cfg.Camera
	w, h := surface.LogicalSize()
	aspect := float32(1)
	if w > 0 && h > 0 {
		aspect = float32(w) / float32(h)
	}
	s.camera = render.NewPerspectiveCamera(float32(cc.FOV), aspect, float32(cc.Near), float32(cc.Far))
	s.camera.Position = vec32(cc.Position)
	s.camera.Target = vec32(cc.Target)
	s.controls = render.NewOrbitControls(s.camera)
	s.controls.Damping = float32(cc.Damping)
	s.controls.MinRadius = float32(cc.Near) * 10

	s.world = newWorld(cfg.Physics)
	s.material = &physics.Material{Name: "default"}
	s.world.AddContactMaterial(physics.ContactMaterial{
		A:           s.material,
		B:           s.material,
		Friction:    cfg.Physics.Friction,
		Restitution: cfg.Physics.Restitution,
	})

	sc := cfg.Scene
	size := float32(sc.BoxSize)
	s.boxGeometry = render.NewBoxGeometry(size, size, size)
	s.sphereGeometry = render.NewSphereGeometry(float32(sc.SphereRadius), sc.SphereSegments, sc.SphereSegments)

	logger.L().Debug("session created",
		"surface", fmt.Sprintf("%dx%d@%g", w, h, surface.PixelRatio()),
		"broadphase", cfg.Physics.Broadphase,
		"fixed_step", cfg.Physics.FixedStep)
	return s, nil
}

func newWorld(pc config.PhysicsConfig) *physics.World {
	w := physics.NewWorld()
	w.Gravity = mgl64.Vec3(pc.Gravity)
	w.AllowSleep = pc.AllowSleep
	w.SolverIterations = pc.SolverIterations
	w.DefaultContactMaterial = physics.ContactMaterial{
		Friction:    pc.Friction,
		Restitution: pc.Restitution,
	}
	if pc.Broadphase == "naive" {
		w.Broadphase = physics.NaiveBroadphase{}
	} else {
		w.Broadphase = physics.NewSAPBroadphase()
	}
	return w
}

// Close drops the registry and releases the scene and world. Tick and
// Render fail with ErrClosed afterwards; Spawn and AddStatic return nil.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.registry.reset()
	s.hovered = nil
	s.debugTarget = nil
	s.scene = nil
	s.world = nil
	s.overlay = nil
}

func (s *Session) Config() config.Config           { return s.cfg }
func (s *Session) Scene() *render.Scene            { return s.scene }
func (s *Session) Camera() *render.Camera          { return s.camera }
func (s *Session) Controls() *render.OrbitControls { return s.controls }
func (s *Session) World() *physics.World           { return s.world }
func (s *Session) Registry() *Registry             { return &s.registry }
func (s *Session) Surface() hal.Framebuffer        { return s.surface }
func (s *Session) Material() *physics.Material     { return s.material }
func (s *Session) SetOverlay(o Overlay)            { s.overlay = o }
func (s *Session) PrevElapsed() float64            { return s.prevElapsed }

// Tick advances one frame for the clock reading elapsed (seconds).
//
// Readings lower than the previous one, and readings that are not finite,
// count as no time passing. The world
// is stepped with the configured fixed step and sub-step cap, every pair's
// mesh takes its body's transform, hover picking is refreshed and the scene
// is rendered once.
func (s *Session) Tick(elapsed float64) error {
	if s.closed {
		return ErrClosed
	}
	if math.IsNaN(elapsed) || math.IsInf(elapsed, 0) || elapsed < s.prevElapsed {
		elapsed = s.prevElapsed
	}
	delta := elapsed - s.prevElapsed
	s.prevElapsed = elapsed
	s.lastDelta = delta

	pc := s.cfg.Physics
	s.subSteps = s.world.Step(pc.FixedStep, delta, pc.MaxSubSteps)
	s.sync()

	s.controls.Update(s.camera)
	if s.picking {
		s.updateHover()
	}
	if err := s.Render(); err != nil {
		return err
	}
	s.frames++
	return nil
}

// sync copies each body's position and orientation onto its mesh.
func (s *Session) sync() {
	for _, p := range s.registry.pairs {
		copyTransform(p.Mesh, p.Body)
	}
}

func copyTransform(m *render.Mesh, b *physics.Body) {
	m.Position = mgl32.Vec3{float32(b.Position[0]), float32(b.Position[1]), float32(b.Position[2])}
	q := b.Quaternion
	m.Orientation = mgl32.Quat{
		W: float32(q.W),
		V: mgl32.Vec3{float32(q.V[0]), float32(q.V[1]), float32(q.V[2])},
	}
}

// Render draws the scene once without stepping physics and presents it.
func (s *Session) Render() error {
	if s.closed {
		return ErrClosed
	}
	s.target = render.RGBATarget{
		Pix:    s.surface.Buffer(),
		Stride: s.surface.StrideBytes(),
		W:      s.surface.Width(),
		H:      s.surface.Height(),
	}
	s.renderer.Render(&s.target, s.scene, s.camera)
	if s.showHUD && s.overlay != nil {
		s.overlay.Draw(&s.target, s.Stats())
	}
	if err := s.surface.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// Resize matches the camera and surface to a window of width×height logical
// pixels. The surface pixel ratio is deviceRatio capped at the configured
// maximum. Non-positive sizes are ignored.
func (s *Session) Resize(width, height int, deviceRatio float64) {
	if width <= 0 || height <= 0 {
		return
	}
	ratio := deviceRatio
	if ratio <= 0 {
		ratio = 1
	}
	ratio = math.Min(ratio, s.cfg.Window.MaxPixelRatio)

	s.camera.SetAspect(float32(width) / float32(height))
	s.surface.Resize(width, height, ratio)
	logger.L().Debug("resized", "width", width, "height", height, "pixel_ratio", ratio)
}

// Spawn creates a mesh and a body of kind at pos and registers the pair.
// Positions are not validated and overlapping spawns are accepted.
func (s *Session) Spawn(kind Kind, pos mgl64.Vec3) *Pair {
	if s.closed {
		return nil
	}
	sc := s.cfg.Scene
	opts := physics.BodyOptions{Material: s.material, Position: pos}
	var geom *render.Geometry
	switch kind {
	case KindSphere:
		opts.Mass = sc.SphereMass
		opts.Shape = physics.NewSphere(sc.SphereRadius)
		geom = s.sphereGeometry
	default:
		kind = KindBox
		h := sc.BoxSize / 2
		opts.Mass = sc.BoxMass
		opts.Shape = physics.NewBox(mgl64.Vec3{h, h, h})
		geom = s.boxGeometry
	}

	body := physics.NewBody(opts)
	if kind == KindSphere && sc.SphereDamping > 0 {
		body.LinearDamping = sc.SphereDamping
		body.AngularDamping = sc.SphereDamping
	}
	mesh := render.NewMesh(geom, render.Material{Color: MeshColor})
	mesh.Name = kind.String()
	mesh.CastShadow = true
	copyTransform(mesh, body)

	s.scene.Add(mesh)
	s.world.AddBody(body)
	p := &Pair{Kind: kind, Mesh: mesh, Body: body, base: MeshColor}
	s.registry.add(p)
	if kind == KindSphere && s.debugTarget == nil {
		s.debugTarget = body
	}
	return p
}

func (s *Session) SpawnBox(pos mgl64.Vec3) *Pair    { return s.Spawn(KindBox, pos) }
func (s *Session) SpawnSphere(pos mgl64.Vec3) *Pair { return s.Spawn(KindSphere, pos) }

// AddStatic adds a massless body with shape at pos/q and shows mesh at the
// same transform. The pair is not registered since it never moves.
func (s *Session) AddStatic(shape physics.Shape, mesh *render.Mesh, pos mgl64.Vec3, q mgl64.Quat) *physics.Body {
	if s.closed {
		return nil
	}
	body := physics.NewBody(physics.BodyOptions{
		Shape:      shape,
		Material:   s.material,
		Position:   pos,
		Quaternion: q,
	})
	s.world.AddBody(body)
	if mesh != nil {
		copyTransform(mesh, body)
		s.scene.Add(mesh)
	}
	return body
}

// SetDebugTarget picks the body ApplyDebugForce pushes. By default it is
// the first sphere spawned.
func (s *Session) SetDebugTarget(b *physics.Body) { s.debugTarget = b }

func (s *Session) DebugTarget() *physics.Body { return s.debugTarget }

// ApplyDebugForce pushes the debug target once with (-strength·dt, 10, 0)
// at (0,1,0) from its center. The force acts during the next internal step.
// It reports whether there was a target.
func (s *Session) ApplyDebugForce() bool {
	b := s.debugTarget
	if b == nil {
		return false
	}
	dc := s.cfg.Debug
	force := mgl64.Vec3{-dc.ForceStrength * dc.ForceDT, 10, 0}
	b.ApplyForce(force, mgl64.Vec3{0, 1, 0})
	logger.L().Info("debug force applied", "body", b.ID, "force", force)
	return true
}

// SetWireframe switches every mesh between filled and edge rendering.
func (s *Session) SetWireframe(on bool) { s.renderer.Wireframe = on }
func (s *Session) Wireframe() bool      { return s.renderer.Wireframe }

func (s *Session) SetHUD(on bool) { s.showHUD = on }
func (s *Session) HUD() bool      { return s.showHUD }

// Orbit rotates the camera around its target by pixel deltas.
func (s *Session) Orbit(dx, dy float64) {
	const radPerPixel = 0.005
	s.controls.Rotate(float32(-dx*radPerPixel), float32(dy*radPerPixel))
}

// Zoom moves the camera towards (negative) or away from the target.
func (s *Session) Zoom(delta float64) {
	s.controls.Zoom(float32(delta))
}

func vec32(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
