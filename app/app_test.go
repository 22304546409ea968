package app

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"cubefall/hal"
	"cubefall/internal/config"
	"cubefall/sim"

	"github.com/go-gl/mathgl/mgl64"
)

type memLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *memLogger) WriteLineString(s string) {
	l.mu.Lock()
	l.lines = append(l.lines, s)
	l.mu.Unlock()
}

func (l *memLogger) WriteLineBytes(b []byte) { l.WriteLineString(string(b)) }

func (l *memLogger) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.lines {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type fakeDisplay struct{ fb hal.Framebuffer }

func (d fakeDisplay) Framebuffer() hal.Framebuffer { return d.fb }

type fakeInput struct{ ch chan hal.Event }

func (in fakeInput) Events() <-chan hal.Event { return in.ch }

type fakeClock struct{ t float64 }

func (c *fakeClock) Elapsed() float64 { return c.t }

type fakeFrames struct{ pending []func() }

func (f *fakeFrames) RequestFrame(fn func()) { f.pending = append(f.pending, fn) }

func (f *fakeFrames) run() {
	batch := f.pending
	f.pending = nil
	for _, fn := range batch {
		fn()
	}
}

type fakeHAL struct {
	log    *memLogger
	fb     hal.Framebuffer
	input  fakeInput
	clock  *fakeClock
	frames *fakeFrames
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		log:    &memLogger{},
		fb:     hal.NewFramebuffer(64, 48),
		input:  fakeInput{ch: make(chan hal.Event, 16)},
		clock:  &fakeClock{},
		frames: &fakeFrames{},
	}
}

func (h *fakeHAL) Logger() hal.Logger         { return h.log }
func (h *fakeHAL) Display() hal.Display       { return fakeDisplay{fb: h.fb} }
func (h *fakeHAL) Input() hal.Input           { return h.input }
func (h *fakeHAL) Clock() hal.Clock           { return h.clock }
func (h *fakeHAL) Frames() hal.FrameScheduler { return h.frames }

// refresh mimics one host refresh: step, then frame callbacks.
func (h *fakeHAL) refresh(t *testing.T, step func() error, dt float64) error {
	t.Helper()
	err := step()
	h.clock.t += dt
	h.frames.run()
	return err
}

func newTestDemo(t *testing.T, opts Options) (*demo, *fakeHAL) {
	t.Helper()
	if opts.Config.Window.Width == 0 {
		opts.Config = config.Default()
	}
	h := newFakeHAL()
	d, err := newDemo(h, opts)
	if err != nil {
		t.Fatalf("newDemo: %v", err)
	}
	return d, h
}

func TestNewBuildsDemoScene(t *testing.T) {
	d, h := newTestDemo(t, Options{})
	s := d.session

	if n := s.Registry().Len(); n != 49 {
		t.Fatalf("registry has %d pairs, want sphere + 48 boxes", n)
	}
	if s.Scene().Len() != 50 || len(s.World().Bodies()) != 50 {
		t.Fatalf("scene=%d bodies=%d, want 50 with the floor", s.Scene().Len(), len(s.World().Bodies()))
	}
	if first := s.Registry().At(0); first.Kind != sim.KindSphere || first.Body.Position != (mgl64.Vec3{2, 0, 0}) {
		t.Fatalf("first pair = %v at %v", first.Kind, first.Body.Position)
	}
	if floor := s.Scene().Meshes()[0]; floor.Name != "floor" || !floor.ReceiveShadow || !s.Scene().Sun.CastShadow {
		t.Fatalf("floor %q receives shadows=%v, sun casts=%v", floor.Name, floor.ReceiveShadow, s.Scene().Sun.CastShadow)
	}
	if !s.Registry().At(1).Mesh.CastShadow {
		t.Fatalf("boxes do not cast shadows")
	}
	if !d.loop.Running() || len(h.frames.pending) != 1 {
		t.Fatalf("loop not started")
	}
	if !h.log.contains("cubefall started") {
		t.Fatalf("startup not logged: %v", h.log.lines)
	}
}

func TestStepRunsFrames(t *testing.T) {
	d, h := newTestDemo(t, Options{})
	step := d.step
	for i := 0; i < 5; i++ {
		if err := h.refresh(t, step, 1.0/60); err != nil {
			t.Fatalf("refresh %d: %v", i, err)
		}
	}
	if d.loop.Frames() != 5 || d.session.World().StepNumber() == 0 {
		t.Fatalf("frames=%d steps=%d", d.loop.Frames(), d.session.World().StepNumber())
	}
}

func TestKeysToggleSessionState(t *testing.T) {
	d, h := newTestDemo(t, Options{})
	s := d.session
	press := func(k hal.KeyCode) error {
		h.input.ch <- hal.Event{Kind: hal.EventKey, Key: k, Press: true}
		h.input.ch <- hal.Event{Kind: hal.EventKey, Key: k, Press: false}
		return d.step()
	}

	wire, hud := s.Wireframe(), s.HUD()
	if err := press(hal.KeyW); err != nil || s.Wireframe() == wire {
		t.Fatalf("W: err=%v wireframe=%v", err, s.Wireframe())
	}
	if err := press(hal.KeyH); err != nil || s.HUD() == hud {
		t.Fatalf("H: err=%v hud=%v", err, s.HUD())
	}

	if err := press(hal.KeyP); err != nil || d.loop.Running() {
		t.Fatalf("P did not pause")
	}
	h.frames.run()
	if d.loop.Frames() != 0 {
		t.Fatalf("paused loop ticked")
	}
	if err := press(hal.KeyP); err != nil || !d.loop.Running() {
		t.Fatalf("P did not resume")
	}

	if err := press(hal.KeyF); err != nil || s.DebugTarget().Force() == (mgl64.Vec3{}) {
		t.Fatalf("F did not push the sphere")
	}
	if err := press(hal.KeyEscape); !errors.Is(err, hal.ErrQuit) {
		t.Fatalf("Escape = %v, want ErrQuit", err)
	}
}

func TestPointerAndResizeEvents(t *testing.T) {
	d, h := newTestDemo(t, Options{})
	s := d.session

	h.input.ch <- hal.Event{Kind: hal.EventResize, Width: 320, Height: 200, Scale: 2.5}
	h.input.ch <- hal.Event{Kind: hal.EventPointerMove, X: 160, Y: 100}
	h.input.ch <- hal.Event{Kind: hal.EventPointerDrag, DX: 40, DY: 0}
	h.input.ch <- hal.Event{Kind: hal.EventWheel, DY: 1}
	radius := s.Controls().Radius
	yaw := s.Controls().Yaw
	if err := h.refresh(t, d.step, 1.0/60); err != nil {
		t.Fatal(err)
	}

	if w, ht := s.Surface().LogicalSize(); w != 320 || ht != 200 || s.Surface().PixelRatio() != 2 {
		t.Fatalf("surface = %dx%d@%v", w, ht, s.Surface().PixelRatio())
	}
	if d.hud.Scale() != 2 {
		t.Fatalf("hud scale = %d on a ratio-2 surface", d.hud.Scale())
	}
	if ndc, ok := s.Pointer(); !ok || ndc[0] != 0 || ndc[1] != 0 {
		t.Fatalf("pointer = %v", ndc)
	}
	if s.Controls().Radius >= radius || s.Controls().Yaw == yaw {
		t.Fatalf("orbit/zoom not applied: radius %v -> %v, yaw %v -> %v",
			radius, s.Controls().Radius, yaw, s.Controls().Yaw)
	}
}

func TestForceAtFrame(t *testing.T) {
	d, h := newTestDemo(t, Options{ForceAt: 2})
	target := d.session.DebugTarget()

	for i := 0; i < 2; i++ {
		if err := h.refresh(t, d.step, 1.0/60); err != nil {
			t.Fatal(err)
		}
		if target.Force() != (mgl64.Vec3{}) {
			t.Fatalf("force applied early at refresh %d", i)
		}
	}
	if err := d.step(); err != nil {
		t.Fatal(err)
	}
	if target.Force() != (mgl64.Vec3{-250, 10, 0}) || !d.forced {
		t.Fatalf("force = %v", target.Force())
	}
}

type panicTicker struct{}

func (panicTicker) Tick(float64) error { panic("boom") }

func TestPanicInTickStopsLoop(t *testing.T) {
	d, h := newTestDemo(t, Options{})
	d.loop = sim.NewLoop(&guardedTicker{t: panicTicker{}, h: h}, h.clock, h.frames)
	h.frames.pending = nil
	d.loop.Start()
	h.frames.run()

	err := d.step()
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("step err = %v", err)
	}
	if !h.log.contains("cubefall panic:") {
		t.Fatalf("panic not logged")
	}
	if px := h.fb.Buffer()[:4]; px[0] != 0xff || px[1] != 0xff || px[2] != 0xff {
		t.Fatalf("panic screen not drawn: %v", px)
	}
}

func TestBoxLayouts(t *testing.T) {
	grid := boxLayout("grid", 1)
	if len(grid) != 48 {
		t.Fatalf("grid has %d boxes, want 48", len(grid))
	}
	stacked := 0
	for _, p := range grid {
		if p == (mgl64.Vec3{0, 0, 0}) {
			stacked++
		}
	}
	if stacked != 4 {
		t.Fatalf("%d boxes at the origin, want 4", stacked)
	}

	tower := boxLayout("tower", 1)
	if len(tower) != towerHeight || tower[0][1] != 0.5 {
		t.Fatalf("tower = %v", tower)
	}
}

func TestTakeRunes(t *testing.T) {
	p, r := takeRunes("héllo", 2)
	if p != "hé" || r != "llo" {
		t.Fatalf("takeRunes = %q, %q", p, r)
	}
	if p, r := takeRunes("hi", 5); p != "hi" || r != "" {
		t.Fatalf("short string = %q, %q", p, r)
	}
}
