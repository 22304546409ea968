package sim

import (
	"errors"
	"io"
	"math"
	"os"
	"testing"

	"cubefall/hal"
	"cubefall/internal/config"
	"cubefall/internal/logger"
	"cubefall/physics"
	"cubefall/render"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Level: "error", Output: io.Discard})
	os.Exit(m.Run())
}

func newTestSession(t *testing.T, w, h int) *Session {
	t.Helper()
	s, err := New(config.Default(), hal.NewFramebuffer(w, h))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func checkSynced(t *testing.T, s *Session) {
	t.Helper()
	for i, p := range s.Registry().Pairs() {
		b := p.Body
		wantPos := mgl32.Vec3{float32(b.Position[0]), float32(b.Position[1]), float32(b.Position[2])}
		if p.Mesh.Position != wantPos {
			t.Fatalf("pair %d: mesh at %v, body at %v", i, p.Mesh.Position, b.Position)
		}
		q := b.Quaternion
		wantQ := mgl32.Quat{W: float32(q.W), V: mgl32.Vec3{float32(q.V[0]), float32(q.V[1]), float32(q.V[2])}}
		if p.Mesh.Orientation != wantQ {
			t.Fatalf("pair %d: mesh orientation %v, body %v", i, p.Mesh.Orientation, q)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Physics.FixedStep = 0
	if _, err := New(cfg, hal.NewFramebuffer(8, 8)); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if _, err := New(config.Default(), nil); err == nil {
		t.Fatalf("nil surface accepted")
	}
}

func TestTickCopiesTransforms(t *testing.T) {
	s := newTestSession(t, 64, 48)
	s.SpawnBox(mgl64.Vec3{0, 5, 0})
	s.SpawnBox(mgl64.Vec3{0.2, 6.1, 0})
	s.SpawnSphere(mgl64.Vec3{2, 0, 0})
	s.ApplyDebugForce()

	for i, elapsed := range []float64{0.016, 0.05, 0.3, 0.31, 1.2} {
		if err := s.Tick(elapsed); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		checkSynced(t, s)
	}
	if s.World().StepNumber() == 0 {
		t.Fatalf("world never stepped")
	}
}

func TestTickClockNeverRunsBackwards(t *testing.T) {
	s := newTestSession(t, 32, 32)
	s.SpawnSphere(mgl64.Vec3{0, 10, 0})

	if err := s.Tick(1.0); err != nil {
		t.Fatal(err)
	}
	timeAfter := s.World().Time()

	if err := s.Tick(0.5); err != nil {
		t.Fatal(err)
	}
	if s.PrevElapsed() != 1.0 {
		t.Fatalf("prevElapsed = %v after an earlier reading, want 1", s.PrevElapsed())
	}
	if s.World().Time() != timeAfter {
		t.Fatalf("world advanced on a backwards reading")
	}
	if st := s.Stats(); st.Delta != 0 || st.SubSteps != 0 {
		t.Fatalf("stats after backwards reading = %+v", st)
	}
}

func TestTickIgnoresNonFiniteReadings(t *testing.T) {
	s := newTestSession(t, 32, 32)
	s.SpawnSphere(mgl64.Vec3{0, 10, 0})
	if err := s.Tick(1.0); err != nil {
		t.Fatal(err)
	}

	for _, bad := range []float64{math.Inf(1), math.NaN(), math.Inf(-1)} {
		if err := s.Tick(bad); err != nil {
			t.Fatal(err)
		}
		if s.PrevElapsed() != 1.0 || s.Stats().SubSteps != 0 {
			t.Fatalf("reading %v: prevElapsed=%v stats=%+v", bad, s.PrevElapsed(), s.Stats())
		}
	}
	if acc := s.World().Accumulator(); math.IsNaN(acc) || math.IsInf(acc, 0) {
		t.Fatalf("accumulator = %v", acc)
	}
	if err := s.Tick(1.1); err != nil {
		t.Fatal(err)
	}
	if s.Stats().SubSteps == 0 {
		t.Fatalf("world frozen after a non-finite reading")
	}
}

func TestTickCapsSubSteps(t *testing.T) {
	s := newTestSession(t, 32, 32)
	s.SpawnBox(mgl64.Vec3{0, 10, 0})

	if err := s.Tick(1.0); err != nil {
		t.Fatal(err)
	}
	if got := s.Stats().SubSteps; got != 3 {
		t.Fatalf("sub-steps = %d, want 3", got)
	}
	if wt := s.World().Time(); wt > 3.0/60+1e-9 {
		t.Fatalf("world time = %v after a 1s frame, want <= 3/60", wt)
	}
}

func TestSpawnRegistersPairsInOrder(t *testing.T) {
	s := newTestSession(t, 32, 32)
	positions := []mgl64.Vec3{{0, 0, 0}, {-1, 2, 1}, {-1, 2, 1}, {3, 4, 5}, {0, -1, 0}}
	for i, p := range positions {
		if i == 3 {
			s.SpawnSphere(p)
			continue
		}
		s.SpawnBox(p)
	}

	if n := s.Registry().Len(); n != len(positions) {
		t.Fatalf("registry has %d pairs, want %d", n, len(positions))
	}
	if s.Scene().Len() != len(positions) || len(s.World().Bodies()) != len(positions) {
		t.Fatalf("scene=%d bodies=%d", s.Scene().Len(), len(s.World().Bodies()))
	}
	for i, want := range positions {
		p := s.Registry().At(i)
		if p.Body.Position != want {
			t.Fatalf("pair %d body at %v, want %v", i, p.Body.Position, want)
		}
		if p.Mesh.Position != vec32(want) {
			t.Fatalf("pair %d mesh at %v, want %v", i, p.Mesh.Position, want)
		}
		if got, ok := s.Registry().Lookup(p.Body); !ok || got != p {
			t.Fatalf("Lookup(pair %d) failed", i)
		}
	}
	if s.Registry().At(3).Kind != KindSphere || s.DebugTarget() != s.Registry().At(3).Body {
		t.Fatalf("sphere not registered as debug target")
	}
}

func TestAddStaticIsNotRegistered(t *testing.T) {
	s := newTestSession(t, 32, 32)
	mesh := render.NewMesh(render.NewPlaneGeometry(20, 20, 1, 1), render.Material{})
	q := mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})
	floor := s.AddStatic(physics.NewPlane(), mesh, mgl64.Vec3{}, q)

	if floor.Type != physics.Static || s.Registry().Len() != 0 || s.Scene().Len() != 1 {
		t.Fatalf("floor type=%v registry=%d scene=%d", floor.Type, s.Registry().Len(), s.Scene().Len())
	}
	if mesh.Orientation.W != float32(q.W) {
		t.Fatalf("floor mesh orientation not applied")
	}
}

func TestResize(t *testing.T) {
	s := newTestSession(t, 100, 100)

	tests := []struct {
		device, want float64
	}{
		{1, 1},
		{1.5, 1.5},
		{3, 2},
		{0, 1},
	}
	for _, tt := range tests {
		s.Resize(800, 600, tt.device)
		if got := s.Camera().Aspect; math.Abs(float64(got)-800.0/600.0) > 1e-6 {
			t.Fatalf("aspect = %v", got)
		}
		w, h := s.Surface().LogicalSize()
		if w != 800 || h != 600 {
			t.Fatalf("logical size = %dx%d", w, h)
		}
		if s.Surface().PixelRatio() != tt.want {
			t.Fatalf("device %v: pixel ratio = %v, want %v", tt.device, s.Surface().PixelRatio(), tt.want)
		}
		if s.Surface().Width() != int(math.Round(800*tt.want)) {
			t.Fatalf("physical width = %d", s.Surface().Width())
		}
	}

	s.Resize(0, 600, 1)
	if w, _ := s.Surface().LogicalSize(); w != 800 {
		t.Fatalf("zero width resize applied")
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	s := newTestSession(t, 64, 48)
	s.Scene().Ambient.Intensity = 1
	s.SpawnBox(mgl64.Vec3{0, 0, 0})
	s.SpawnSphere(mgl64.Vec3{2, 0, 0})
	if err := s.Tick(0.1); err != nil {
		t.Fatal(err)
	}

	before := s.Registry().At(0).Mesh.Position
	stepsBefore := s.World().StepNumber()

	if err := s.Render(); err != nil {
		t.Fatal(err)
	}
	first := append([]byte(nil), s.Surface().Buffer()...)
	if err := s.Render(); err != nil {
		t.Fatal(err)
	}
	second := s.Surface().Buffer()

	if s.World().StepNumber() != stepsBefore || s.Registry().At(0).Mesh.Position != before {
		t.Fatalf("Render changed the simulation")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("byte %d differs between renders", i)
		}
	}
}

func TestDebugForce(t *testing.T) {
	s := newTestSession(t, 32, 32)
	if s.ApplyDebugForce() {
		t.Fatalf("force applied with no sphere")
	}

	s.SpawnBox(mgl64.Vec3{0, 0, 0})
	sphere := s.SpawnSphere(mgl64.Vec3{2, 0, 0}).Body
	if !s.ApplyDebugForce() {
		t.Fatalf("force not applied")
	}
	if f := sphere.Force(); f != (mgl64.Vec3{-250, 10, 0}) {
		t.Fatalf("force = %v, want (-250,10,0)", f)
	}
	if tq := sphere.Torque(); tq != (mgl64.Vec3{0, 0, 250}) {
		t.Fatalf("torque = %v, want (0,0,250)", tq)
	}

	if err := s.Tick(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	if sphere.Force() != (mgl64.Vec3{}) {
		t.Fatalf("force not consumed: %v", sphere.Force())
	}
	if sphere.Velocity[0] >= 0 {
		t.Fatalf("sphere vx = %v, want negative", sphere.Velocity[0])
	}
}

func TestPickingHighlightsHoveredPair(t *testing.T) {
	s := newTestSession(t, 64, 48)
	box := s.SpawnBox(mgl64.Vec3{0, 0, 0})

	s.SetPointer(32, 24)
	if err := s.Tick(0); err != nil {
		t.Fatal(err)
	}
	if s.Hovered() != box || box.Mesh.Material.Color != HighlightColor {
		t.Fatalf("center pointer did not hover the box")
	}
	if st := s.Stats(); st.Hovered != box.Body.ID {
		t.Fatalf("stats hovered = %d", st.Hovered)
	}
	if got := s.Click(32, 24); got != box {
		t.Fatalf("click picked %v", got)
	}

	s.SetPointer(0, 0)
	if err := s.Tick(0); err != nil {
		t.Fatal(err)
	}
	if s.Hovered() != nil || box.Mesh.Material.Color != MeshColor {
		t.Fatalf("hover not cleared: %v %v", s.Hovered(), box.Mesh.Material.Color)
	}
	if ndc, ok := s.Pointer(); !ok || ndc != (mgl32.Vec2{-1, 1}) {
		t.Fatalf("pointer = %v", ndc)
	}
}

type countingOverlay struct {
	draws int
	last  Stats
}

func (o *countingOverlay) Draw(_ *render.RGBATarget, st Stats) {
	o.draws++
	o.last = st
}

func TestOverlayFollowsHUDToggle(t *testing.T) {
	s := newTestSession(t, 32, 32)
	o := &countingOverlay{}
	s.SetOverlay(o)
	s.SpawnBox(mgl64.Vec3{0, 3, 0})

	s.SetHUD(true)
	if err := s.Tick(0.02); err != nil {
		t.Fatal(err)
	}
	if o.draws != 1 || o.last.Pairs != 1 || o.last.Bodies != 1 {
		t.Fatalf("overlay draws=%d stats=%+v", o.draws, o.last)
	}

	s.SetHUD(false)
	if err := s.Tick(0.04); err != nil {
		t.Fatal(err)
	}
	if o.draws != 1 {
		t.Fatalf("overlay drawn with HUD off")
	}
}

func TestCloseStopsTicks(t *testing.T) {
	s := newTestSession(t, 32, 32)
	s.SpawnBox(mgl64.Vec3{})
	s.Close()

	if err := s.Tick(1); !errors.Is(err, ErrClosed) {
		t.Fatalf("Tick after Close = %v", err)
	}
	if err := s.Render(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Render after Close = %v", err)
	}
	if s.Registry().Len() != 0 || s.Scene() != nil || s.World() != nil {
		t.Fatalf("Close kept state")
	}
	if p := s.SpawnBox(mgl64.Vec3{}); p != nil {
		t.Fatalf("Spawn after Close = %+v", p)
	}
	if b := s.AddStatic(physics.NewPlane(), nil, mgl64.Vec3{}, mgl64.QuatIdent()); b != nil {
		t.Fatalf("AddStatic after Close = %+v", b)
	}
	s.Close()
}
