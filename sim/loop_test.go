package sim

import (
	"errors"
	"testing"

	"cubefall/hal"
	"cubefall/internal/config"

	"github.com/go-gl/mathgl/mgl64"
)

// manualScheduler queues callbacks until the test runs them.
type manualScheduler struct {
	pending []func()
}

func (m *manualScheduler) RequestFrame(fn func()) { m.pending = append(m.pending, fn) }

// refresh runs the callbacks queued before the call.
func (m *manualScheduler) refresh() int {
	batch := m.pending
	m.pending = nil
	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

type fakeClock struct{ t float64 }

func (c *fakeClock) Elapsed() float64 { return c.t }

type fakeTicker struct {
	calls   []float64
	failAt  int
	failErr error
}

func (f *fakeTicker) Tick(elapsed float64) error {
	f.calls = append(f.calls, elapsed)
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return f.failErr
	}
	return nil
}

func TestLoopStartSchedulesAndReschedules(t *testing.T) {
	sched := &manualScheduler{}
	clock := &fakeClock{}
	tk := &fakeTicker{}
	l := NewLoop(tk, clock, sched)

	if len(sched.pending) != 0 || l.Running() {
		t.Fatalf("loop scheduled before Start")
	}
	l.Start()
	l.Start()
	if len(sched.pending) != 1 || !l.Running() {
		t.Fatalf("Start queued %d frames", len(sched.pending))
	}

	for i := 1; i <= 3; i++ {
		clock.t = float64(i) * 0.016
		if n := sched.refresh(); n != 1 {
			t.Fatalf("refresh %d ran %d callbacks", i, n)
		}
		if len(sched.pending) != 1 {
			t.Fatalf("frame %d did not reschedule", i)
		}
	}
	if l.Frames() != 3 || len(tk.calls) != 3 || tk.calls[2] != clock.t {
		t.Fatalf("frames=%d calls=%v", l.Frames(), tk.calls)
	}
}

func TestLoopStopHaltsRescheduling(t *testing.T) {
	sched := &manualScheduler{}
	tk := &fakeTicker{}
	l := NewLoop(tk, &fakeClock{}, sched)

	l.Start()
	sched.refresh()
	l.Stop()
	sched.refresh()

	if len(tk.calls) != 1 || len(sched.pending) != 0 || l.Running() {
		t.Fatalf("calls=%d pending=%d running=%v", len(tk.calls), len(sched.pending), l.Running())
	}
}

func TestLoopRestartKeepsSingleChain(t *testing.T) {
	sched := &manualScheduler{}
	tk := &fakeTicker{}
	l := NewLoop(tk, &fakeClock{}, sched)

	l.Start()
	l.Stop()
	l.Start()
	if len(sched.pending) != 2 {
		t.Fatalf("pending = %d, want the stale and the fresh callback", len(sched.pending))
	}
	sched.refresh()
	if len(tk.calls) != 1 || len(sched.pending) != 1 {
		t.Fatalf("calls=%d pending=%d, want one live chain", len(tk.calls), len(sched.pending))
	}
}

func TestLoopStopsOnTickError(t *testing.T) {
	sched := &manualScheduler{}
	boom := errors.New("boom")
	tk := &fakeTicker{failAt: 2, failErr: boom}
	l := NewLoop(tk, &fakeClock{}, sched)

	l.Start()
	for i := 0; i < 5; i++ {
		sched.refresh()
	}
	if len(tk.calls) != 2 {
		t.Fatalf("ticked %d times after an error, want 2", len(tk.calls))
	}
	if !errors.Is(l.Err(), boom) || l.Running() || l.Frames() != 1 {
		t.Fatalf("err=%v running=%v frames=%d", l.Err(), l.Running(), l.Frames())
	}

	l.Start()
	if l.Err() != nil {
		t.Fatalf("restart kept the old error")
	}
}

type failingSurface struct {
	hal.Framebuffer
	err error
}

func (f failingSurface) Present() error { return f.err }

func TestLoopWithSessionFailsFast(t *testing.T) {
	lost := errors.New("surface lost")
	s, err := New(config.Default(), failingSurface{Framebuffer: hal.NewFramebuffer(16, 16), err: lost})
	if err != nil {
		t.Fatal(err)
	}
	s.SpawnBox(mgl64.Vec3{0, 2, 0})

	sched := &manualScheduler{}
	l := NewLoop(s, &fakeClock{t: 0.5}, sched)
	l.Start()
	sched.refresh()

	if !errors.Is(l.Err(), lost) || l.Running() || len(sched.pending) != 0 {
		t.Fatalf("err=%v running=%v pending=%d", l.Err(), l.Running(), len(sched.pending))
	}
}
