package sim

import (
	"cubefall/hal"
	"cubefall/internal/logger"
)

// Ticker advances the program by one frame given the elapsed clock reading.
type Ticker interface {
	Tick(elapsed float64) error
}

// Loop drives a Ticker once per display refresh.
//
// Each frame callback reads the clock, runs one tick and requests the next
// frame. A tick error stops the loop; it is kept in Err and not retried.
type Loop struct {
	ticker Ticker
	clock  hal.Clock
	sched  hal.FrameScheduler

	running bool
	gen     uint64
	frames  uint64
	err     error
}

func NewLoop(t Ticker, clock hal.Clock, sched hal.FrameScheduler) *Loop {
	return &Loop{ticker: t, clock: clock, sched: sched}
}

// Start requests the first frame. Starting a running loop is a no-op;
// starting a stopped loop clears the previous error.
func (l *Loop) Start() {
	if l.running {
		return
	}
	l.running = true
	l.err = nil
	l.gen++
	l.request(l.gen)
}

// Stop prevents further frames. A frame already requested runs as a no-op.
func (l *Loop) Stop() {
	l.running = false
}

func (l *Loop) Running() bool { return l.running }

// Frames returns the number of ticks completed.
func (l *Loop) Frames() uint64 { return l.frames }

// Err returns the error that stopped the loop, if any.
func (l *Loop) Err() error { return l.err }

func (l *Loop) request(gen uint64) {
	l.sched.RequestFrame(func() { l.frame(gen) })
}

func (l *Loop) frame(gen uint64) {
	// A Stop followed by Start leaves an old callback in flight; only the
	// newest chain may tick.
	if !l.running || gen != l.gen {
		return
	}
	if err := l.ticker.Tick(l.clock.Elapsed()); err != nil {
		l.err = err
		l.running = false
		logger.L().Error("frame loop stopped", "frame", l.frames, "err", err)
		return
	}
	l.frames++
	l.request(gen)
}
