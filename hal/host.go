package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	input  *hostInput
	clock  *hostClock
	frames *frameQueue
}

// New returns a host HAL implementation with a framebuffer of the given
// logical size at pixel ratio 1.
func New(width, height int) HAL {
	return newHost(width, height, os.Stdout)
}

func newHost(width, height int, w io.Writer) *hostHAL {
	return &hostHAL{
		logger: &hostLogger{w: w},
		fb:     newHostFramebuffer(width, height),
		input:  newHostInput(),
		clock:  newHostClock(),
		frames: &frameQueue{},
	}
}

func (h *hostHAL) Logger() Logger         { return h.logger }
func (h *hostHAL) Display() Display       { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input           { return h.input }
func (h *hostHAL) Clock() Clock           { return h.clock }
func (h *hostHAL) Frames() FrameScheduler { return h.frames }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

// LogWriter returns an io.Writer that forwards to l.
//
// The host logger writes through directly; other loggers receive one line per
// Write with the trailing newline stripped.
func LogWriter(l Logger) io.Writer {
	if hl, ok := l.(*hostLogger); ok {
		return hl
	}
	return lineWriter{l: l}
}

type lineWriter struct {
	l Logger
}

func (w lineWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	w.l.WriteLineBytes(p)
	return n, nil
}

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

func (l *hostLogger) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
