package hal

import "errors"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// ErrQuit is returned by an app step to end the run without an error exit.
var ErrQuit = errors.New("quit")

// Framebuffer is an RGBA pixel buffer plus a "present" hook.
//
// Width and Height are physical pixels: the logical size multiplied by the
// pixel ratio.
type Framebuffer interface {
	Width() int
	Height() int
	StrideBytes() int
	Buffer() []byte
	LogicalSize() (w, h int)
	PixelRatio() float64
	Resize(w, h int, pixelRatio float64)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEscape
	KeyF
	KeyH
	KeyP
	KeyW
)

// EventKind identifies an input notification.
type EventKind uint8

const (
	EventResize EventKind = iota + 1
	EventPointerMove
	EventPointerClick
	EventPointerDrag
	EventWheel
	EventKey
)

// Event is an input notification.
//
// Pointer coordinates are logical pixels. For EventResize, Width and Height
// carry the new logical window size and Scale the device pixel ratio.
type Event struct {
	Kind EventKind

	X, Y   int
	DX, DY float64

	Width  int
	Height int
	Scale  float64

	Key   KeyCode
	Press bool
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides input events (best-effort on each platform).
type Input interface {
	Events() <-chan Event
}

// Clock reports seconds elapsed since the host started.
type Clock interface {
	Elapsed() float64
}

// FrameScheduler runs callbacks on the next display refresh.
//
// A callback requested while frames are being run is deferred to the
// following refresh.
type FrameScheduler interface {
	RequestFrame(fn func())
}

// HAL provides the only contact point between the program and the outside world.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	Clock() Clock
	Frames() FrameScheduler
}
