package hal

import (
	"math"
	"sync"
)

// hostFramebuffer is a resizable RGBA (8 bits per channel) framebuffer.
type hostFramebuffer struct {
	mu sync.Mutex

	logicalW int
	logicalH int
	ratio    float64

	width  int
	height int
	stride int
	buf    []byte
}

// NewFramebuffer returns an in-memory framebuffer of the given logical size
// at pixel ratio 1.
func NewFramebuffer(width, height int) Framebuffer {
	return newHostFramebuffer(width, height)
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	f := &hostFramebuffer{}
	f.Resize(width, height, 1)
	return f
}

func (f *hostFramebuffer) Width() int       { return f.width }
func (f *hostFramebuffer) Height() int      { return f.height }
func (f *hostFramebuffer) StrideBytes() int { return f.stride }
func (f *hostFramebuffer) Buffer() []byte   { return f.buf }
func (f *hostFramebuffer) Present() error   { return nil }

func (f *hostFramebuffer) LogicalSize() (w, h int) { return f.logicalW, f.logicalH }
func (f *hostFramebuffer) PixelRatio() float64     { return f.ratio }

// Resize sets the logical size and pixel ratio. The backing buffer is
// reallocated only when it has to grow.
func (f *hostFramebuffer) Resize(w, h int, pixelRatio float64) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if pixelRatio <= 0 {
		pixelRatio = 1
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.logicalW = w
	f.logicalH = h
	f.ratio = pixelRatio
	f.width = int(math.Round(float64(w) * pixelRatio))
	f.height = int(math.Round(float64(h) * pixelRatio))
	f.stride = f.width * 4

	n := f.stride * f.height
	if cap(f.buf) < n {
		f.buf = make([]byte, n)
	} else {
		f.buf = f.buf[:n]
	}
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := 0; i+3 < len(f.buf); i += 4 {
		f.buf[i] = r
		f.buf[i+1] = g
		f.buf[i+2] = b
		f.buf[i+3] = 0xFF
	}
}

// snapshot copies the buffer into dst and reports the physical size it was
// taken at.
func (f *hostFramebuffer) snapshot(dst []byte) (w, h int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
	return f.width, f.height
}
