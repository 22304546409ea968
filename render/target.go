package render

// Target is a minimal pixel target for software rendering.
//
// Implementations should clip out-of-bounds coordinates.
type Target interface {
	Size() (w, h int)
	SetPixel(x, y int, c Color)
	Clear(c Color)
}

// RGBATarget renders into an RGBA byte buffer (4 bytes per pixel).
//
// Callers provide the backing buffer and its layout.
type RGBATarget struct {
	Pix    []byte
	Stride int // bytes per row
	W      int
	H      int
}

func (t *RGBATarget) Size() (w, h int) { return t.W, t.H }

func (t *RGBATarget) valid() bool {
	return t != nil && t.Pix != nil && t.Stride > 0 && t.W > 0 && t.H > 0
}

func (t *RGBATarget) Clear(c Color) {
	if !t.valid() {
		return
	}
	for y := 0; y < t.H; y++ {
		row := y * t.Stride
		if row+t.W*4 > len(t.Pix) {
			return
		}
		for x := 0; x < t.W; x++ {
			off := row + x*4
			t.Pix[off] = c.R
			t.Pix[off+1] = c.G
			t.Pix[off+2] = c.B
			t.Pix[off+3] = c.A
		}
	}
}

func (t *RGBATarget) SetPixel(x, y int, c Color) {
	if !t.valid() || x < 0 || y < 0 || x >= t.W || y >= t.H {
		return
	}
	off := y*t.Stride + x*4
	if off+3 >= len(t.Pix) {
		return
	}
	t.Pix[off] = c.R
	t.Pix[off+1] = c.G
	t.Pix[off+2] = c.B
	t.Pix[off+3] = c.A
}

// At returns the color at x, y or the zero Color when out of bounds.
func (t *RGBATarget) At(x, y int) Color {
	if !t.valid() || x < 0 || y < 0 || x >= t.W || y >= t.H {
		return Color{}
	}
	off := y*t.Stride + x*4
	if off+3 >= len(t.Pix) {
		return Color{}
	}
	return Color{R: t.Pix[off], G: t.Pix[off+1], B: t.Pix[off+2], A: t.Pix[off+3]}
}
