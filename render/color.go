package render

// Color is an RGBA color in 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func RGB(r, g, b uint8) Color     { return Color{R: r, G: g, B: b, A: 0xFF} }
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// Hex returns the opaque color 0xRRGGBB.
func Hex(v uint32) Color {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// Modulate multiplies each channel by the matching factor, clamped to 0..1.
func (c Color) Modulate(r, g, b float32) Color {
	return Color{R: mulChannel(c.R, r), G: mulChannel(c.G, g), B: mulChannel(c.B, b), A: c.A}
}

func (c Color) WithAlpha(a uint8) Color { c.A = a; return c }

func mulChannel(ch uint8, f float32) uint8 {
	v := float32(ch) * f
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
