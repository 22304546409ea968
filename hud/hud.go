// Package hud draws a text overlay with frame and simulation counters.
package hud

import (
	"fmt"
	"image/color"
	"math"

	"cubefall/internal/buildinfo"
	"cubefall/render"
	"cubefall/sim"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

var (
	colorFG    = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	colorDim   = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	colorPanel = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
)

// HUD renders sim.Stats in the top-left corner of a frame.
type HUD struct {
	font       tinyfont.Fonter
	lineHeight int16
	scale      int16
	lines      []string
}

// New returns a HUD using the TomThumb bitmap font. scale enlarges each font
// pixel to scale×scale target pixels, for high pixel-ratio surfaces.
func New(scale int) *HUD {
	if scale < 1 {
		scale = 1
	}
	return &HUD{
		font:       &tinyfont.TomThumb,
		lineHeight: 7,
		scale:      int16(scale),
	}
}

// SetScale changes the size of a font pixel. Values below 1 mean 1.
func (h *HUD) SetScale(scale int) {
	if scale < 1 {
		scale = 1
	}
	h.scale = int16(scale)
}

func (h *HUD) Scale() int { return int(h.scale) }

// ScaleFor returns the HUD scale for a surface of the given pixel ratio, so
// text keeps its logical size.
func ScaleFor(pixelRatio float64) int {
	n := int(math.Round(pixelRatio))
	if n < 1 {
		return 1
	}
	return n
}

// Draw implements sim.Overlay.
func (h *HUD) Draw(t *render.RGBATarget, st sim.Stats) {
	if t == nil || t.W <= 0 || t.H <= 0 {
		return
	}
	h.lines = h.lines[:0]
	h.lines = append(h.lines,
		fmt.Sprintf("cubefall %s", buildinfo.Short()),
		fmt.Sprintf("frame %d  t=%.2fs  dt=%.1fms", st.Frames, st.Elapsed, st.Delta*1000),
		fmt.Sprintf("steps %d  world %.2fs", st.SubSteps, st.WorldTime),
		fmt.Sprintf("bodies %d  asleep %d  contacts %d", st.Bodies, st.Sleeping, st.Contacts),
		fmt.Sprintf("tris %d  culled %d", st.Triangles, st.Culled),
	)
	if st.Hovered != 0 {
		h.lines = append(h.lines, fmt.Sprintf("hover #%d", st.Hovered))
	}
	if st.Wireframe {
		h.lines = append(h.lines, "wireframe")
	}

	d := &targetDisplay{t: t, scale: h.scale}
	width := int16(0)
	for _, l := range h.lines {
		_, w := tinyfont.LineWidth(h.font, l)
		if int16(w) > width {
			width = int16(w)
		}
	}
	const pad = 2
	d.FillRectangle(0, 0, width+2*pad, int16(len(h.lines))*h.lineHeight+2*pad, colorPanel)

	for i, l := range h.lines {
		c := colorFG
		if i == 0 {
			c = colorDim
		}
		// WriteLine takes the baseline, one line-height below the top.
		y := pad + int16(i+1)*h.lineHeight - 1
		tinyfont.WriteLine(d, h.font, pad, y, l, c)
	}
}

// targetDisplay adapts an RGBA target to drivers.Displayer. Coordinates are
// in font pixels; each one covers scale×scale target pixels.
type targetDisplay struct {
	t     *render.RGBATarget
	scale int16
}

var _ drivers.Displayer = (*targetDisplay)(nil)

func (d *targetDisplay) Size() (x, y int16) {
	return int16(d.t.W) / d.scale, int16(d.t.H) / d.scale
}

func (d *targetDisplay) SetPixel(x, y int16, c color.RGBA) {
	rc := render.RGBA(c.R, c.G, c.B, c.A)
	s := int(d.scale)
	x0, y0 := int(x)*s, int(y)*s
	for dy := 0; dy < s; dy++ {
		for dx := 0; dx < s; dx++ {
			d.t.SetPixel(x0+dx, y0+dy, rc)
		}
	}
}

func (d *targetDisplay) Display() error { return nil }

func (d *targetDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	for py := y; py < y+height; py++ {
		for px := x; px < x+width; px++ {
			d.SetPixel(px, py, c)
		}
	}
	return nil
}

func (d *targetDisplay) SetRotation(drivers.Rotation) error { return nil }
