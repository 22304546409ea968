//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var keyMap = []struct {
	key  ebiten.Key
	code KeyCode
}{
	{ebiten.KeyEscape, KeyEscape},
	{ebiten.KeyF, KeyF},
	{ebiten.KeyH, KeyH},
	{ebiten.KeyP, KeyP},
	{ebiten.KeyW, KeyW},
}

// poll translates ebiten input state into events. outsideW and outsideH are
// the logical window size reported to Layout; ratio maps cursor positions
// (in framebuffer pixels) back to logical pixels.
func (in *hostInput) poll(outsideW, outsideH int, ratio float64) {
	if outsideW > 0 && outsideH > 0 {
		scale := ebiten.Monitor().DeviceScaleFactor()
		if outsideW != in.lastW || outsideH != in.lastH || scale != in.lastScale {
			in.lastW, in.lastH, in.lastScale = outsideW, outsideH, scale
			in.emit(Event{Kind: EventResize, Width: outsideW, Height: outsideH, Scale: scale})
		}
	}

	if ratio <= 0 {
		ratio = 1
	}
	cx, cy := ebiten.CursorPosition()
	x := int(float64(cx) / ratio)
	y := int(float64(cy) / ratio)
	if !in.pointerStarted || x != in.lastX || y != in.lastY {
		in.pointerStarted = true
		in.lastX, in.lastY = x, y
		in.emit(Event{Kind: EventPointerMove, X: x, Y: y})
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		in.emit(Event{Kind: EventPointerClick, X: x, Y: y, Press: true})
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		if in.dragging {
			dx, dy := x-in.dragX, y-in.dragY
			if dx != 0 || dy != 0 {
				in.emit(Event{Kind: EventPointerDrag, X: x, Y: y, DX: float64(dx), DY: float64(dy)})
			}
		}
		in.dragging = true
		in.dragX, in.dragY = x, y
	} else {
		in.dragging = false
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		in.emit(Event{Kind: EventWheel, DY: wy})
	}

	for _, m := range keyMap {
		if inpututil.IsKeyJustPressed(m.key) {
			in.emit(Event{Kind: EventKey, Key: m.code, Press: true})
		}
		if inpututil.IsKeyJustReleased(m.key) {
			in.emit(Event{Kind: EventKey, Key: m.code, Press: false})
		}
	}
}
