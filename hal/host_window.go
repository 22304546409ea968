//go:build cgo

package hal

import (
	"errors"

	"cubefall/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
	TPS    int
}

// RunWindow starts a resizable desktop window that displays the framebuffer and
// forwards input. It blocks until the window closes or the app quits.
func RunWindow(cfg WindowConfig, newApp func(HAL) func() error) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	if cfg.Title == "" {
		cfg.Title = "cubefall"
	}

	h := New(cfg.Width, cfg.Height).(*hostHAL)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle(cfg.Title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	step    func() error
	scratch []byte

	outsideW int
	outsideH int
}

func (g *hostGame) Update() error {
	g.h.input.poll(g.outsideW, g.outsideH, g.h.fb.PixelRatio())
	if g.step != nil {
		if err := g.step(); err != nil {
			if errors.Is(err, ErrQuit) {
				return ebiten.Termination
			}
			return err
		}
	}
	g.h.frames.run()
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	n := len(fb.Buffer())
	if cap(g.scratch) < n {
		g.scratch = make([]byte, n)
	}
	g.scratch = g.scratch[:n]

	w, h := fb.snapshot(g.scratch)
	b := screen.Bounds()
	if w != b.Dx() || h != b.Dy() || n != w*h*4 {
		// A resize is pending; the next frame renders at the new size.
		return
	}
	screen.WritePixels(g.scratch)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.outsideW = outsideWidth
	g.outsideH = outsideHeight
	w, h := g.h.fb.Width(), g.h.fb.Height()
	if w <= 0 || h <= 0 {
		return outsideWidth, outsideHeight
	}
	return w, h
}
