package app

import (
	"cubefall/hal"
	"cubefall/hud"
	"cubefall/internal/logger"
)

// zoomPerNotch is the camera distance change for one wheel notch.
const zoomPerNotch = 0.5

func (d *demo) handle(ev hal.Event) error {
	s := d.session
	switch ev.Kind {
	case hal.EventResize:
		s.Resize(ev.Width, ev.Height, ev.Scale)
		d.hud.SetScale(hud.ScaleFor(s.Surface().PixelRatio()))
		if !d.loop.Running() {
			return s.Render()
		}
	case hal.EventPointerMove:
		s.SetPointer(float64(ev.X), float64(ev.Y))
	case hal.EventPointerClick:
		s.Click(float64(ev.X), float64(ev.Y))
	case hal.EventPointerDrag:
		s.Orbit(ev.DX, ev.DY)
	case hal.EventWheel:
		s.Zoom(-ev.DY * zoomPerNotch)
	case hal.EventKey:
		if ev.Press {
			return d.handleKey(ev.Key)
		}
	}
	return nil
}

func (d *demo) handleKey(k hal.KeyCode) error {
	s := d.session
	switch k {
	case hal.KeyEscape:
		return hal.ErrQuit
	case hal.KeyF:
		s.ApplyDebugForce()
	case hal.KeyW:
		s.SetWireframe(!s.Wireframe())
		logger.L().Debug("wireframe", "on", s.Wireframe())
	case hal.KeyH:
		s.SetHUD(!s.HUD())
		if !d.loop.Running() {
			return s.Render()
		}
	case hal.KeyP:
		if d.loop.Running() {
			d.loop.Stop()
			logger.L().Info("paused", "frame", d.loop.Frames())
		} else {
			d.loop.Start()
			logger.L().Info("resumed", "frame", d.loop.Frames())
		}
	}
	return nil
}
