// Package app composes the falling-cubes demo on top of a HAL: it builds the
// scene, starts the frame loop and maps input to session operations.
package app

import (
	"fmt"

	"cubefall/hal"
	"cubefall/hud"
	"cubefall/internal/buildinfo"
	"cubefall/internal/config"
	"cubefall/internal/logger"
	"cubefall/sim"
)

type Options struct {
	Config config.Config

	// ForceAt applies the debug force once the loop has completed this many
	// frames. Zero disables it.
	ForceAt uint64
}

type demo struct {
	h       hal.HAL
	opts    Options
	session *sim.Session
	loop    *sim.Loop
	hud     *hud.HUD
	events  <-chan hal.Event

	forced bool
}

// New builds the demo on h and starts its frame loop. The returned step
// function is called by the host once per refresh, before frame callbacks:
// it dispatches pending input and reports a stopped loop's error.
func New(h hal.HAL, opts Options) func() error {
	d, err := newDemo(h, opts)
	if err != nil {
		return func() error { return err }
	}
	return d.step
}

func newDemo(h hal.HAL, opts Options) (*demo, error) {
	cfg := opts.Config
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: hal.LogWriter(h.Logger()),
	})

	disp := h.Display()
	if disp == nil || disp.Framebuffer() == nil {
		return nil, fmt.Errorf("app: %w: no framebuffer", hal.ErrNotImplemented)
	}
	fb := disp.Framebuffer()

	s, err := sim.New(cfg, fb)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	w, ht := fb.LogicalSize()
	s.Resize(w, ht, fb.PixelRatio())
	overlay := hud.New(hud.ScaleFor(s.Surface().PixelRatio()))
	s.SetOverlay(overlay)
	BuildScene(s, cfg.Scene)

	d := &demo{
		h:       h,
		opts:    opts,
		session: s,
		hud:     overlay,
		loop:    sim.NewLoop(&guardedTicker{t: s, h: h}, h.Clock(), h.Frames()),
	}
	if in := h.Input(); in != nil {
		d.events = in.Events()
	}

	logger.L().Info("cubefall started",
		"version", buildinfo.String(),
		"pairs", s.Registry().Len(),
		"layout", cfg.Scene.Layout,
		"surface", fmt.Sprintf("%dx%d", fb.Width(), fb.Height()))
	d.loop.Start()
	return d, nil
}

func (d *demo) step() error {
	if err := d.loop.Err(); err != nil {
		return err
	}
drain:
	for {
		select {
		case ev := <-d.events:
			if err := d.handle(ev); err != nil {
				return err
			}
		default:
			break drain
		}
	}
	if d.opts.ForceAt > 0 && !d.forced && d.loop.Frames() >= d.opts.ForceAt {
		d.forced = true
		d.session.ApplyDebugForce()
	}
	return nil
}
