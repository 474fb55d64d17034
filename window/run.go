// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package window

import (
	"errors"
	"time"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/gfx"
	"github.com/gogpu/primer/overlay"
)

// Session is the running program as seen by setup code.
type Session struct {
	cfg   primer.Config
	setup func(*Session) error
	exit  func()

	app       *gogpu.App
	device    *gfx.Device
	renderer  *gfx.Renderer
	swapchain *gfx.Swapchain
	ui        overlay.UI

	panel   overlay.PanelState
	pointer pointer

	started bool
	closed  bool
	err     error
	frames  uint64
	last    time.Time
}

func newSession(cfg primer.Config, setup func(*Session) error, exit func()) *Session {
	return &Session{
		cfg:   cfg,
		setup: setup,
		exit:  exit,
		panel: overlay.PanelState{
			Triangle:   cfg.Layers.Triangle,
			Quad:       cfg.Layers.Quad,
			QuadButton: cfg.Layers.Quad,
		},
	}
}

// Config returns the configuration the session was started with.
func (s *Session) Config() primer.Config { return s.cfg }

// App returns the gogpu application hosting the program.
func (s *Session) App() *gogpu.App { return s.app }

// Renderer returns the renderer drawing into the window.
func (s *Session) Renderer() *gfx.Renderer { return s.renderer }

// Swapchain returns the window swapchain.
func (s *Session) Swapchain() *gfx.Swapchain { return s.swapchain }

// Overlay returns the GUI overlay, or nil when the program has none.
func (s *Session) Overlay() overlay.UI { return s.ui }

// Frames returns the number of frames rendered so far.
func (s *Session) Frames() uint64 { return s.frames }

// Quit closes the window after the current frame.
func (s *Session) Quit() {
	if s.exit != nil {
		s.exit()
	}
}

// Run opens the window described by cfg on a gogpu App and renders until
// it is closed. The GPU objects are created on the first frame, once the
// App's device exists; setup, if not nil, runs right after. Everything is
// released before Run returns.
func Run(cfg primer.Config, setup func(*Session) error) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(cfg.Title).
		WithSize(cfg.Width, cfg.Height).
		WithContinuousRender(true))

	s := newSession(cfg, setup, app.Quit)
	s.app = app

	events := app.EventSource()
	events.OnKeyPress(s.handleKey)
	if cfg.Layers.Overlay {
		s.pointer.attach(events)
	}

	app.OnDraw(func(dc *gogpu.Context) {
		if s.err != nil || s.closed {
			return
		}
		if !s.started {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			if err := s.start(provider); err != nil {
				s.fail(err)
				return
			}
			primer.Logger().Info("window: running",
				"title", cfg.Title,
				"backend", dc.Backend(),
				"format", s.device.SurfaceFormat().String())
		}

		sw, sh := dc.SurfaceSize()
		extent := primer.NewExtent(int(sw), int(sh))
		scale := 1.0
		if w := dc.Width(); w > 0 && extent.Width > 0 {
			scale = float64(extent.Width) / float64(w)
		}
		if err := s.draw(dc.SurfaceView(), extent, scale, time.Now()); err != nil {
			s.fail(err)
		}
	})
	app.OnClose(s.close)

	err := app.Run()
	s.close()
	return errors.Join(err, s.err)
}

// fail records the first error and closes the window.
func (s *Session) fail(err error) {
	if s.err == nil {
		s.err = err
	}
	primer.Logger().Error("window: stopping", "err", err)
	s.Quit()
}

// start wraps the host device and brings up the renderer, the host
// swapchain and, when configured, the GUI overlay, then runs setup.
func (s *Session) start(provider gpucontext.DeviceProvider) error {
	s.started = true

	dev, err := gfx.FromProvider(provider)
	if err != nil {
		return err
	}
	s.device = dev

	renderer, err := gfx.NewRenderer(dev, s.cfg)
	if err != nil {
		return err
	}
	s.renderer = renderer
	s.swapchain = gfx.NewHostSwapchain(dev, renderer.Frames(), gfx.SwapchainOptions{
		VSync:     s.cfg.VSync,
		Resizable: s.cfg.Resizable,
	})

	if s.cfg.Layers.Overlay {
		ui, err := newUI()
		if err != nil {
			return err
		}
		s.ui = ui
		if err := renderer.SetOverlayFont(ui.FontAtlas()); err != nil {
			return err
		}
	}

	if s.setup != nil {
		return s.setup(s)
	}
	return nil
}

// draw renders one frame into the surface view the host acquired. extent
// is the surface size in pixels and scale converts pointer positions to
// it.
func (s *Session) draw(view any, extent primer.Extent, scale float64, now time.Time) error {
	hv, err := gfx.HostView(view)
	if err != nil {
		return err
	}
	frame, err := s.swapchain.Attach(hv, extent)
	if err != nil {
		return err
	}
	if frame == nil {
		// Minimized.
		return nil
	}

	var dt time.Duration
	if !s.last.IsZero() {
		dt = now.Sub(s.last)
	}
	s.last = now
	s.updateOverlay(frame.Extent, scale, dt)

	if _, err := s.renderer.Frame(frame.View, frame.Extent); err != nil {
		s.swapchain.Discard(frame)
		if errors.Is(err, primer.ErrZeroExtent) {
			primer.Logger().Warn("window: skipping frame", "err", err)
			return nil
		}
		return err
	}
	if err := s.swapchain.Present(frame); err != nil {
		return err
	}
	s.frames++
	return nil
}

// close waits for the GPU and releases everything start created. Safe to
// call more than once.
func (s *Session) close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.device != nil {
		if err := s.device.WaitIdle(); err != nil && s.err == nil {
			s.err = err
		}
	}
	if s.ui != nil {
		s.ui.Close()
	}
	if s.swapchain != nil {
		s.swapchain.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.device != nil {
		s.device.Close()
	}
	primer.Logger().Debug("window: closed", "frames", s.frames)
}

// handleKey implements the shared key bindings: Escape closes, Space
// toggles the GUI overlay.
func (s *Session) handleKey(key gpucontext.Key, _ gpucontext.Modifiers) {
	switch key {
	case gpucontext.KeyEscape:
		s.Quit()
	case gpucontext.KeySpace:
		if s.ui == nil || s.renderer == nil {
			return
		}
		layers := s.renderer.Layers()
		layers.Overlay = !layers.Overlay
		s.renderer.SetLayers(layers)
		primer.Logger().Debug("window: overlay toggled", "visible", layers.Overlay)
	}
}

// updateOverlay runs one GUI frame and hands its geometry to the
// renderer. Panel buttons toggle the triangle and quad layers; Close ends
// the program.
func (s *Session) updateOverlay(extent primer.Extent, scale float64, dt time.Duration) {
	if s.ui == nil || !s.renderer.Layers().Overlay {
		return
	}
	s.ui.SetInput(s.pointer.snapshot(scale, scale))
	s.ui.Begin(int(extent.Width), int(extent.Height), dt)
	actions := s.ui.Panel(&s.panel)
	s.renderer.UpdateOverlay(s.ui.Render())

	if actions.Changed {
		layers := s.renderer.Layers()
		layers.Triangle = s.panel.Triangle
		layers.Quad = s.panel.Quad
		s.renderer.SetLayers(layers)
	}
	if actions.Close {
		s.Quit()
	}
}
