// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
)

// SwapchainOptions configures NewSwapchain.
type SwapchainOptions struct {
	// VSync selects FIFO presentation. Otherwise mailbox is used when the
	// surface supports it, then immediate.
	VSync bool

	// Resizable lets the swapchain follow the window size. When false
	// the first configured extent is kept for the swapchain's lifetime
	// and the compositor scales the image.
	Resizable bool
}

// Frame is one acquired swapchain image.
type Frame struct {
	Texture hal.SurfaceTexture
	View    hal.TextureView
	Extent  primer.Extent

	// Generation is the swapchain generation the image belongs to.
	Generation uint64
}

// Swapchain owns a window surface and its configuration. It recreates the
// configuration when the window size changes or the surface reports it
// out of date.
//
// Recreation waits for every frame in flight, unconfigures the surface,
// configures it at the new extent and bumps Generation.
//
// A host swapchain, created by NewHostSwapchain, has no surface of its
// own: the host application acquires and presents, and hands each frame's
// view to Attach. Recreation then only waits for frames in flight and
// bumps Generation.
type Swapchain struct {
	surface hal.Surface
	device  hal.Device
	queue   hal.Queue
	frames  *FrameSync
	host    bool
	closed  bool

	format      gputypes.TextureFormat
	presentMode gputypes.PresentMode
	resizable   bool

	extent     primer.Extent
	configured bool
	stale      bool
	generation uint64

	listeners []func(primer.Extent)
}

// NewSwapchain wraps surface for presentation on dev. frames is waited on
// before every reconfiguration. The swapchain takes ownership of the
// surface.
func NewSwapchain(dev *Device, surface hal.Surface, frames *FrameSync, opts SwapchainOptions) *Swapchain {
	var caps *hal.SurfaceCapabilities
	if dev.adapter != nil {
		caps = dev.adapter.SurfaceCapabilities(surface)
	}
	return &Swapchain{
		surface:     surface,
		device:      dev.device,
		queue:       dev.queue,
		frames:      frames,
		format:      dev.format,
		presentMode: choosePresentMode(caps, opts.VSync),
		resizable:   opts.Resizable,
	}
}

// NewHostSwapchain tracks the surface of a host application that acquires
// and presents the images itself. Frames come from Attach.
func NewHostSwapchain(dev *Device, frames *FrameSync, opts SwapchainOptions) *Swapchain {
	return &Swapchain{
		device:      dev.device,
		queue:       dev.queue,
		frames:      frames,
		host:        true,
		format:      dev.format,
		presentMode: choosePresentMode(nil, opts.VSync),
		resizable:   opts.Resizable,
	}
}

// choosePresentMode returns Fifo for vsync, otherwise the first of
// Mailbox and Immediate the surface supports. Fifo is always available.
func choosePresentMode(caps *hal.SurfaceCapabilities, vsync bool) gputypes.PresentMode {
	if vsync || caps == nil {
		return hal.PresentModeFifo
	}
	for _, want := range []gputypes.PresentMode{hal.PresentModeMailbox, hal.PresentModeImmediate} {
		for _, m := range caps.PresentModes {
			if m == want {
				return m
			}
		}
	}
	return hal.PresentModeFifo
}

// maxExtent is the largest surface the swapchain will configure.
var maxExtent = primer.Extent{
	Width:  gputypes.DefaultLimits().MaxTextureDimension2D,
	Height: gputypes.DefaultLimits().MaxTextureDimension2D,
}

// Extent returns the configured extent.
func (s *Swapchain) Extent() primer.Extent { return s.extent }

// Format returns the surface texture format.
func (s *Swapchain) Format() gputypes.TextureFormat { return s.format }

// PresentMode returns the presentation mode.
func (s *Swapchain) PresentMode() gputypes.PresentMode { return s.presentMode }

// Generation counts configurations. It is 1 after the first Configure.
func (s *Swapchain) Generation() uint64 { return s.generation }

// Resizable reports whether the swapchain follows the window size.
func (s *Swapchain) Resizable() bool { return s.resizable }

// Configured reports whether the surface is currently configured.
func (s *Swapchain) Configured() bool { return s.configured }

// Host reports whether the surface belongs to a host application.
func (s *Swapchain) Host() bool { return s.host }

// OnRecreate registers fn to run after every (re)configuration with the
// new extent.
func (s *Swapchain) OnRecreate(fn func(primer.Extent)) {
	s.listeners = append(s.listeners, fn)
}

// Configure configures the surface at extent. A zero extent returns
// primer.ErrZeroExtent and leaves the surface unconfigured.
func (s *Swapchain) Configure(extent primer.Extent) error {
	if s.closed {
		return primer.ErrClosed
	}
	if extent.IsZero() {
		return fmt.Errorf("configure surface: %w", primer.ErrZeroExtent)
	}
	extent = extent.Clamp(primer.Extent{Width: 1, Height: 1}, maxExtent)

	if !s.host {
		err := s.surface.Configure(s.device, &hal.SurfaceConfiguration{
			Width:       extent.Width,
			Height:      extent.Height,
			Format:      s.format,
			Usage:       gputypes.TextureUsageRenderAttachment,
			PresentMode: s.presentMode,
			AlphaMode:   hal.CompositeAlphaModeOpaque,
		})
		if err != nil {
			if errors.Is(err, hal.ErrZeroArea) {
				return fmt.Errorf("configure surface: %w", primer.ErrZeroExtent)
			}
			return fmt.Errorf("configure surface %v: %w", extent, err)
		}
	}

	s.extent = extent
	s.configured = true
	s.stale = false
	s.generation++

	primer.Logger().Debug("gfx: swapchain configured",
		"extent", extent.String(),
		"generation", s.generation,
		"present_mode", s.presentMode.String(),
		"host", s.host)

	for _, fn := range s.listeners {
		fn(extent)
	}
	return nil
}

// Resize records a new window size. The surface is reconfigured on the
// next Acquire. Ignored when the swapchain is not resizable.
func (s *Swapchain) Resize(extent primer.Extent) {
	if !s.resizable || extent == s.extent {
		return
	}
	primer.Logger().Info("gfx: window resized", "extent", extent.String())
	s.stale = true
}

// NeedsRecreate reports whether Acquire at extent would reconfigure the
// surface.
func (s *Swapchain) NeedsRecreate(extent primer.Extent) bool {
	if !s.configured {
		return true
	}
	if s.stale {
		return true
	}
	return s.resizable && extent != s.extent
}

// Acquire returns the next image to render into, reconfiguring the
// surface first when needed. It returns a nil Frame and nil error when the
// frame should be skipped: the window is minimized, or the surface is out
// of date or has no image ready.
func (s *Swapchain) Acquire(extent primer.Extent) (*Frame, error) {
	if s.closed {
		return nil, primer.ErrClosed
	}
	if s.host {
		return nil, ErrHostSurface
	}
	if extent.IsZero() {
		return nil, nil
	}
	if skip, err := s.prepare(extent); skip || err != nil {
		return nil, err
	}

	acquired, err := s.surface.AcquireTexture(nil)
	switch {
	case errors.Is(err, hal.ErrSurfaceOutdated):
		s.stale = true
		primer.Logger().Debug("gfx: surface out of date on acquire")
		return nil, nil
	case errors.Is(err, hal.ErrNotReady), errors.Is(err, hal.ErrTimeout):
		primer.Logger().Warn("gfx: no swapchain image ready, skipping frame", "err", err)
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("acquire surface texture: %w", err)
	}
	// A fixed-size swapchain keeps presenting suboptimal images; rebuilding
	// would yield the same extent every frame.
	if acquired.Suboptimal && s.resizable {
		s.stale = true
	}

	view, err := s.device.CreateTextureView(acquired.Texture, &hal.TextureViewDescriptor{
		Label:           "swapchain_view",
		Format:          s.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		s.surface.DiscardTexture(acquired.Texture)
		return nil, fmt.Errorf("create swapchain view: %w", err)
	}

	return &Frame{
		Texture:    acquired.Texture,
		View:       view,
		Extent:     s.extent,
		Generation: s.generation,
	}, nil
}

// Attach wraps view, the current image of a host-owned surface of the
// given extent, as a Frame. The swapchain is recreated first when needed,
// exactly as Acquire would. A zero extent returns a nil Frame and nil
// error. A fixed-size swapchain keeps its first extent, shrunk to fit
// the host surface.
func (s *Swapchain) Attach(view hal.TextureView, extent primer.Extent) (*Frame, error) {
	if s.closed {
		return nil, primer.ErrClosed
	}
	if !s.host {
		return nil, fmt.Errorf("attach: swapchain owns its surface")
	}
	if view == nil {
		return nil, fmt.Errorf("attach: %w: nil surface view", ErrNoHAL)
	}
	if extent.IsZero() {
		return nil, nil
	}
	if skip, err := s.prepare(extent); skip || err != nil {
		return nil, err
	}

	target := s.extent
	if !s.resizable {
		target = primer.Extent{
			Width:  min(target.Width, extent.Width),
			Height: min(target.Height, extent.Height),
		}
	}
	return &Frame{
		View:       view,
		Extent:     target,
		Generation: s.generation,
	}, nil
}

// prepare recreates the swapchain for extent when needed. skip reports
// that the frame should be dropped without error.
func (s *Swapchain) prepare(extent primer.Extent) (skip bool, err error) {
	if !s.NeedsRecreate(extent) {
		return false, nil
	}
	target := extent
	if !s.resizable && s.configured {
		target = s.extent
	}
	if err := s.recreate(target); err != nil {
		if errors.Is(err, primer.ErrZeroExtent) {
			return true, nil
		}
		return true, err
	}
	return false, nil
}

// Present queues frame for display. It must follow the submission that
// rendered into it. An out-of-date surface marks the swapchain for
// recreation and is not an error. Host frames are presented by the host,
// so Present does nothing for them.
func (s *Swapchain) Present(frame *Frame) error {
	if frame == nil || s.host {
		return nil
	}
	if s.closed {
		return primer.ErrClosed
	}
	defer s.device.DestroyTextureView(frame.View)

	err := s.queue.Present(s.surface, frame.Texture, nil)
	if errors.Is(err, hal.ErrSurfaceOutdated) {
		s.stale = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

// Discard releases frame without presenting it.
func (s *Swapchain) Discard(frame *Frame) {
	if frame == nil || s.host || s.closed {
		return
	}
	s.device.DestroyTextureView(frame.View)
	s.surface.DiscardTexture(frame.Texture)
}

func (s *Swapchain) recreate(extent primer.Extent) error {
	if s.configured {
		if s.frames != nil {
			if err := s.frames.WaitAll(); err != nil {
				return fmt.Errorf("recreate swapchain: %w", err)
			}
		}
		if !s.host {
			s.surface.Unconfigure(s.device)
		}
		s.configured = false
	}
	return s.Configure(extent)
}

// Destroy unconfigures and destroys the surface. A host surface is left
// to its owner. Safe to call multiple times.
func (s *Swapchain) Destroy() {
	if s.closed {
		return
	}
	s.closed = true
	if s.configured {
		if s.frames != nil {
			if err := s.frames.WaitAll(); err != nil {
				primer.Logger().Warn("gfx: swapchain destroy", "err", err)
			}
		}
		if !s.host {
			s.surface.Unconfigure(s.device)
		}
		s.configured = false
	}
	if s.surface != nil {
		s.surface.Destroy()
		s.surface = nil
	}
}
