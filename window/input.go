// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package window

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/primer/overlay"
)

// pointer accumulates mouse events between frames for the overlay.
// Positions are in window coordinates until snapshot scales them.
type pointer struct {
	x, y    float64
	buttons [3]bool

	// Wheel deltas since the last snapshot, positive right and down.
	wheelX, wheelY float64
}

func (p *pointer) attach(src gpucontext.EventSource) {
	src.OnMouseMove(func(x, y float64) {
		p.x, p.y = x, y
	})
	src.OnMousePress(func(b gpucontext.MouseButton, x, y float64) {
		p.x, p.y = x, y
		p.set(b, true)
	})
	src.OnMouseRelease(func(b gpucontext.MouseButton, x, y float64) {
		p.x, p.y = x, y
		p.set(b, false)
	})
	src.OnScroll(func(dx, dy float64) {
		p.wheelX += dx
		p.wheelY += dy
	})
}

func (p *pointer) set(b gpucontext.MouseButton, down bool) {
	switch b {
	case gpucontext.MouseButtonLeft:
		p.buttons[overlay.MouseLeft] = down
	case gpucontext.MouseButtonRight:
		p.buttons[overlay.MouseRight] = down
	case gpucontext.MouseButtonMiddle:
		p.buttons[overlay.MouseMiddle] = down
	}
}

// snapshot returns the overlay input for this frame with positions scaled
// into framebuffer pixels, and resets the wheel. imgui counts wheel steps
// positive up, so the vertical delta is negated back.
func (p *pointer) snapshot(scaleX, scaleY float64) overlay.Input {
	in := overlay.Input{
		MouseX:  float32(p.x * scaleX),
		MouseY:  float32(p.y * scaleY),
		Buttons: p.buttons,
		WheelX:  float32(p.wheelX),
		WheelY:  float32(-p.wheelY),
	}
	p.wheelX, p.wheelY = 0, 0
	return in
}
