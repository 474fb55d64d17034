// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/geom"
	"github.com/gogpu/primer/glyph"
	"github.com/gogpu/primer/overlay"
)

// Renderer draws the configured layers into one render pass per frame:
// the triangle, the quad, the text and the GUI overlay, in that order, over
// the clear color.
//
// Resources are created up front by NewRenderer, except the overlay
// pipeline, which exists once SetOverlayFont has been called.
type Renderer struct {
	dev    *Device
	cfg    primer.Config
	frames *FrameSync

	color    *ColorPipeline
	triangle *MeshBuffer
	quad     *MeshBuffer

	text   *TextPipeline
	face   *glyph.Face
	shaper *glyph.Shaper
	atlas  *glyph.Atlas

	overlay     *OverlayPipeline
	overlayList overlay.DrawList

	layers primer.Layers
	clear  gputypes.Color

	// extent is the target size the uniforms were last written for.
	extent primer.Extent
}

// NewRenderer creates the frame ring, pipelines and meshes described by
// cfg. The text layer's font is baked here when cfg enables it.
func NewRenderer(dev *Device, cfg primer.Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{
		dev:    dev,
		cfg:    cfg,
		frames: NewFrameSync(dev.device, dev.queue, cfg.FramesInFlight),
		layers: cfg.Layers,
		clear: gputypes.Color{
			R: cfg.ClearColor[0],
			G: cfg.ClearColor[1],
			B: cfg.ClearColor[2],
			A: cfg.ClearColor[3],
		},
	}
	if err := r.init(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init() error {
	color, err := NewColorPipeline(r.dev, r.cfg.ShaderFormat)
	if err != nil {
		return err
	}
	r.color = color

	tri := geom.Triangle()
	quad := geom.Quad()
	if r.cfg.Text.UpsideDown {
		tri = tri.FlipY()
		quad = quad.FlipY()
	}
	if r.triangle, err = color.Upload("triangle", tri); err != nil {
		return err
	}
	if r.quad, err = color.Upload("quad", quad); err != nil {
		return err
	}

	if r.cfg.Layers.Text {
		if err := r.initText(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) initText() error {
	face, err := glyph.LoadFaceFile(r.cfg.Text.FontPath, r.cfg.Text.Size)
	if err != nil {
		return err
	}
	r.face = face

	runes := append(glyph.PrintableASCII(), []rune(r.cfg.Text.Content)...)
	atlas, err := glyph.Bake(face, runes, glyph.DefaultAtlasSize, glyph.DefaultAtlasSize)
	if err != nil {
		return fmt.Errorf("bake font atlas: %w", err)
	}
	r.atlas = atlas
	r.shaper = glyph.NewShaper()

	text, err := NewTextPipeline(r.dev, r.cfg.ShaderFormat)
	if err != nil {
		return err
	}
	r.text = text
	if err := text.SetAtlas(atlas); err != nil {
		return err
	}
	return r.SetText(r.cfg.Text.Content)
}

// Device returns the device the renderer draws with.
func (r *Renderer) Device() *Device { return r.dev }

// Frames returns the frame ring. The swapchain waits on it before
// reconfiguring.
func (r *Renderer) Frames() *FrameSync { return r.frames }

// Layers returns the layers drawn by Frame.
func (r *Renderer) Layers() primer.Layers { return r.layers }

// SetLayers changes the layers drawn from the next frame on. The text
// layer is drawn only when the renderer was created with text enabled;
// the overlay only after SetOverlayFont.
func (r *Renderer) SetLayers(l primer.Layers) { r.layers = l }

// SetText lays out s at the configured position and replaces the text
// layer's geometry. Runes missing from the atlas are drawn as '?'.
func (r *Renderer) SetText(s string) error {
	if r.text == nil {
		return fmt.Errorf("set text: %w: renderer has no text layer", primer.ErrInvalidConfig)
	}
	shaped := r.shaper.Shape(r.face, s)
	quads := glyph.Layout(r.atlas, shaped, mgl32.Vec2{float32(r.cfg.Text.X), float32(r.cfg.Text.Y)})

	// The old buffers may still be referenced by frames in flight.
	if err := r.frames.WaitAll(); err != nil {
		return err
	}
	if err := r.text.SetText(quads); err != nil {
		return err
	}
	primer.Logger().Debug("gfx: text laid out", "runes", len(shaped), "quads", len(quads))
	return nil
}

// TextQuads returns the number of glyph quads in the text layer.
func (r *Renderer) TextQuads() int {
	if r.text == nil {
		return 0
	}
	return r.text.QuadCount()
}

// SetOverlayFont creates the overlay pipeline, if needed, and uploads the
// GUI font texture.
func (r *Renderer) SetOverlayFont(width, height int, rgba []byte) error {
	if r.overlay == nil {
		p, err := NewOverlayPipeline(r.dev, r.cfg.ShaderFormat, r.frames.Len())
		if err != nil {
			return err
		}
		r.overlay = p
	}
	return r.overlay.SetFontAtlas(width, height, rgba)
}

// UpdateOverlay sets the GUI geometry drawn by the following frames. The
// list is uploaded into the frame slot being recorded, so it may be
// reused by the caller once Frame returns.
func (r *Renderer) UpdateOverlay(dl overlay.DrawList) {
	r.overlayList = dl
}

// Frame records and submits one frame into view, a target of the given
// extent, and returns the submission index. A zero extent returns
// primer.ErrZeroExtent.
func (r *Renderer) Frame(view hal.TextureView, extent primer.Extent) (uint64, error) {
	if r.frames == nil {
		return 0, primer.ErrClosed
	}
	if extent.IsZero() {
		return 0, primer.ErrZeroExtent
	}
	if err := r.resize(extent); err != nil {
		return 0, err
	}

	enc, err := r.frames.Begin()
	if err != nil {
		return 0, err
	}
	if err := r.uploadOverlay(); err != nil {
		r.frames.Discard()
		return 0, err
	}
	r.encodePass(enc, view, extent)

	index, err := r.frames.Submit()
	if err != nil {
		return 0, err
	}
	return index, nil
}

// resize rewrites the extent-dependent uniforms. Frames in flight read
// them, so it waits for the GPU first.
func (r *Renderer) resize(extent primer.Extent) error {
	if extent == r.extent {
		return nil
	}
	if err := r.frames.WaitAll(); err != nil {
		return err
	}
	if r.text != nil {
		c := r.cfg.Text.Color
		tint := mgl32.Vec4{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
		if err := r.text.SetProjection(extent, r.cfg.Text.UpsideDown, tint); err != nil {
			return fmt.Errorf("write text uniform: %w", err)
		}
	}
	r.extent = extent
	return nil
}

func (r *Renderer) uploadOverlay() error {
	if r.overlay == nil || !r.layers.Overlay {
		return nil
	}
	return r.overlay.Update(r.frames.Current(), r.overlayList)
}

func (r *Renderer) encodePass(enc hal.CommandEncoder, view hal.TextureView, extent primer.Extent) {
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "frame_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: r.clear,
		}},
	})
	rp.SetViewport(0, 0, float32(extent.Width), float32(extent.Height), 0, 1)
	rp.SetScissorRect(0, 0, extent.Width, extent.Height)

	if r.layers.Triangle {
		r.color.Record(rp, r.triangle)
	}
	if r.layers.Quad {
		r.color.Record(rp, r.quad)
	}
	if r.layers.Text && r.text != nil {
		r.text.Record(rp)
	}
	if r.layers.Overlay && r.overlay != nil {
		r.overlay.Record(rp, extent)
	}
	rp.End()
}

// Destroy waits for the GPU and releases everything the renderer created.
// The device is not closed. Safe to call multiple times.
func (r *Renderer) Destroy() {
	if r.frames == nil {
		return
	}
	r.frames.Destroy()
	if r.overlay != nil {
		r.overlay.Destroy()
		r.overlay = nil
	}
	if r.text != nil {
		r.text.Destroy()
		r.text = nil
	}
	if r.face != nil {
		if err := r.face.Close(); err != nil {
			primer.Logger().Warn("gfx: close font face", "err", err)
		}
		r.face = nil
	}
	if r.quad != nil {
		r.quad.Destroy()
		r.quad = nil
	}
	if r.triangle != nil {
		r.triangle.Destroy()
		r.triangle = nil
	}
	if r.color != nil {
		r.color.Destroy()
		r.color = nil
	}
	r.frames = nil
}
