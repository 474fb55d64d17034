// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/internal/shader"
	"github.com/gogpu/primer/overlay"
)

// overlayUniformSize is the byte size of the overlay uniform buffer.
// Layout: scale (vec2<f32>) = 8 bytes + translate (vec2<f32>) = 8 bytes.
const overlayUniformSize = 16

// overlayFrame holds the geometry of one frame slot. Slots are rewritten
// only after FrameSync has retired them.
type overlayFrame struct {
	vertices dynamicBuffer
	indices  dynamicBuffer
}

// OverlayPipeline draws imgui draw lists: alpha-blended, textured,
// vertex-colored triangles clipped by a scissor rectangle per command.
type OverlayPipeline struct {
	device hal.Device
	queue  hal.Queue

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
	sampler       hal.Sampler
	uniformBuf    hal.Buffer

	fontTex   hal.Texture
	fontView  hal.TextureView
	bindGroup hal.BindGroup

	frames []overlayFrame

	// State of the last Update.
	slot        int
	commands    []overlay.Command
	indexFormat gputypes.IndexFormat
	display     [2]float32
}

// NewOverlayPipeline creates the pipeline with geometry buffers for slots
// frames in flight.
func NewOverlayPipeline(dev *Device, format primer.ShaderFormat, slots int) (*OverlayPipeline, error) {
	p := &OverlayPipeline{
		device: dev.device,
		queue:  dev.queue,
		frames: make([]overlayFrame, max(slots, 1)),
	}
	for i := range p.frames {
		p.frames[i].vertices = dynamicBuffer{
			label: fmt.Sprintf("overlay_verts_%d", i),
			usage: gputypes.BufferUsageVertex,
		}
		p.frames[i].indices = dynamicBuffer{
			label: fmt.Sprintf("overlay_indices_%d", i),
			usage: gputypes.BufferUsageIndex,
		}
	}
	if err := p.createPipeline(format, dev.format); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *OverlayPipeline) createPipeline(format primer.ShaderFormat, target gputypes.TextureFormat) error {
	src, err := shader.Module(format, shader.Overlay)
	if err != nil {
		return err
	}
	sm, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "overlay_shader",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("compile overlay shader: %w", err)
	}
	p.shader = sm

	// Bind group layout:
	//   Binding 0: OverlayUniforms (uniform buffer, vertex)
	//   Binding 1: font texture (texture_2d, fragment)
	//   Binding 2: Sampler (fragment)
	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "overlay_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create overlay uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "overlay_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create overlay pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "overlay_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create overlay sampler: %w", err)
	}
	p.sampler = sampler

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "overlay_uniform",
		Size:  overlayUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create overlay uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	blend := gputypes.BlendStateAlpha()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "overlay_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: shader.VertexEntry,
			Buffers:    overlay.VertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: shader.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    target,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create overlay pipeline: %w", err)
	}
	p.pipeline = pipeline

	primer.Logger().Debug("gfx: overlay pipeline created", "format", target.String(), "slots", len(p.frames))
	return nil
}

// SetFontAtlas uploads the imgui font texture (tightly packed RGBA8) and
// rebuilds the bind group around it.
func (p *OverlayPipeline) SetFontAtlas(width, height int, rgba []byte) error {
	if p.device == nil {
		return primer.ErrClosed
	}
	if width <= 0 || height <= 0 || len(rgba) != width*height*4 {
		return fmt.Errorf("font atlas: %dx%d with %d bytes", width, height, len(rgba))
	}
	w, h := uint32(width), uint32(height) //nolint:gosec // checked positive above

	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "overlay_font",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create font texture: %w", err)
	}

	err = p.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		rgba,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		p.device.DestroyTexture(tex)
		return fmt.Errorf("upload font texture: %w", err)
	}

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "overlay_font_view",
		Format:          gputypes.TextureFormatRGBA8Unorm,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		p.device.DestroyTexture(tex)
		return fmt.Errorf("create font view: %w", err)
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "overlay_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: overlayUniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		p.device.DestroyTextureView(view)
		p.device.DestroyTexture(tex)
		return fmt.Errorf("create overlay bind group: %w", err)
	}

	p.destroyFont()
	p.fontTex = tex
	p.fontView = view
	p.bindGroup = bindGroup
	return nil
}

// Update uploads dl into the buffers of frame slot and makes it the list
// Record draws. The slot must not be in use by the GPU.
func (p *OverlayPipeline) Update(slot int, dl overlay.DrawList) error {
	if p.device == nil {
		return primer.ErrClosed
	}
	slot %= len(p.frames)
	p.slot = slot
	p.commands = p.commands[:0]
	if dl.Empty() {
		return nil
	}

	f := &p.frames[slot]
	if err := f.vertices.write(p.device, p.queue, dl.Vertices); err != nil {
		return err
	}
	if err := f.indices.write(p.device, p.queue, dl.Indices); err != nil {
		return err
	}

	if display := [2]float32{dl.Width, dl.Height}; display != p.display {
		if err := p.queue.WriteBuffer(p.uniformBuf, 0, overlayUniform(dl.Width, dl.Height)); err != nil {
			return fmt.Errorf("write overlay uniform: %w", err)
		}
		p.display = display
	}

	p.commands = append(p.commands, dl.Commands...)
	p.indexFormat = dl.IndexFormat
	return nil
}

// overlayUniform maps imgui pixels (origin top-left, +Y down) to clip
// space (+Y up).
func overlayUniform(width, height float32) []byte {
	buf := make([]byte, overlayUniformSize)
	vals := [4]float32{2 / width, -2 / height, -1, 1}
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// CommandCount returns the number of draw commands Record will issue at
// most.
func (p *OverlayPipeline) CommandCount() int { return len(p.commands) }

// Record draws the last updated list into an open render pass whose
// target has the given extent. Commands for textures other than the font
// atlas are skipped.
func (p *OverlayPipeline) Record(rp hal.RenderPassEncoder, extent primer.Extent) {
	if p.bindGroup == nil || len(p.commands) == 0 || extent.IsZero() {
		return
	}
	f := &p.frames[p.slot]
	if f.vertices.buf == nil || f.indices.buf == nil {
		return
	}

	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, f.vertices.buf, 0)
	rp.SetIndexBuffer(f.indices.buf, p.indexFormat, 0)

	bounds := image.Rect(0, 0, int(extent.Width), int(extent.Height))
	for _, c := range p.commands {
		if c.TextureID != overlay.FontTextureID {
			continue
		}
		clip := c.Clip.Intersect(bounds)
		if clip.Empty() {
			continue
		}
		//nolint:gosec // clip is inside bounds, so non-negative
		rp.SetScissorRect(uint32(clip.Min.X), uint32(clip.Min.Y), uint32(clip.Dx()), uint32(clip.Dy()))
		rp.DrawIndexed(c.ElementCount, 1, c.FirstIndex, c.VertexOffset, 0)
	}
	rp.SetScissorRect(0, 0, extent.Width, extent.Height)
}

func (p *OverlayPipeline) destroyFont() {
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.fontView != nil {
		p.device.DestroyTextureView(p.fontView)
		p.fontView = nil
	}
	if p.fontTex != nil {
		p.device.DestroyTexture(p.fontTex)
		p.fontTex = nil
	}
}

// Destroy releases all GPU resources held by the pipeline in reverse
// creation order. Safe to call multiple times.
func (p *OverlayPipeline) Destroy() {
	if p.device == nil {
		return
	}
	for i := range p.frames {
		p.frames[i].indices.destroy(p.device)
		p.frames[i].vertices.destroy(p.device)
	}
	p.commands = nil
	p.destroyFont()
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.sampler != nil {
		p.device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
	p.device = nil
	p.queue = nil
}
