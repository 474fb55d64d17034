// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/glyph"
	"github.com/gogpu/primer/internal/shader"
)

// textUniformSize is the byte size of the text uniform buffer.
// Layout: transform (mat4x4<f32>) = 64 bytes +
// color (vec4<f32>) = 16 bytes = 80 bytes.
const textUniformSize = 80

// TextPipeline draws glyph quads sampled from a single-channel atlas.
//
// Quad positions are in pixels with the origin at the top-left; the
// uniform transform maps them to clip space. The atlas holds coverage
// only, so every glyph is tinted with the uniform color.
type TextPipeline struct {
	device hal.Device
	queue  hal.Queue

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
	sampler       hal.Sampler

	uniformBuf hal.Buffer

	// Atlas texture and the bind group referencing it. Both are replaced
	// by SetAtlas.
	atlasTex  hal.Texture
	atlasView hal.TextureView
	bindGroup hal.BindGroup

	vertBuf    hal.Buffer
	idxBuf     hal.Buffer
	indexCount uint32
}

// NewTextPipeline compiles the text shader and creates the pipeline,
// sampler and uniform buffer. SetAtlas must be called before Record draws
// anything.
func NewTextPipeline(dev *Device, format primer.ShaderFormat) (*TextPipeline, error) {
	p := &TextPipeline{device: dev.device, queue: dev.queue}
	if err := p.createPipeline(format, dev.format); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *TextPipeline) createPipeline(format primer.ShaderFormat, target gputypes.TextureFormat) error {
	src, err := shader.Module(format, shader.Text)
	if err != nil {
		return err
	}
	sm, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "text_shader",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("compile text shader: %w", err)
	}
	p.shader = sm

	// Bind group layout:
	//   Binding 0: TextUniforms (uniform buffer, vertex+fragment)
	//   Binding 1: glyph atlas (texture_2d, fragment)
	//   Binding 2: Sampler (fragment)
	uniformLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "text_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
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
		return fmt.Errorf("create text uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "text_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create text pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := p.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "text_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create text sampler: %w", err)
	}
	p.sampler = sampler

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "text_uniform",
		Size:  textUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create text uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	blend := gputypes.BlendStateAlpha()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "text_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: shader.VertexEntry,
			Buffers:    glyph.QuadVertexLayout(),
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
		return fmt.Errorf("create text pipeline: %w", err)
	}
	p.pipeline = pipeline

	primer.Logger().Debug("gfx: text pipeline created", "format", target.String())
	return nil
}

// SetAtlas uploads the atlas bitmap as an R8Unorm texture and rebuilds the
// bind group around it.
func (p *TextPipeline) SetAtlas(atlas *glyph.Atlas) error {
	if p.device == nil {
		return primer.ErrClosed
	}
	w, h := uint32(atlas.Width()), uint32(atlas.Height()) //nolint:gosec // atlas sizes are small and positive

	tex, err := p.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "text_atlas",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatR8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create atlas texture: %w", err)
	}

	err = p.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		atlas.Pixels(),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(atlas.Image.Stride), RowsPerImage: h}, //nolint:gosec // stride is positive
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	if err != nil {
		p.device.DestroyTexture(tex)
		return fmt.Errorf("upload atlas: %w", err)
	}

	view, err := p.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "text_atlas_view",
		Format:          gputypes.TextureFormatR8Unorm,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		p.device.DestroyTexture(tex)
		return fmt.Errorf("create atlas view: %w", err)
	}

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "text_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: textUniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: p.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		p.device.DestroyTextureView(view)
		p.device.DestroyTexture(tex)
		return fmt.Errorf("create text bind group: %w", err)
	}

	p.destroyAtlas()
	p.atlasTex = tex
	p.atlasView = view
	p.bindGroup = bindGroup

	primer.Logger().Debug("gfx: text atlas uploaded", "size", fmt.Sprintf("%dx%d", w, h), "glyphs", len(atlas.Glyphs))
	return nil
}

// SetText replaces the quads drawn by Record. An empty slice draws
// nothing.
func (p *TextPipeline) SetText(quads []glyph.Quad) error {
	if p.device == nil {
		return primer.ErrClosed
	}
	if len(quads) > glyph.MaxQuads {
		return fmt.Errorf("%w: %d > %d", ErrTooManyQuads, len(quads), glyph.MaxQuads)
	}
	p.destroyQuads()
	if len(quads) == 0 {
		return nil
	}

	vb, err := createAndUploadBuffer(p.device, p.queue, "text_verts", glyph.QuadVertexBytes(quads), gputypes.BufferUsageVertex)
	if err != nil {
		return err
	}
	ib, err := createAndUploadBuffer(p.device, p.queue, "text_indices", glyph.QuadIndexBytes(len(quads)), gputypes.BufferUsageIndex)
	if err != nil {
		p.device.DestroyBuffer(vb)
		return err
	}
	p.vertBuf = vb
	p.idxBuf = ib
	p.indexCount = uint32(len(quads) * 6) //nolint:gosec // bounded by MaxQuads
	return nil
}

// QuadCount returns the number of quads set by SetText.
func (p *TextPipeline) QuadCount() int { return int(p.indexCount / 6) }

// SetProjection writes the pixel-to-clip transform for a target of the
// given extent, and the tint color. With upsideDown the vertical axis is
// mirrored, so text laid out from the top edge is drawn inverted from the
// bottom edge.
func (p *TextPipeline) SetProjection(extent primer.Extent, upsideDown bool, color mgl32.Vec4) error {
	if p.device == nil {
		return primer.ErrClosed
	}
	return p.queue.WriteBuffer(p.uniformBuf, 0, textUniform(extent, upsideDown, color))
}

// TextProjection returns the orthographic transform mapping pixel
// coordinates (+Y down) to clip space (+Y up).
func TextProjection(extent primer.Extent, upsideDown bool) mgl32.Mat4 {
	w, h := float32(extent.Width), float32(extent.Height)
	if upsideDown {
		return mgl32.Ortho2D(0, w, 0, h)
	}
	return mgl32.Ortho2D(0, w, h, 0)
}

func textUniform(extent primer.Extent, upsideDown bool, color mgl32.Vec4) []byte {
	buf := make([]byte, textUniformSize)
	m := TextProjection(extent, upsideDown)
	// mgl32 matrices are column-major, as WGSL expects.
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range color {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	return buf
}

// Record draws the current text into an open render pass. It does nothing
// until both an atlas and quads are set.
func (p *TextPipeline) Record(rp hal.RenderPassEncoder) {
	if p.bindGroup == nil || p.indexCount == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.vertBuf, 0)
	rp.SetIndexBuffer(p.idxBuf, gputypes.IndexFormatUint16, 0)
	rp.DrawIndexed(p.indexCount, 1, 0, 0, 0)
}

func (p *TextPipeline) destroyQuads() {
	if p.idxBuf != nil {
		p.device.DestroyBuffer(p.idxBuf)
		p.idxBuf = nil
	}
	if p.vertBuf != nil {
		p.device.DestroyBuffer(p.vertBuf)
		p.vertBuf = nil
	}
	p.indexCount = 0
}

func (p *TextPipeline) destroyAtlas() {
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.atlasView != nil {
		p.device.DestroyTextureView(p.atlasView)
		p.atlasView = nil
	}
	if p.atlasTex != nil {
		p.device.DestroyTexture(p.atlasTex)
		p.atlasTex = nil
	}
}

// Destroy releases all GPU resources held by the pipeline in reverse
// creation order. Safe to call multiple times.
func (p *TextPipeline) Destroy() {
	if p.device == nil {
		return
	}
	p.destroyQuads()
	p.destroyAtlas()
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
