// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/geom"
	"github.com/gogpu/primer/internal/shader"
)

// ColorPipeline draws vertex-colored geometry. It has no bind groups: the
// vertex shader passes clip-space positions straight through.
type ColorPipeline struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// NewColorPipeline compiles the color shader and creates the pipeline for
// render targets of the device's surface format.
func NewColorPipeline(dev *Device, format primer.ShaderFormat) (*ColorPipeline, error) {
	p := &ColorPipeline{device: dev.device, queue: dev.queue}
	if err := p.createPipeline(format, dev.format); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *ColorPipeline) createPipeline(format primer.ShaderFormat, target gputypes.TextureFormat) error {
	src, err := shader.Module(format, shader.Color)
	if err != nil {
		return err
	}
	sm, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "color_shader",
		Source: src,
	})
	if err != nil {
		return fmt.Errorf("compile color shader: %w", err)
	}
	p.shader = sm

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "color_pipe_layout",
	})
	if err != nil {
		return fmt.Errorf("create color pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "color_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: shader.VertexEntry,
			Buffers:    geom.VertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: shader.FragmentEntry,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    target,
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
		return fmt.Errorf("create color pipeline: %w", err)
	}
	p.pipeline = pipeline

	primer.Logger().Debug("gfx: color pipeline created", "format", target.String())
	return nil
}

// MeshBuffer holds the GPU copy of a geom.Mesh.
type MeshBuffer struct {
	device   hal.Device
	vertices hal.Buffer
	indices  hal.Buffer
	count    uint32
}

// Upload copies mesh into new vertex (and, for indexed meshes, index)
// buffers.
func (p *ColorPipeline) Upload(label string, mesh geom.Mesh) (*MeshBuffer, error) {
	if p.device == nil {
		return nil, primer.ErrClosed
	}
	if mesh.VertexCount() == 0 {
		return nil, fmt.Errorf("upload %s: empty mesh", label)
	}
	vb, err := createAndUploadBuffer(p.device, p.queue, label+"_verts", mesh.VertexBytes(), gputypes.BufferUsageVertex)
	if err != nil {
		return nil, err
	}
	mb := &MeshBuffer{device: p.device, vertices: vb, count: mesh.DrawCount()}

	if mesh.Indexed() {
		ib, err := createAndUploadBuffer(p.device, p.queue, label+"_indices", mesh.IndexBytes(), gputypes.BufferUsageIndex)
		if err != nil {
			mb.Destroy()
			return nil, err
		}
		mb.indices = ib
	}
	return mb, nil
}

// Indexed reports whether the mesh is drawn with DrawIndexed.
func (m *MeshBuffer) Indexed() bool { return m.indices != nil }

// Count returns the number of vertices or indices drawn.
func (m *MeshBuffer) Count() uint32 { return m.count }

// Destroy releases the buffers. Safe to call multiple times.
func (m *MeshBuffer) Destroy() {
	if m.indices != nil {
		m.device.DestroyBuffer(m.indices)
		m.indices = nil
	}
	if m.vertices != nil {
		m.device.DestroyBuffer(m.vertices)
		m.vertices = nil
	}
}

// Record draws mesh into an open render pass.
func (p *ColorPipeline) Record(rp hal.RenderPassEncoder, mesh *MeshBuffer) {
	if p.pipeline == nil || mesh == nil || mesh.vertices == nil || mesh.count == 0 {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetVertexBuffer(0, mesh.vertices, 0)
	if mesh.indices != nil {
		rp.SetIndexBuffer(mesh.indices, gputypes.IndexFormatUint16, 0)
		rp.DrawIndexed(mesh.count, 1, 0, 0, 0)
		return
	}
	rp.Draw(mesh.count, 1, 0, 0)
}

// Destroy releases all GPU resources held by the pipeline in reverse
// creation order. Safe to call multiple times.
func (p *ColorPipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
	p.device = nil
	p.queue = nil
}
