// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
)

// copyPitchAlignment is the BytesPerRow alignment texture-to-buffer copies
// require.
const copyPitchAlignment = 256

// Snapshot renders one frame into an offscreen texture of the given extent
// and reads it back. It needs no window, so it works on headless
// machines.
func (r *Renderer) Snapshot(extent primer.Extent) (*image.RGBA, error) {
	if r.frames == nil {
		return nil, primer.ErrClosed
	}
	if extent.IsZero() {
		return nil, primer.ErrZeroExtent
	}
	device := r.dev.device
	w, h := extent.Width, extent.Height

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "snapshot_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        r.dev.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create snapshot texture: %w", err)
	}
	defer device.DestroyTexture(tex)

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           "snapshot_view",
		Format:          r.dev.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create snapshot view: %w", err)
	}
	defer device.DestroyTextureView(view)

	// WebGPU (and DX12) requires BytesPerRow aligned to 256 bytes.
	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "snapshot_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	if err := r.resize(extent); err != nil {
		return nil, err
	}
	enc, err := r.frames.Begin()
	if err != nil {
		return nil, err
	}
	if err := r.uploadOverlay(); err != nil {
		r.frames.Discard()
		return nil, err
	}
	r.encodePass(enc, view, extent)

	// The render pass leaves the texture in attachment layout;
	// CopyTextureToBuffer needs it as a copy source.
	enc.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	enc.CopyTextureToBuffer(tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: tex, MipLevel: 0, Aspect: gputypes.TextureAspectAll},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	index, err := r.frames.Submit()
	if err != nil {
		return nil, err
	}
	if err := r.frames.Wait(index); err != nil {
		return nil, err
	}

	mapping, err := device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	data := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for y := range int(h) {
		src := data[y*int(alignedBytesPerRow) : y*int(alignedBytesPerRow)+int(bytesPerRow)]
		copy(img.Pix[y*img.Stride:], src)
	}
	if err := device.UnmapBuffer(staging); err != nil {
		primer.Logger().Warn("gfx: unmap staging buffer", "err", err)
	}

	if r.dev.format == gputypes.TextureFormatBGRA8Unorm {
		convertBGRAToRGBA(img.Pix)
	}
	return img, nil
}

// convertBGRAToRGBA swaps the red and blue channels in place.
func convertBGRAToRGBA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
