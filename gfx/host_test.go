// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
)

// hostProvider is a gpucontext.DeviceProvider in the shape of a host
// application: Device and Queue hold opaque values and the HAL objects
// are reached through HalDevice and HalQueue.
type hostProvider struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
}

func (p *hostProvider) Device() gpucontext.Device { return struct{}{} }
func (p *hostProvider) Queue() gpucontext.Queue { return struct{}{} }
func (p *hostProvider) Adapter() gpucontext.Adapter { return nil }
func (p *hostProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }
func (p *hostProvider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{Name: "host"} }
func (p *hostProvider) HalDevice() any { return p.device }
func (p *hostProvider) HalQueue() any { return p.queue }

// plainProvider exposes nothing beyond gpucontext.DeviceProvider.
type plainProvider struct {
	device gpucontext.Device
	queue  gpucontext.Queue
}

func (p *plainProvider) Device() gpucontext.Device { return p.device }
func (p *plainProvider) Queue() gpucontext.Queue { return p.queue }
func (p *plainProvider) Adapter() gpucontext.Adapter { return nil }
func (p *plainProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (p *plainProvider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

func TestFromProvider(t *testing.T) {
	_, owner := openNoop(t)

	dev, err := FromProvider(&hostProvider{
		device: owner.HalDevice(),
		queue:  owner.HalQueue(),
		format: gputypes.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		t.Fatalf("FromProvider error = %v", err)
	}
	if dev.HalDevice() != owner.HalDevice() || dev.HalQueue() != owner.HalQueue() {
		t.Error("host device and queue not passed through")
	}
	if dev.SurfaceFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SurfaceFormat() = %v, want RGBA8Unorm", dev.SurfaceFormat())
	}

	// The host keeps ownership: closing the wrapper leaves the device usable.
	dev.Close()
	if err := owner.WaitIdle(); err != nil {
		t.Errorf("owner WaitIdle after wrapper Close error = %v", err)
	}
}

func TestFromProviderHALValues(t *testing.T) {
	_, owner := openNoop(t)

	dev, err := FromProvider(&plainProvider{device: owner.HalDevice(), queue: owner.HalQueue()})
	if err != nil {
		t.Fatalf("FromProvider error = %v", err)
	}
	if dev.SurfaceFormat() != DefaultSurfaceFormat {
		t.Errorf("SurfaceFormat() = %v, want default", dev.SurfaceFormat())
	}
}

func TestFromProviderErrors(t *testing.T) {
	_, owner := openNoop(t)
	tests := []struct {
		name     string
		provider gpucontext.DeviceProvider
		want     error
	}{
		{"nil", nil, primer.ErrNoDevice},
		{"opaque device", &plainProvider{device: "device"}, ErrNoHAL},
		{"missing queue", &plainProvider{device: owner.HalDevice()}, ErrNoHAL},
		{"nil hal device", &hostProvider{queue: owner.HalQueue()}, ErrNoHAL},
		{"nil hal queue", &hostProvider{device: owner.HalDevice()}, ErrNoHAL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromProvider(tt.provider); !errors.Is(err, tt.want) {
				t.Errorf("FromProvider error = %v, want %v", err, tt.want)
			}
		})
	}
}

// newTestView creates a small render target view released at cleanup.
func newTestView(t *testing.T, dev *Device) hal.TextureView {
	t.Helper()
	hd := dev.HalDevice()
	tex, err := hd.CreateTexture(&hal.TextureDescriptor{
		Label:         "host_view",
		Size:          hal.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        DefaultSurfaceFormat,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatal(err)
	}
	view, err := hd.CreateTextureView(tex, &hal.TextureViewDescriptor{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		hd.DestroyTextureView(view)
		hd.DestroyTexture(tex)
	})
	return view
}

func TestHostView(t *testing.T) {
	_, dev := openNoop(t)
	view := newTestView(t, dev)

	got, err := HostView(view)
	if err != nil || got != view {
		t.Errorf("HostView(hal view) = %v, %v", got, err)
	}

	for _, v := range []any{
		nil,
		"view",
		(*wgpu.TextureView)(nil),
		&wgpu.TextureView{},
		gpucontext.TextureView{},
		gpucontext.NewTextureView(unsafe.Pointer(&wgpu.TextureView{})),
	} {
		if _, err := HostView(v); !errors.Is(err, ErrNoHAL) {
			t.Errorf("HostView(%T) error = %v, want ErrNoHAL", v, err)
		}
	}
}
