// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
)

// FromProvider wraps the device of a host application, such as a gogpu
// App, that owns the window, surface and device. The provider must expose
// its HAL device and queue, either directly through HalDevice() any and
// HalQueue() any or through the wgpu device returned by Device(). Close
// does not destroy them.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	if provider == nil {
		return nil, primer.ErrNoDevice
	}
	device, queue, err := halFromProvider(provider)
	if err != nil {
		return nil, err
	}

	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = DefaultSurfaceFormat
	}
	info := provider.AdapterInfo()
	primer.Logger().Info("gfx: using host device",
		"adapter", info.Name,
		"format", format.String())

	return &Device{
		device: device,
		queue:  queue,
		format: format,
	}, nil
}

func halFromProvider(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if hp, ok := provider.(halProvider); ok {
		device, ok := hp.HalDevice().(hal.Device)
		if !ok || device == nil {
			return nil, nil, fmt.Errorf("%w: HalDevice is %T", ErrNoHAL, hp.HalDevice())
		}
		queue, ok := hp.HalQueue().(hal.Queue)
		if !ok || queue == nil {
			return nil, nil, fmt.Errorf("%w: HalQueue is %T", ErrNoHAL, hp.HalQueue())
		}
		return device, queue, nil
	}

	type wgpuDevice interface {
		HalDevice() hal.Device
		HalQueue() hal.Queue
	}
	switch d := provider.Device().(type) {
	case wgpuDevice:
		device, queue := d.HalDevice(), d.HalQueue()
		if device == nil || queue == nil {
			return nil, nil, fmt.Errorf("%w: device released", ErrNoHAL)
		}
		return device, queue, nil
	case hal.Device:
		queue, ok := provider.Queue().(hal.Queue)
		if !ok || queue == nil {
			return nil, nil, fmt.Errorf("%w: queue is %T", ErrNoHAL, provider.Queue())
		}
		return d, queue, nil
	default:
		return nil, nil, fmt.Errorf("%w: device is %T", ErrNoHAL, d)
	}
}

// HostView returns the HAL view behind a surface view handed out by a
// host application. It accepts a hal.TextureView, a *wgpu.TextureView, or
// a gpucontext.TextureView wrapping a *wgpu.TextureView.
func HostView(view any) (hal.TextureView, error) {
	switch v := view.(type) {
	case hal.TextureView:
		return v, nil
	case *wgpu.TextureView:
		if v == nil {
			break
		}
		if hv := v.HalTextureView(); hv != nil {
			return hv, nil
		}
	case gpucontext.TextureView:
		if v.IsNil() {
			break
		}
		return HostView((*wgpu.TextureView)(v.Pointer()))
	}
	return nil, fmt.Errorf("%w: surface view is %T", ErrNoHAL, view)
}
