// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
)

// DefaultSurfaceFormat is the color format used for swapchain images and
// offscreen targets when the surface does not restrict it.
const DefaultSurfaceFormat = gputypes.TextureFormatBGRA8Unorm

// Device is an opened logical GPU device and its queue.
type Device struct {
	adapter hal.Adapter
	info    gputypes.AdapterInfo
	device  hal.Device
	queue   hal.Queue
	format  gputypes.TextureFormat

	// owned is false for devices wrapped with NewDevice.
	owned bool
}

var _ gpucontext.DeviceProvider = (*Device)(nil)

// OpenDevice picks an adapter from the instance and opens it with default
// limits. Discrete GPUs are preferred over integrated ones; anything else
// is used only when nothing better exists. surfaceHint may be nil for
// headless use; when set, the adapter must be able to present to it and
// the surface format is taken from its capabilities.
func OpenDevice(instance *Instance, surfaceHint hal.Surface) (*Device, error) {
	if instance == nil || instance.instance == nil {
		return nil, primer.ErrClosed
	}

	adapters := instance.instance.EnumerateAdapters(surfaceHint)
	idx := selectAdapter(adapters)
	if idx < 0 {
		return nil, ErrNoAdapter
	}
	exposed := adapters[idx]

	open, err := exposed.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("open adapter %q: %w", exposed.Info.Name, err)
	}

	format := DefaultSurfaceFormat
	if surfaceHint != nil {
		format = chooseSurfaceFormat(exposed.Adapter.SurfaceCapabilities(surfaceHint))
	}

	primer.Logger().Info("gfx: device opened",
		"adapter", exposed.Info.Name,
		"type", exposed.Info.DeviceType.String(),
		"backend", exposed.Info.Backend.String(),
		"driver", exposed.Info.Driver,
		"format", format.String())

	return &Device{
		adapter: exposed.Adapter,
		info:    exposed.Info,
		device:  open.Device,
		queue:   open.Queue,
		format:  format,
		owned:   true,
	}, nil
}

// NewDevice wraps a device and queue owned by someone else. Close does
// not destroy them.
func NewDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{
		device: device,
		queue:  queue,
		format: DefaultSurfaceFormat,
	}
}

// selectAdapter returns the index of the preferred adapter, or -1.
func selectAdapter(adapters []hal.ExposedAdapter) int {
	best, bestRank := -1, 0
	for i, a := range adapters {
		r := adapterRank(a.Info.DeviceType)
		if best < 0 || r < bestRank {
			best, bestRank = i, r
		}
	}
	return best
}

func adapterRank(t gputypes.DeviceType) int {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return 0
	case gputypes.DeviceTypeIntegratedGPU:
		return 1
	default:
		return 2
	}
}

// chooseSurfaceFormat prefers BGRA8Unorm, then RGBA8Unorm, then whatever
// the surface lists first.
func chooseSurfaceFormat(caps *hal.SurfaceCapabilities) gputypes.TextureFormat {
	if caps == nil || len(caps.Formats) == 0 {
		return DefaultSurfaceFormat
	}
	for _, want := range []gputypes.TextureFormat{
		gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatRGBA8Unorm,
	} {
		for _, f := range caps.Formats {
			if f == want {
				return f
			}
		}
	}
	return caps.Formats[0]
}

// HalDevice returns the HAL device.
func (d *Device) HalDevice() hal.Device { return d.device }

// HalQueue returns the HAL queue.
func (d *Device) HalQueue() hal.Queue { return d.queue }

// HalAdapter returns the adapter, or nil for wrapped devices.
func (d *Device) HalAdapter() hal.Adapter { return d.adapter }

// Device implements gpucontext.DeviceProvider. The value is a hal.Device.
func (d *Device) Device() gpucontext.Device { return d.device }

// Queue implements gpucontext.DeviceProvider. The value is a hal.Queue.
func (d *Device) Queue() gpucontext.Queue { return d.queue }

// Adapter implements gpucontext.DeviceProvider. The value is a
// hal.Adapter, or nil for wrapped devices.
func (d *Device) Adapter() gpucontext.Adapter { return d.adapter }

// SurfaceFormat implements gpucontext.DeviceProvider.
func (d *Device) SurfaceFormat() gputypes.TextureFormat { return d.format }

// AdapterInfo implements gpucontext.DeviceProvider.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{
		Name: d.info.Name,
		Type: adapterType(d.info.DeviceType),
	}
}

func adapterType(t gputypes.DeviceType) gpucontext.AdapterType {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		return gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		return gpucontext.AdapterTypeSoftware
	default:
		return gpucontext.AdapterTypeUnknown
	}
}

// WaitIdle blocks until the GPU has finished all submitted work.
func (d *Device) WaitIdle() error {
	if d.device == nil {
		return primer.ErrClosed
	}
	if err := d.device.WaitIdle(); err != nil {
		return fmt.Errorf("wait idle: %w", err)
	}
	return nil
}

// Close waits for the GPU and destroys the device and adapter when they
// were opened by OpenDevice. Safe to call multiple times.
func (d *Device) Close() {
	if d.device == nil {
		return
	}
	if err := d.device.WaitIdle(); err != nil {
		primer.Logger().Warn("gfx: wait idle before close", "err", err)
	}
	if d.owned {
		d.device.Destroy()
		if d.adapter != nil {
			d.adapter.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	d.adapter = nil
}
