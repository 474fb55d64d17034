// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
)

// InstanceOptions configures NewInstance.
type InstanceOptions struct {
	// Backend is the HAL backend to load. It must be registered by
	// importing its package, e.g. github.com/gogpu/wgpu/hal/vulkan.
	// gputypes.BackendEmpty selects github.com/gogpu/wgpu/hal/noop.
	Backend gputypes.Backend

	// Debug enables the backend's debug and validation layers.
	Debug bool
}

// DefaultInstanceOptions selects Vulkan without validation.
func DefaultInstanceOptions() InstanceOptions {
	return InstanceOptions{Backend: gputypes.BackendVulkan}
}

// Instance is a loaded HAL backend.
type Instance struct {
	backend  gputypes.Backend
	instance hal.Instance
}

// NewInstance loads the backend named in opts and creates a HAL instance.
func NewInstance(opts InstanceOptions) (*Instance, error) {
	backend, ok := hal.GetBackend(opts.Backend)
	if !ok {
		return nil, fmt.Errorf("%w: %s (registered: %v)", ErrBackendUnavailable, opts.Backend, hal.AvailableBackends())
	}

	desc := &hal.InstanceDescriptor{
		Backends: backendMask(opts.Backend),
	}
	if opts.Debug {
		desc.Flags = gputypes.InstanceFlagsDebug | gputypes.InstanceFlagsValidation
	}

	instance, err := backend.CreateInstance(desc)
	if err != nil {
		return nil, fmt.Errorf("create %s instance: %w", opts.Backend, err)
	}

	primer.Logger().Debug("gfx: instance created", "backend", opts.Backend.String(), "debug", opts.Debug)
	return &Instance{backend: opts.Backend, instance: instance}, nil
}

// backendMask returns the instance backend set enabling only b. The noop
// backend ignores the mask, so BackendEmpty maps to the empty set.
func backendMask(b gputypes.Backend) gputypes.Backends {
	if b == gputypes.BackendEmpty {
		return gputypes.BackendsNone
	}
	return gputypes.Backends(1) << b
}

// Backend returns the backend the instance was created with.
func (i *Instance) Backend() gputypes.Backend { return i.backend }

// HalInstance returns the underlying HAL instance.
func (i *Instance) HalInstance() hal.Instance { return i.instance }

// CreateSurface creates a presentation surface for a native window.
// On Linux displayHandle is the X11 Display* and windowHandle the X11
// Window; on Windows displayHandle is the HINSTANCE and windowHandle the
// HWND.
func (i *Instance) CreateSurface(displayHandle, windowHandle uintptr) (hal.Surface, error) {
	if i.instance == nil {
		return nil, primer.ErrClosed
	}
	surface, err := i.instance.CreateSurface(displayHandle, windowHandle)
	if err != nil {
		return nil, fmt.Errorf("create surface: %w", err)
	}
	return surface, nil
}

// Destroy releases the instance. Surfaces and devices created from it
// must be destroyed first. Safe to call multiple times.
func (i *Instance) Destroy() {
	if i.instance == nil {
		return
	}
	i.instance.Destroy()
	i.instance = nil
}
