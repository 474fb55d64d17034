// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"errors"
	"fmt"

	"github.com/gogpu/primer"
)

var (
	// ErrBackendUnavailable is returned when the requested HAL backend is
	// not compiled in or not registered.
	ErrBackendUnavailable = errors.New("gfx: backend unavailable")

	// ErrNoAdapter is returned when the instance exposes no adapters.
	ErrNoAdapter = fmt.Errorf("%w: no adapter found", primer.ErrNoDevice)

	// ErrFrameTimeout is returned when a frame slot's previous submission
	// does not complete within FrameTimeout.
	ErrFrameTimeout = errors.New("gfx: timed out waiting for frame")

	// ErrNotRecording is returned by FrameSync.Submit without a matching
	// Begin.
	ErrNotRecording = errors.New("gfx: no frame is being recorded")

	// ErrNoHAL is returned when a host device or surface view does not
	// expose the HAL objects underneath it.
	ErrNoHAL = errors.New("gfx: host does not expose HAL types")

	// ErrHostSurface is returned by Swapchain.Acquire on a host swapchain,
	// whose images come from Attach.
	ErrHostSurface = errors.New("gfx: surface is owned by the host")

	// ErrTooManyQuads is returned when text exceeds the uint16 index range.
	ErrTooManyQuads = errors.New("gfx: too many text quads")
)
