// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gfx brings up a GPU device through the wgpu HAL and renders the
// drawing layers (colored meshes, bitmap text, GUI overlay) into a
// swapchain image or an offscreen texture.
//
// Architecture:
//
//	Instance     loads a HAL backend (Vulkan, or noop in tests)
//	Device       picks an adapter and opens the logical device
//	Swapchain    configures the window surface and recreates it on resize
//	FrameSync    bounds frames in flight by queue submission index
//	Renderer     owns the pipelines and records one render pass per frame
//
// All types are single-threaded: they must be used from the goroutine that
// drives the render loop.
package gfx
