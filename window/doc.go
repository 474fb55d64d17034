// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package window hosts the tutorial programs on a gogpu App. gogpu owns
// the window, the surface and the device; every frame the session draws
// into the surface view gogpu acquired, through a host swapchain that
// keeps the frames-in-flight and resize bookkeeping.
//
// Input arrives through the App's gpucontext event source. The GUI
// overlay is the built-in overlay.GUI unless the program is built with
// the imgui tag, which selects the cgo imgui implementation.
//
// gogpu's pure Go backends load their libraries through goffi. On Linux
// build with CGO_ENABLED=0; the imgui tag therefore needs a platform
// where goffi supports cgo builds, such as Windows.
package window
