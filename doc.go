// Package primer holds the configuration and logging shared by a set of
// small GPU tutorial programs.
//
// Each program in cmd/ opens a gogpu window, renders through the pure-Go
// wgpu HAL, builds a minimal pipeline and draws a colored
// triangle. Variants add an indexed quad, bitmap text baked from a
// TrueType font, swapchain recreation on resize, or an immediate-mode GUI
// overlay with buttons that toggle the other layers.
//
// The packages are layered bottom-up:
//
//	primer           Config, Option, Extent, logging
//	internal/shader  embedded WGSL and pre-baked SPIR-V
//	geom             triangle and quad meshes
//	glyph            font loading, atlas baking, text layout
//	overlay          GUI panel and draw list merging (imgui-go under overlay/imguiui)
//	gfx              device, frame sync, swapchain, pipelines, renderer
//	window           gogpu App host: events, frame loop
//
// # Logging
//
// primer is silent by default. Call SetLogger to route diagnostics from
// every sub-package (and the wgpu HAL) through a slog.Logger.
package primer
