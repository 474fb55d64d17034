// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/overlay"
)

func testConfig(opts ...primer.Option) primer.Config {
	base := []primer.Option{primer.WithShaderFormat(primer.ShaderWGSL)}
	return primer.New(append(base, opts...)...)
}

func newTestRenderer(t *testing.T, cfg primer.Config) (*Renderer, *Device) {
	t.Helper()
	_, dev := openNoop(t)
	r, err := NewRenderer(dev, cfg)
	if err != nil {
		t.Fatalf("NewRenderer error = %v", err)
	}
	t.Cleanup(r.Destroy)
	return r, dev
}

func testTarget(t *testing.T, dev *Device, extent primer.Extent) hal.TextureView {
	t.Helper()
	tex, err := dev.HalDevice().CreateTexture(&hal.TextureDescriptor{
		Label:         "test_target",
		Size:          hal.Extent3D{Width: extent.Width, Height: extent.Height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        dev.SurfaceFormat(),
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatal(err)
	}
	view, err := dev.HalDevice().CreateTextureView(tex, &hal.TextureViewDescriptor{
		Format:          dev.SurfaceFormat(),
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	return view
}

func TestRendererTriangle(t *testing.T) {
	r, dev := newTestRenderer(t, testConfig())
	extent := primer.NewExtent(800, 600)
	view := testTarget(t, dev, extent)

	var last uint64
	for i := range 5 {
		idx, err := r.Frame(view, extent)
		if err != nil {
			t.Fatalf("frame %d: error = %v", i, err)
		}
		if idx <= last {
			t.Errorf("frame %d: submission index %d not after %d", i, idx, last)
		}
		last = idx
	}
	if r.Frames().Frame() != 5 {
		t.Errorf("Frames().Frame() = %d, want 5", r.Frames().Frame())
	}
	if r.TextQuads() != 0 {
		t.Errorf("TextQuads() = %d without a text layer", r.TextQuads())
	}
}

func TestRendererZeroExtent(t *testing.T) {
	r, dev := newTestRenderer(t, testConfig())
	view := testTarget(t, dev, primer.NewExtent(4, 4))

	if _, err := r.Frame(view, primer.Extent{}); !errors.Is(err, primer.ErrZeroExtent) {
		t.Errorf("Frame(0x0) error = %v, want ErrZeroExtent", err)
	}
	if r.Frames().Frame() != 0 {
		t.Error("zero extent must not submit")
	}
}

func TestRendererInvalidConfig(t *testing.T) {
	_, dev := openNoop(t)
	cfg := testConfig(primer.WithFramesInFlight(0))
	if _, err := NewRenderer(dev, cfg); !errors.Is(err, primer.ErrInvalidConfig) {
		t.Errorf("NewRenderer error = %v, want ErrInvalidConfig", err)
	}
}

func TestRendererText(t *testing.T) {
	r, dev := newTestRenderer(t, testConfig(
		primer.WithLayers(primer.Layers{Triangle: true}),
		primer.WithText("Hello Vulkan!"),
		primer.WithFont("", 24),
	))
	if got := r.TextQuads(); got != 12 {
		t.Errorf("TextQuads() = %d, want 12", got)
	}
	if !r.Layers().Text {
		t.Error("WithText should enable the text layer")
	}

	if err := r.SetText("abc"); err != nil {
		t.Fatalf("SetText error = %v", err)
	}
	if got := r.TextQuads(); got != 3 {
		t.Errorf("TextQuads() = %d after SetText, want 3", got)
	}

	extent := primer.NewExtent(640, 480)
	view := testTarget(t, dev, extent)
	for _, e := range []primer.Extent{extent, extent, primer.NewExtent(320, 240)} {
		if _, err := r.Frame(view, e); err != nil {
			t.Fatalf("Frame(%v) error = %v", e, err)
		}
	}
}

func TestRendererUpsideDownText(t *testing.T) {
	r, dev := newTestRenderer(t, testConfig(
		primer.WithText("Hello Vulkan!"),
		primer.WithUpsideDown(true),
	))
	extent := primer.NewExtent(800, 600)
	if _, err := r.Frame(testTarget(t, dev, extent), extent); err != nil {
		t.Fatalf("Frame error = %v", err)
	}
}

func TestRendererMissingFont(t *testing.T) {
	_, dev := openNoop(t)
	cfg := testConfig(primer.WithText("x"), primer.WithFont("testdata/missing.ttf", 16))
	if _, err := NewRenderer(dev, cfg); err == nil {
		t.Error("NewRenderer with a missing font should fail")
	}
}

func TestRendererSetTextWithoutLayer(t *testing.T) {
	r, _ := newTestRenderer(t, testConfig())
	if err := r.SetText("nope"); !errors.Is(err, primer.ErrInvalidConfig) {
		t.Errorf("SetText error = %v, want ErrInvalidConfig", err)
	}
}

func TestRendererOverlay(t *testing.T) {
	r, dev := newTestRenderer(t, testConfig(
		primer.WithLayers(primer.Layers{Triangle: true, Quad: true, Overlay: true}),
		primer.WithFramesInFlight(3),
	))
	if err := r.SetOverlayFont(2, 2, make([]byte, 16)); err != nil {
		t.Fatalf("SetOverlayFont error = %v", err)
	}

	extent := primer.NewExtent(200, 100)
	view := testTarget(t, dev, extent)
	dl := testDrawList(overlay.Command{ElementCount: 6, TextureID: overlay.FontTextureID, Clip: image.Rect(0, 0, 100, 50)})
	for i := range 4 {
		r.UpdateOverlay(dl)
		if _, err := r.Frame(view, extent); err != nil {
			t.Fatalf("frame %d: error = %v", i, err)
		}
	}
	if r.overlay.CommandCount() != 1 {
		t.Errorf("overlay CommandCount() = %d, want 1", r.overlay.CommandCount())
	}

	r.SetLayers(primer.Layers{Triangle: true})
	if _, err := r.Frame(view, extent); err != nil {
		t.Fatalf("Frame without overlay error = %v", err)
	}
}

func TestRendererOverlaySlots(t *testing.T) {
	_, owner := openNoop(t)
	queue := &heldQueue{Queue: owner.HalQueue()}
	queue.hold()
	dev := NewDevice(owner.HalDevice(), queue)
	r, err := NewRenderer(dev, testConfig(
		primer.WithLayers(primer.Layers{Triangle: true, Overlay: true}),
		primer.WithFramesInFlight(3),
	))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Destroy()
	defer queue.release()
	if err := r.SetOverlayFont(1, 1, make([]byte, 4)); err != nil {
		t.Fatal(err)
	}

	extent := primer.NewExtent(200, 100)
	view := testTarget(t, dev, extent)
	cmd := overlay.Command{ElementCount: 6, TextureID: overlay.FontTextureID, Clip: image.Rect(0, 0, 200, 100)}

	// Each frame's list has a distinct vertex count, so the slot it was
	// written to can be told apart.
	listFor := func(frame int) overlay.DrawList {
		dl := testDrawList(cmd)
		dl.Vertices = make([]byte, (4+frame)*overlay.VertexStride)
		return dl
	}
	used := func(slot int) uint64 { return r.overlay.frames[slot].vertices.used }

	for i := range 3 {
		slot := r.Frames().Current()
		r.UpdateOverlay(listFor(i))
		idx, err := r.Frame(view, extent)
		if err != nil {
			t.Fatalf("frame %d: error = %v", i, err)
		}
		if r.overlay.slot != slot {
			t.Errorf("frame %d: overlay drew from slot %d, want recorded slot %d", i, r.overlay.slot, slot)
		}
		if got := r.Frames().SubmissionIndex(slot); got != idx {
			t.Errorf("frame %d: slot %d holds submission %d, want %d", i, slot, got, idx)
		}
		if got, want := used(slot), uint64(len(listFor(i).Vertices)); got != want {
			t.Errorf("frame %d: slot %d holds %d vertex bytes, want %d", i, slot, got, want)
		}
	}

	// The ring is full and nothing has completed: the fourth frame reuses
	// slot 0 and must wait before overwriting its geometry.
	if r.Frames().Current() != 0 {
		t.Fatalf("Current() = %d, want 0", r.Frames().Current())
	}
	r.UpdateOverlay(listFor(3))
	done := make(chan error, 1)
	go func() {
		_, err := r.Frame(view, extent)
		done <- err
	}()
	awaitBlocked(t, done, "Frame")
	if got, want := used(0), uint64(len(listFor(0).Vertices)); got != want {
		t.Fatalf("slot 0 rewritten (%d bytes, want %d) while its frame was in flight", got, want)
	}

	queue.release()
	awaitDone(t, done, "Frame")
	if got, want := used(0), uint64(len(listFor(3).Vertices)); got != want || r.overlay.slot != 0 {
		t.Errorf("slot %d holds %d vertex bytes after the wait, want slot 0 with %d", r.overlay.slot, got, want)
	}
}

func TestRendererSnapshot(t *testing.T) {
	r, _ := newTestRenderer(t, testConfig(primer.WithText("snap")))

	img, err := r.Snapshot(primer.NewExtent(70, 30))
	if err != nil {
		t.Fatalf("Snapshot error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 70 || b.Dy() != 30 {
		t.Errorf("Snapshot bounds = %v, want 70x30", b)
	}
	if len(img.Pix) != 70*30*4 {
		t.Errorf("len(Pix) = %d", len(img.Pix))
	}
	if _, err := r.Snapshot(primer.Extent{}); !errors.Is(err, primer.ErrZeroExtent) {
		t.Errorf("Snapshot(0x0) error = %v, want ErrZeroExtent", err)
	}
}

func TestRendererDestroy(t *testing.T) {
	r, dev := newTestRenderer(t, testConfig(primer.WithText("bye")))
	r.Destroy()
	r.Destroy()

	view := testTarget(t, dev, primer.NewExtent(4, 4))
	if _, err := r.Frame(view, primer.NewExtent(4, 4)); !errors.Is(err, primer.ErrClosed) {
		t.Errorf("Frame after Destroy error = %v, want ErrClosed", err)
	}
	if _, err := r.Snapshot(primer.NewExtent(4, 4)); !errors.Is(err, primer.ErrClosed) {
		t.Errorf("Snapshot after Destroy error = %v, want ErrClosed", err)
	}
}

func TestConvertBGRAToRGBA(t *testing.T) {
	pix := []byte{1, 2, 3, 4, 10, 20, 30, 40}
	convertBGRAToRGBA(pix)
	want := []byte{3, 2, 1, 4, 30, 20, 10, 40}
	for i := range want {
		if pix[i] != want[i] {
			t.Fatalf("pix = %v, want %v", pix, want)
		}
	}
}
