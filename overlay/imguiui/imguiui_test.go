//go:build cgo

package imguiui

import (
	"image"
	"testing"
	"time"

	"github.com/gogpu/primer/overlay"
)

func TestUIFrame(t *testing.T) {
	u, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer u.Close()

	w, h, rgba := u.FontAtlas()
	if w <= 0 || h <= 0 || len(rgba) != w*h*4 {
		t.Fatalf("FontAtlas() = %dx%d with %d bytes", w, h, len(rgba))
	}

	if dl := u.Render(); !dl.Empty() {
		t.Error("Render without Begin should be empty")
	}

	state := overlay.PanelState{Triangle: true, QuadButton: true}
	u.SetInput(overlay.Input{MouseX: -1, MouseY: -1})

	// New windows stay hidden for their first frame while imgui sizes
	// them, so check the second one.
	var dl overlay.DrawList
	for frame := 0; frame < 2; frame++ {
		u.Begin(800, 600, time.Duration(frame)*16*time.Millisecond)
		a := u.Panel(&state)
		dl = u.Render()
		if a.Close || a.Changed {
			t.Errorf("frame %d: no clicks, got actions %+v", frame, a)
		}
	}

	if !state.Triangle || state.Quad {
		t.Errorf("state changed without clicks: %+v", state)
	}
	if dl.Empty() {
		t.Fatal("panel frame produced no commands")
	}
	bounds := image.Rect(0, 0, 800, 600)
	for i, c := range dl.Commands {
		if !c.Clip.In(bounds) {
			t.Errorf("command %d clip %v is outside %v", i, c.Clip, bounds)
		}
		if c.TextureID != overlay.FontTextureID {
			t.Errorf("command %d texture = %d", i, c.TextureID)
		}
		if int(c.FirstIndex+c.ElementCount)*2 > len(dl.Indices) {
			t.Errorf("command %d reads past the index data", i)
		}
	}
	if u.WantsMouse() {
		t.Error("pointer off screen should not be captured")
	}
}
