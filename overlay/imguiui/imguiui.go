//go:build cgo

// Package imguiui implements overlay.UI with Dear ImGui through
// imgui-go. It needs cgo.
//
// Only one UI may exist at a time: imgui keeps its context in
// process-wide state.
package imguiui

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/inkyblackness/imgui-go/v4"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/overlay"
)

// ErrVertexLayout is returned when the linked imgui build uses a vertex
// layout other than the one overlay.VertexLayout describes.
var ErrVertexLayout = errors.New("imguiui: unexpected imgui vertex layout")

// UI owns the imgui context.
type UI struct {
	ctx *imgui.Context
	io  imgui.IO

	fontWidth  int
	fontHeight int
	fontPixels []byte

	width, height float32
	inFrame       bool
}

var _ overlay.UI = (*UI)(nil)

// New creates the imgui context with the dark style and no ini file, and
// builds the font atlas.
func New() (*UI, error) {
	size, posOff, uvOff, colOff := imgui.VertexBufferLayout()
	if size != overlay.VertexStride || posOff != 0 || uvOff != 8 || colOff != 16 {
		return nil, fmt.Errorf("%w: size %d, offsets %d/%d/%d", ErrVertexLayout, size, posOff, uvOff, colOff)
	}

	ctx := imgui.CreateContext(nil)
	io := imgui.CurrentIO()
	io.SetIniFilename("")
	imgui.StyleColorsDark()

	fonts := io.Fonts()
	img := fonts.TextureDataRGBA32()
	n := img.Width * img.Height * 4
	pixels := make([]byte, n)
	copy(pixels, unsafe.Slice((*byte)(img.Pixels), n))
	fonts.SetTextureID(imgui.TextureID(overlay.FontTextureID))

	primer.Logger().Debug("imguiui: context created", "font", fmt.Sprintf("%dx%d", img.Width, img.Height))

	return &UI{
		ctx:        ctx,
		io:         io,
		fontWidth:  img.Width,
		fontHeight: img.Height,
		fontPixels: pixels,
	}, nil
}

// FontAtlas returns the font texture as tightly packed RGBA8 pixels.
func (u *UI) FontAtlas() (width, height int, rgba []byte) {
	return u.fontWidth, u.fontHeight, u.fontPixels
}

// SetInput feeds pointer state for the next frame.
func (u *UI) SetInput(in overlay.Input) {
	u.io.SetMousePosition(imgui.Vec2{X: in.MouseX, Y: in.MouseY})
	for i, down := range in.Buttons {
		u.io.SetMouseButtonDown(i, down)
	}
	if in.WheelX != 0 || in.WheelY != 0 {
		u.io.AddMouseWheelDelta(in.WheelX, in.WheelY)
	}
}

// WantsMouse reports whether imgui is using the pointer.
func (u *UI) WantsMouse() bool {
	return u.io.WantCaptureMouse()
}

// Begin starts a frame for a width x height display. A non-positive dt is
// replaced with 1/60 s, since imgui rejects it.
func (u *UI) Begin(width, height int, dt time.Duration) {
	if dt <= 0 {
		dt = time.Second / 60
	}
	u.width = float32(width)
	u.height = float32(height)
	u.io.SetDisplaySize(imgui.Vec2{X: u.width, Y: u.height})
	u.io.SetDeltaTime(float32(dt.Seconds()))
	imgui.NewFrame()
	u.inFrame = true
}

// Panel draws the demo window with imgui widgets.
func (u *UI) Panel(state *overlay.PanelState) overlay.Actions {
	var a overlay.Actions
	if !u.inFrame {
		return a
	}

	imgui.SetNextWindowPosV(imgui.Vec2{X: 20, Y: 20}, imgui.ConditionFirstUseEver, imgui.Vec2{})
	imgui.Begin(overlay.PanelTitle)
	imgui.Text(overlay.PanelText)
	for i, label := range overlay.Buttons(*state) {
		if i > 0 {
			imgui.SameLine()
		}
		if imgui.Button(label) {
			a = overlay.Click(label, state)
		}
	}
	imgui.End()

	return a
}

// Render ends the frame and returns its geometry. It returns an empty list
// when Begin was not called.
func (u *UI) Render() overlay.DrawList {
	if !u.inFrame {
		return overlay.DrawList{}
	}
	u.inFrame = false
	imgui.Render()

	data := imgui.RenderedDrawData()
	if !data.Valid() {
		return overlay.DrawList{}
	}

	var lists []overlay.List
	for _, l := range data.CommandLists() {
		vb, vbSize := l.VertexBuffer()
		ib, ibSize := l.IndexBuffer()

		list := overlay.List{
			Vertices: unsafe.Slice((*byte)(vb), vbSize),
			Indices:  unsafe.Slice((*byte)(ib), ibSize),
		}
		for _, c := range l.Commands() {
			r := c.ClipRect()
			list.Commands = append(list.Commands, overlay.ListCommand{
				Elements: c.ElementCount(),
				Clip:     [4]float32{r.X, r.Y, r.Z, r.W},
				Texture:  uintptr(c.TextureID()),
				Callback: c.HasUserCallback(),
			})
		}
		lists = append(lists, list)
	}
	// Merge copies out of imgui's buffers before the next frame reuses them.
	return overlay.Merge(lists, imgui.IndexBufferLayout(), u.width, u.height)
}

// Close destroys the imgui context.
func (u *UI) Close() {
	if u.ctx == nil {
		return
	}
	u.ctx.Destroy()
	u.ctx = nil
}
