// Package overlay builds the GUI overlay: a small demo panel whose
// geometry is handed to the renderer as a DrawList.
//
// The package has no cgo dependencies. GUI is the built-in
// implementation of UI; package imguiui provides one backed by Dear ImGui
// for cgo builds.
package overlay

import "time"

// FontTextureID is the texture id assigned to the font atlas.
const FontTextureID uintptr = 1

// Mouse buttons in Input.Buttons.
const (
	MouseLeft = iota
	MouseRight
	MouseMiddle
	mouseButtons
)

// Input is the pointer state fed to the GUI once per frame, in
// framebuffer pixels.
type Input struct {
	MouseX, MouseY float32
	Buttons        [mouseButtons]bool
	WheelX, WheelY float32
}

// Panel strings.
const (
	PanelTitle = "Hello, ImGui!"
	PanelText  = "This is a test window."
)

// Panel button labels.
const (
	ButtonClose    = "Close"
	ButtonTriangle = "triangle"
	ButtonQuad     = "quad"
)

// PanelState is the layer visibility the panel buttons toggle.
type PanelState struct {
	Triangle bool
	Quad     bool

	// QuadButton shows the quad toggle. Programs without a quad leave it
	// off.
	QuadButton bool
}

// Actions reports what the user did in the panel this frame.
type Actions struct {
	Close   bool
	Changed bool
}

// Click applies a click on the button labelled label to state and
// returns the resulting actions. Unknown labels do nothing.
func Click(label string, state *PanelState) Actions {
	var a Actions
	switch label {
	case ButtonClose:
		a.Close = true
	case ButtonTriangle:
		state.Triangle = !state.Triangle
		a.Changed = true
	case ButtonQuad:
		state.Quad = !state.Quad
		a.Changed = true
	}
	return a
}

// Buttons returns the panel button labels in display order.
func Buttons(state PanelState) []string {
	labels := []string{ButtonClose, ButtonTriangle}
	if state.QuadButton {
		labels = append(labels, ButtonQuad)
	}
	return labels
}

// UI is a GUI that can draw the demo panel.
//
// A frame is SetInput, Begin, Panel, Render. Render without Begin returns
// an empty list.
type UI interface {
	// FontAtlas returns the font texture as tightly packed RGBA8 pixels.
	FontAtlas() (width, height int, rgba []byte)
	// SetInput feeds pointer state for the next frame.
	SetInput(in Input)
	// WantsMouse reports whether the GUI is using the pointer.
	WantsMouse() bool
	// Begin starts a frame for a width x height display.
	Begin(width, height int, dt time.Duration)
	// Panel draws the demo window. Each button toggles its layer in
	// state; Close requests exit.
	Panel(state *PanelState) Actions
	// Render ends the frame and returns its geometry.
	Render() DrawList
	// Close releases the GUI.
	Close()
}
