package overlay

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/glyph"
	"github.com/gogpu/primer/internal/cache"
)

// Built-in GUI metrics, in pixels.
const (
	guiFontSize    = 13
	guiAtlasWidth  = 256
	guiAtlasHeight = 128

	windowPadding = 8
	itemSpacingX  = 8
	itemSpacingY  = 4
	framePaddingX = 4
	framePaddingY = 3
)

// Built-in GUI colors, non-premultiplied RGBA8.
var (
	colorText          = [4]uint8{255, 255, 255, 255}
	colorWindow        = [4]uint8{15, 15, 15, 240}
	colorBorder        = [4]uint8{110, 110, 128, 128}
	colorTitle         = [4]uint8{41, 74, 122, 255}
	colorButton        = [4]uint8{66, 150, 250, 102}
	colorButtonHovered = [4]uint8{66, 150, 250, 255}
	colorButtonActive  = [4]uint8{15, 135, 250, 255}
)

// titleID is the active widget id while the title bar is dragged.
const titleID = "\x00title"

// box is an axis-aligned rectangle in framebuffer pixels.
type box struct {
	x0, y0, x1, y1 float32
}

func (b box) contains(x, y float32) bool {
	return x >= b.x0 && x < b.x1 && y >= b.y0 && y < b.y1
}

type button struct {
	label string
	box   box
}

// panelLayout is the geometry of one panel frame.
type panelLayout struct {
	window  box
	title   box
	text    mgl32.Vec2
	buttons []button
}

// GUI is the built-in immediate-mode UI. Text comes from a glyph atlas
// baked from the embedded Go Regular font; the atlas also holds a solid
// white block that untextured shapes sample.
//
// A GUI is not safe for concurrent use.
type GUI struct {
	face   *glyph.Face
	atlas  *glyph.Atlas
	shaper *glyph.Shaper
	runs   *cache.Cache[string, []glyph.Shaped]

	rgba   []byte
	whiteU float32
	whiteV float32

	in, prev      Input
	width, height float32
	inFrame       bool

	pos    mgl32.Vec2
	active string
	wants  bool

	vertices []byte
	indices  []byte
}

// New bakes the font atlas and returns a GUI with the panel at (20, 20).
func New() (*GUI, error) {
	face, err := glyph.LoadFace(glyph.DefaultFont(), guiFontSize)
	if err != nil {
		return nil, err
	}
	atlas, err := glyph.Bake(face, glyph.PrintableASCII(), guiAtlasWidth, guiAtlasHeight)
	if err != nil {
		_ = face.Close()
		return nil, err
	}

	white := glyph.Region{X: guiAtlasWidth - 2, Y: guiAtlasHeight - 2, Width: 2, Height: 2}
	for r, g := range atlas.Glyphs {
		if g.Region.Overlaps(white) {
			_ = face.Close()
			return nil, fmt.Errorf("overlay: glyph %q overlaps the white block %v", r, white)
		}
	}

	rgba := make([]byte, guiAtlasWidth*guiAtlasHeight*4)
	for i, a := range atlas.Pixels() {
		rgba[i*4+0] = 255
		rgba[i*4+1] = 255
		rgba[i*4+2] = 255
		rgba[i*4+3] = a
	}
	for y := white.Y; y < white.Y+white.Height; y++ {
		for x := white.X; x < white.X+white.Width; x++ {
			rgba[(y*guiAtlasWidth+x)*4+3] = 255
		}
	}

	primer.Logger().Debug("overlay: gui created",
		"font", fmt.Sprintf("%dx%d", guiAtlasWidth, guiAtlasHeight),
		"glyphs", len(atlas.Glyphs))

	return &GUI{
		face:   face,
		atlas:  atlas,
		shaper: glyph.NewShaper(),
		runs:   cache.New[string, []glyph.Shaped](64),
		rgba:   rgba,
		// The center of the 2x2 block, so linear filtering stays inside it.
		whiteU: float32(white.X+1) / guiAtlasWidth,
		whiteV: float32(white.Y+1) / guiAtlasHeight,
		pos:    mgl32.Vec2{20, 20},
	}, nil
}

// FontAtlas returns the font texture as tightly packed RGBA8 pixels.
// Glyph coverage is in alpha over white.
func (g *GUI) FontAtlas() (width, height int, rgba []byte) {
	return guiAtlasWidth, guiAtlasHeight, g.rgba
}

// SetInput feeds pointer state for the next frame. The wheel is ignored.
func (g *GUI) SetInput(in Input) {
	g.in = in
}

// WantsMouse reports whether the pointer was over the panel, or dragging
// one of its widgets, during the last frame.
func (g *GUI) WantsMouse() bool {
	return g.wants
}

// Begin starts a frame for a width x height display.
func (g *GUI) Begin(width, height int, _ time.Duration) {
	g.width = float32(width)
	g.height = float32(height)
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]
	g.wants = false
	g.inFrame = true
}

// Panel draws the demo window: a title bar that drags the window, the
// panel text and a row of buttons. A button fires when the left button is
// pressed and released over it.
func (g *GUI) Panel(state *PanelState) Actions {
	var a Actions
	if !g.inFrame {
		return a
	}

	down := g.in.Buttons[MouseLeft]
	pressed := down && !g.prev.Buttons[MouseLeft]
	released := !down && g.prev.Buttons[MouseLeft]
	mx, my := g.in.MouseX, g.in.MouseY

	if g.active == titleID && down {
		g.pos = g.pos.Add(mgl32.Vec2{mx - g.prev.MouseX, my - g.prev.MouseY})
	}
	l := g.layout(*state)

	if pressed && l.title.contains(mx, my) {
		g.active = titleID
	}
	for _, b := range l.buttons {
		hovered := b.box.contains(mx, my)
		if pressed && hovered {
			g.active = b.label
		}
		if released && hovered && g.active == b.label {
			a = Click(b.label, state)
		}
	}
	if !down {
		g.active = ""
	}
	g.wants = l.window.contains(mx, my) || g.active != ""

	g.fill(l.window, colorBorder)
	g.fill(box{l.window.x0 + 1, l.window.y0 + 1, l.window.x1 - 1, l.window.y1 - 1}, colorWindow)
	g.fill(l.title, colorTitle)
	g.text(PanelTitle, mgl32.Vec2{l.title.x0 + framePaddingX, l.title.y0 + framePaddingY})
	g.text(PanelText, l.text)
	for _, b := range l.buttons {
		c := colorButton
		switch {
		case g.active == b.label:
			c = colorButtonActive
		case b.box.contains(mx, my):
			c = colorButtonHovered
		}
		g.fill(b.box, c)
		g.text(b.label, mgl32.Vec2{b.box.x0 + framePaddingX, b.box.y0 + framePaddingY})
	}
	return a
}

// Render ends the frame and returns its geometry as one command clipped
// to the display. It returns an empty list when Begin was not called.
func (g *GUI) Render() DrawList {
	if !g.inFrame {
		return DrawList{}
	}
	g.inFrame = false
	g.prev = g.in

	list := List{
		Vertices: g.vertices,
		Indices:  g.indices,
		Commands: []ListCommand{{
			Elements: len(g.indices) / 2,
			Clip:     [4]float32{0, 0, g.width, g.height},
			Texture:  FontTextureID,
		}},
	}
	return Merge([]List{list}, 2, g.width, g.height)
}

// Close releases the font face.
func (g *GUI) Close() {
	if g.face == nil {
		return
	}
	_ = g.face.Close()
	g.face = nil
}

// layout places the panel at g.pos, sized to fit its content.
func (g *GUI) layout(state PanelState) panelLayout {
	line := float32(math.Ceil(g.atlas.LineHeight))
	frameH := line + 2*framePaddingY
	x0, y0 := g.pos.X(), g.pos.Y()

	width := max(g.textWidth(PanelTitle)+2*framePaddingX, g.textWidth(PanelText))
	var row float32
	labels := Buttons(state)
	for i, label := range labels {
		if i > 0 {
			row += itemSpacingX
		}
		row += g.textWidth(label) + 2*framePaddingX
	}
	width = max(width, row) + 2*windowPadding

	l := panelLayout{
		title: box{x0, y0, x0 + width, y0 + frameH},
		text:  mgl32.Vec2{x0 + windowPadding, y0 + frameH + windowPadding},
	}
	bx := x0 + windowPadding
	by := l.text.Y() + line + itemSpacingY
	for _, label := range labels {
		w := g.textWidth(label) + 2*framePaddingX
		l.buttons = append(l.buttons, button{label: label, box: box{bx, by, bx + w, by + frameH}})
		bx += w + itemSpacingX
	}
	l.window = box{x0, y0, x0 + width, by + frameH + windowPadding}
	return l
}

func (g *GUI) shape(s string) []glyph.Shaped {
	return g.runs.GetOrCreate(s, func() []glyph.Shaped {
		return g.shaper.Shape(g.face, s)
	})
}

func (g *GUI) textWidth(s string) float32 {
	shaped := g.shape(s)
	if len(shaped) == 0 {
		return 0
	}
	last := shaped[len(shaped)-1]
	return float32(math.Ceil(last.X + last.Advance))
}

func (g *GUI) text(s string, origin mgl32.Vec2) {
	for _, q := range glyph.Layout(g.atlas, g.shape(s), origin) {
		g.quad(box{q.X0, q.Y0, q.X1, q.Y1}, q.U0, q.V0, q.U1, q.V1, colorText)
	}
}

func (g *GUI) fill(b box, c [4]uint8) {
	g.quad(b, g.whiteU, g.whiteV, g.whiteU, g.whiteV, c)
}

// quad appends two triangles. Quads past the uint16 index range are
// dropped.
func (g *GUI) quad(b box, u0, v0, u1, v1 float32, c [4]uint8) {
	base := len(g.vertices) / VertexStride
	if base+4 > math.MaxUint16+1 {
		return
	}
	g.vertex(b.x0, b.y0, u0, v0, c)
	g.vertex(b.x1, b.y0, u1, v0, c)
	g.vertex(b.x1, b.y1, u1, v1, c)
	g.vertex(b.x0, b.y1, u0, v1, c)
	for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
		g.indices = binary.LittleEndian.AppendUint16(g.indices, uint16(base+i)) //nolint:gosec // bounded above
	}
}

func (g *GUI) vertex(x, y, u, v float32, c [4]uint8) {
	for _, f := range [4]float32{x, y, u, v} {
		g.vertices = binary.LittleEndian.AppendUint32(g.vertices, math.Float32bits(f))
	}
	g.vertices = append(g.vertices, c[:]...)
}
