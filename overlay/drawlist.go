package overlay

import (
	"image"
	"math"

	"github.com/gogpu/gputypes"
)

// VertexStride is the byte size of one overlay vertex.
// Layout per vertex:
//
//	position (vec2<f32>)  = 8 bytes (location 0)
//	uv       (vec2<f32>)  = 8 bytes (location 1)
//	color    (unorm8x4)   = 4 bytes (location 2)
const VertexStride = 20

// Command is one draw call of the overlay.
type Command struct {
	// ElementCount is the number of indices to draw.
	ElementCount uint32
	// FirstIndex is the offset into DrawList.Indices, in indices.
	FirstIndex uint32
	// VertexOffset is added to every index of the command.
	VertexOffset int32
	// Clip is the scissor rectangle in framebuffer pixels, already
	// clamped to the framebuffer.
	Clip image.Rectangle
	// TextureID identifies the texture to sample.
	TextureID uintptr
}

// DrawList is one frame of overlay geometry, ready for upload. Vertices
// and Indices are the concatenation of every command list; Indices is
// padded to a multiple of four bytes.
type DrawList struct {
	Vertices    []byte
	Indices     []byte
	IndexFormat gputypes.IndexFormat
	Commands    []Command

	// Width and Height are the display size the list was built for.
	Width, Height float32
}

// Empty reports whether the list has nothing to draw.
func (d DrawList) Empty() bool {
	return len(d.Commands) == 0
}

// VertexLayout returns the vertex buffer layout of DrawList.Vertices.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
				{Format: gputypes.VertexFormatUnorm8x4, Offset: 16, ShaderLocation: 2}, // color
			},
		},
	}
}

// ListCommand is one draw command of a List, in the form GUI libraries
// produce it.
type ListCommand struct {
	// Elements is the number of indices the command consumes.
	Elements int
	// Clip is the scissor rectangle as x1, y1, x2, y2 in pixels.
	Clip [4]float32
	// Texture identifies the texture to sample.
	Texture uintptr
	// Callback marks a user callback. It draws nothing.
	Callback bool
}

// List is one command list: vertices in the VertexStride layout, indices
// of indexSize bytes each, and the commands that consume them in order.
type List struct {
	Vertices []byte
	Indices  []byte
	Commands []ListCommand
}

// Merge concatenates command lists into a single DrawList. Clip
// rectangles are clamped to width x height; commands left with an empty
// clip, and user callbacks, are dropped but still consume their indices.
// The input slices are copied.
func Merge(lists []List, indexSize int, width, height float32) DrawList {
	out := DrawList{
		IndexFormat: gputypes.IndexFormatUint16,
		Width:       width,
		Height:      height,
	}
	if indexSize == 4 {
		out.IndexFormat = gputypes.IndexFormatUint32
	}

	var nv, ni int
	for _, l := range lists {
		nv += len(l.Vertices)
		ni += len(l.Indices)
	}
	out.Vertices = make([]byte, 0, nv)
	out.Indices = make([]byte, 0, (ni+3)&^3)

	bounds := image.Rect(0, 0, int(math.Ceil(float64(width))), int(math.Ceil(float64(height))))
	var baseVertex, baseIndex int
	for _, l := range lists {
		out.Vertices = append(out.Vertices, l.Vertices...)
		out.Indices = append(out.Indices, l.Indices...)

		first := baseIndex
		for _, c := range l.Commands {
			if !c.Callback && c.Elements > 0 {
				clip := clipRect(c.Clip).Intersect(bounds)
				if !clip.Empty() {
					//nolint:gosec // GUI buffer sizes fit in 32 bits
					out.Commands = append(out.Commands, Command{
						ElementCount: uint32(c.Elements),
						FirstIndex:   uint32(first),
						VertexOffset: int32(baseVertex),
						Clip:         clip,
						TextureID:    c.Texture,
					})
				}
			}
			first += c.Elements
		}

		baseVertex += len(l.Vertices) / VertexStride
		if indexSize > 0 {
			baseIndex += len(l.Indices) / indexSize
		}
	}

	for len(out.Indices)%4 != 0 {
		out.Indices = append(out.Indices, 0)
	}
	return out
}

// clipRect converts a clip rectangle to whole pixels, rounding
// outwards. An inverted rectangle stays inverted, and so reads as empty.
func clipRect(c [4]float32) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(int(math.Floor(float64(c[0]))), int(math.Floor(float64(c[1])))),
		Max: image.Pt(int(math.Ceil(float64(c[2]))), int(math.Ceil(float64(c[3])))),
	}
}
