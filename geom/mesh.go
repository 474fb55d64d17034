// Package geom defines the vertex-colored meshes drawn by the tutorial
// programs and their GPU byte encodings.
package geom

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

// VertexStride is the byte stride per vertex.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location 0)
//	color    (vec3<f32>) = 12 bytes (location 1)
//
// Total = 20 bytes per vertex.
const VertexStride = 20

// IndexSize is the byte size of one index (uint16).
const IndexSize = 2

// Vertex is a clip-space position with a linear RGB color.
type Vertex struct {
	Pos   mgl32.Vec2
	Color mgl32.Vec3
}

// Mesh is a triangle list. When Indices is empty the vertices are drawn
// in order, three per triangle.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// Primary colors used by the built-in meshes.
var (
	Red    = mgl32.Vec3{1, 0, 0}
	Green  = mgl32.Vec3{0, 1, 0}
	Blue   = mgl32.Vec3{0, 0, 1}
	Yellow = mgl32.Vec3{1, 1, 0}
)

// Triangle returns the classic RGB triangle: red at the top, green at the
// bottom right and blue at the bottom left. Clip space follows WebGPU,
// with +Y pointing up.
func Triangle() Mesh {
	return Mesh{
		Vertices: []Vertex{
			{Pos: mgl32.Vec2{0.0, 0.5}, Color: Red},
			{Pos: mgl32.Vec2{0.5, -0.5}, Color: Green},
			{Pos: mgl32.Vec2{-0.5, -0.5}, Color: Blue},
		},
	}
}

// Quad returns an indexed quad in the upper-left corner of the viewport,
// clear of the triangle. Indices form two triangles: 0,1,2 and 2,3,0.
func Quad() Mesh {
	return Rect(mgl32.Vec2{-0.9, 0.55}, mgl32.Vec2{-0.55, 0.9}, Red, Green, Blue, Yellow)
}

// Rect returns an indexed axis-aligned rectangle spanning min..max with
// one color per corner. Corners are emitted counter-clockwise starting
// at min: (min.x, min.y), (max.x, min.y), (max.x, max.y), (min.x, max.y).
func Rect(min, max mgl32.Vec2, c0, c1, c2, c3 mgl32.Vec3) Mesh {
	return Mesh{
		Vertices: []Vertex{
			{Pos: mgl32.Vec2{min.X(), min.Y()}, Color: c0},
			{Pos: mgl32.Vec2{max.X(), min.Y()}, Color: c1},
			{Pos: mgl32.Vec2{max.X(), max.Y()}, Color: c2},
			{Pos: mgl32.Vec2{min.X(), max.Y()}, Color: c3},
		},
		Indices: QuadIndices(1),
	}
}

// QuadIndices returns index data for n quads of four vertices each,
// using the pattern 0,1,2, 2,3,0 per quad.
func QuadIndices(n int) []uint16 {
	indices := make([]uint16, n*6)
	for i := 0; i < n; i++ {
		base := i * 6
		v := uint16(i * 4) //nolint:gosec // callers bound n to 16384 quads

		// First triangle: 0, 1, 2
		indices[base+0] = v + 0
		indices[base+1] = v + 1
		indices[base+2] = v + 2

		// Second triangle: 2, 3, 0
		indices[base+3] = v + 2
		indices[base+4] = v + 3
		indices[base+5] = v + 0
	}
	return indices
}

// Indexed reports whether the mesh is drawn with an index buffer.
func (m Mesh) Indexed() bool { return len(m.Indices) > 0 }

// VertexCount returns the number of vertices.
func (m Mesh) VertexCount() uint32 { return uint32(len(m.Vertices)) } //nolint:gosec // small meshes

// IndexCount returns the number of indices.
func (m Mesh) IndexCount() uint32 { return uint32(len(m.Indices)) } //nolint:gosec // small meshes

// DrawCount returns the element count for a draw call: indices for an
// indexed mesh, vertices otherwise.
func (m Mesh) DrawCount() uint32 {
	if m.Indexed() {
		return m.IndexCount()
	}
	return m.VertexCount()
}

// FlipY returns a copy of the mesh mirrored about the horizontal axis.
// Winding is reversed by the mirror, which is harmless with culling off.
func (m Mesh) FlipY() Mesh {
	flip := mgl32.Scale2D(1, -1)
	out := Mesh{
		Vertices: make([]Vertex, len(m.Vertices)),
		Indices:  append([]uint16(nil), m.Indices...),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = Vertex{Pos: flip.Mul3x1(v.Pos.Vec3(1)).Vec2(), Color: v.Color}
	}
	return out
}

// Transform returns a copy of the mesh with every position multiplied by
// the 2D homogeneous matrix t.
func (m Mesh) Transform(t mgl32.Mat3) Mesh {
	out := Mesh{
		Vertices: make([]Vertex, len(m.Vertices)),
		Indices:  append([]uint16(nil), m.Indices...),
	}
	for i, v := range m.Vertices {
		out.Vertices[i] = Vertex{Pos: t.Mul3x1(v.Pos.Vec3(1)).Vec2(), Color: v.Color}
	}
	return out
}

// VertexBytes serializes the vertices for upload. Each vertex takes
// VertexStride bytes, little-endian float32.
func (m Mesh) VertexBytes() []byte {
	data := make([]byte, len(m.Vertices)*VertexStride)
	for i, v := range m.Vertices {
		writeVertex(data[i*VertexStride:], v)
	}
	return data
}

// IndexBytes serializes the indices for upload. The result is padded to a
// multiple of four bytes, as buffer writes require.
func (m Mesh) IndexBytes() []byte {
	if len(m.Indices) == 0 {
		return nil
	}
	n := len(m.Indices) * IndexSize
	data := make([]byte, (n+3)&^3)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint16(data[i*IndexSize:], idx)
	}
	return data
}

func writeVertex(buf []byte, v Vertex) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(v.Pos.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(v.Pos.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(v.Color.X()))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v.Color.Y()))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(v.Color.Z()))
}

// VertexLayout returns the vertex buffer layout matching VertexBytes.
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x3, Offset: 8, ShaderLocation: 1}, // color
			},
		},
	}
}
