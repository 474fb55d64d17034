package glyph

import (
	"encoding/binary"
	"math"
	"unicode"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/primer/geom"
)

// QuadVertexStride is the byte stride of one text vertex.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes (location 0)
//	uv       (vec2<f32>) = 8 bytes (location 1)
const QuadVertexStride = 16

// MaxQuads is the largest quad count addressable with uint16 indices.
const MaxQuads = 65536 / 4

// Quad is a screen rectangle in pixels (+Y down) and the matching atlas
// texture coordinates.
type Quad struct {
	X0, Y0, X1, Y1 float32
	U0, V0, U1, V1 float32
}

// Layout turns shaped glyphs into quads. The top of the line sits at
// origin.Y, so the baseline is origin.Y + Ascent. Whitespace advances the
// pen but emits no quad. Runes that were not baked use FallbackRune, and
// are dropped when the fallback is missing too.
func Layout(atlas *Atlas, shaped []Shaped, origin mgl32.Vec2) []Quad {
	if atlas == nil || len(shaped) == 0 {
		return nil
	}

	baseline := float64(origin.Y()) + atlas.Ascent
	quads := make([]Quad, 0, len(shaped))
	for _, s := range shaped {
		if unicode.IsSpace(s.Rune) {
			continue
		}
		g, ok := atlas.Lookup(s.Rune)
		if !ok || !g.Region.IsValid() {
			continue
		}
		if len(quads) == MaxQuads {
			break
		}

		x0 := float64(origin.X()) + s.X + float64(g.Bearing.X)
		y0 := baseline + s.Y + float64(g.Bearing.Y)
		u0, v0, u1, v1 := atlas.UV(g.Region)
		quads = append(quads, Quad{
			X0: float32(x0),
			Y0: float32(y0),
			X1: float32(x0 + float64(g.Region.Width)),
			Y1: float32(y0 + float64(g.Region.Height)),
			U0: u0, V0: v0, U1: u1, V1: v1,
		})
	}
	return quads
}

// Bounds returns the smallest rectangle covering every quad.
func Bounds(quads []Quad) (lo, hi mgl32.Vec2) {
	if len(quads) == 0 {
		return mgl32.Vec2{}, mgl32.Vec2{}
	}
	lo = mgl32.Vec2{quads[0].X0, quads[0].Y0}
	hi = mgl32.Vec2{quads[0].X1, quads[0].Y1}
	for _, q := range quads[1:] {
		lo = mgl32.Vec2{min(lo.X(), q.X0), min(lo.Y(), q.Y0)}
		hi = mgl32.Vec2{max(hi.X(), q.X1), max(hi.Y(), q.Y1)}
	}
	return lo, hi
}

// QuadVertexBytes converts quads to vertex data, four vertices per quad in
// the order top-left, top-right, bottom-right, bottom-left.
func QuadVertexBytes(quads []Quad) []byte {
	data := make([]byte, len(quads)*4*QuadVertexStride)
	for i, q := range quads {
		base := i * 4 * QuadVertexStride
		writeQuadVertex(data[base:], q.X0, q.Y0, q.U0, q.V0)
		writeQuadVertex(data[base+QuadVertexStride:], q.X1, q.Y0, q.U1, q.V0)
		writeQuadVertex(data[base+2*QuadVertexStride:], q.X1, q.Y1, q.U1, q.V1)
		writeQuadVertex(data[base+3*QuadVertexStride:], q.X0, q.Y1, q.U0, q.V1)
	}
	return data
}

// QuadIndexBytes returns uint16 index data for n quads.
func QuadIndexBytes(n int) []byte {
	return geom.Mesh{Indices: geom.QuadIndices(n)}.IndexBytes()
}

func writeQuadVertex(buf []byte, x, y, u, v float32) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(x))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(y))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(u))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(v))
}

// QuadVertexLayout returns the vertex buffer layout matching
// QuadVertexBytes.
func QuadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: QuadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // uv
			},
		},
	}
}
