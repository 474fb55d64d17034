package glyph

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func bakeDefault(t *testing.T) (*Face, *Atlas) {
	t.Helper()
	face := loadDefault(t)
	atlas, err := Bake(face, nil, DefaultAtlasSize, DefaultAtlasSize)
	if err != nil {
		t.Fatalf("Bake() error = %v", err)
	}
	return face, atlas
}

func TestShapeAdvancesMonotonically(t *testing.T) {
	face := loadDefault(t)
	shaped := NewShaper().Shape(face, "Hello Vulkan!")
	if len(shaped) != len("Hello Vulkan!") {
		t.Fatalf("got %d glyphs, want %d", len(shaped), len("Hello Vulkan!"))
	}
	for i := 1; i < len(shaped); i++ {
		if shaped[i].X <= shaped[i-1].X {
			t.Errorf("glyph %d x = %v is not right of %v", i, shaped[i].X, shaped[i-1].X)
		}
	}
	if shaped[0].Rune != 'H' || shaped[5].Rune != ' ' {
		t.Errorf("runes = %q, %q", shaped[0].Rune, shaped[5].Rune)
	}
}

func TestShapeEmpty(t *testing.T) {
	face := loadDefault(t)
	s := NewShaper()
	if got := s.Shape(face, ""); got != nil {
		t.Errorf("Shape(\"\") = %v", got)
	}
	if got := s.Shape(nil, "x"); got != nil {
		t.Errorf("Shape(nil face) = %v", got)
	}
}

func TestShapeNormalizesNFC(t *testing.T) {
	face := loadDefault(t)
	// "e" + combining acute composes to a single rune.
	shaped := NewShaper().Shape(face, "e\u0301")
	if len(shaped) != 1 || shaped[0].Rune != '\u00e9' {
		t.Errorf("Shape(e + U+0301) = %+v, want one U+00E9", shaped)
	}
}

func TestLayoutSkipsWhitespace(t *testing.T) {
	face, atlas := bakeDefault(t)
	text := "Hello Vulkan!"
	quads := Layout(atlas, NewShaper().Shape(face, text), mgl32.Vec2{10, 20})
	if len(quads) != len(text)-1 {
		t.Fatalf("got %d quads, want %d", len(quads), len(text)-1)
	}

	baseline := float32(20 + atlas.Ascent)
	for i, q := range quads {
		if q.X1 <= q.X0 || q.Y1 <= q.Y0 {
			t.Errorf("quad %d is empty: %+v", i, q)
		}
		if q.Y0 < 20-1 || q.Y0 > baseline {
			t.Errorf("quad %d top %v is outside the line (top 20, baseline %v)", i, q.Y0, baseline)
		}
		if q.U0 < 0 || q.U1 > 1 || q.V0 < 0 || q.V1 > 1 {
			t.Errorf("quad %d uv out of range: %+v", i, q)
		}
		if i > 0 && q.X0 <= quads[i-1].X0 {
			t.Errorf("quad %d is not right of quad %d", i, i-1)
		}
	}

	lo, hi := Bounds(quads)
	if lo.X() < 10 || hi.X() <= lo.X() || hi.Y() <= lo.Y() {
		t.Errorf("Bounds = %v, %v", lo, hi)
	}
}

func TestLayoutFallback(t *testing.T) {
	face, atlas := bakeDefault(t)
	// U+00E9 is not printable ASCII, so it renders as '?'.
	quads := Layout(atlas, NewShaper().Shape(face, "\u00e9"), mgl32.Vec2{})
	if len(quads) != 1 {
		t.Fatalf("got %d quads, want 1", len(quads))
	}
	u0, v0, _, _ := atlas.UV(atlas.Glyphs[FallbackRune].Region)
	if quads[0].U0 != u0 || quads[0].V0 != v0 {
		t.Error("unbaked rune should use the fallback glyph")
	}

	if Layout(nil, nil, mgl32.Vec2{}) != nil {
		t.Error("nil atlas should produce no quads")
	}
}

func TestQuadVertexBytes(t *testing.T) {
	q := Quad{X0: 1, Y0: 2, X1: 3, Y1: 4, U0: 0.1, V0: 0.2, U1: 0.3, V1: 0.4}
	data := QuadVertexBytes([]Quad{q})
	if len(data) != 4*QuadVertexStride {
		t.Fatalf("len = %d", len(data))
	}
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
	}
	// Third vertex is bottom-right.
	v := 2 * QuadVertexStride
	if f(v) != 3 || f(v+4) != 4 || f(v+8) != 0.3 || f(v+12) != 0.4 {
		t.Errorf("bottom-right vertex = %v %v %v %v", f(v), f(v+4), f(v+8), f(v+12))
	}

	idx := QuadIndexBytes(2)
	if len(idx) != 24 {
		t.Fatalf("index bytes = %d, want 24", len(idx))
	}
	if got := binary.LittleEndian.Uint16(idx[6*2:]); got != 4 {
		t.Errorf("first index of second quad = %d, want 4", got)
	}
}
