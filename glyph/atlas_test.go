package glyph

import (
	"errors"
	"image"
	"testing"
)

func loadDefault(t *testing.T) *Face {
	t.Helper()
	face, err := LoadFace(DefaultFont(), 32)
	if err != nil {
		t.Fatalf("LoadFace() error = %v", err)
	}
	t.Cleanup(func() { _ = face.Close() })
	return face
}

func TestLoadFaceInvalid(t *testing.T) {
	if _, err := LoadFace(DefaultFont(), 0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("size 0 error = %v, want ErrInvalidSize", err)
	}
	if _, err := LoadFace([]byte("not a font"), 32); err == nil {
		t.Error("garbage data should fail to parse")
	}
	if _, err := LoadFaceFile("/nonexistent/font.ttf", 32); err == nil {
		t.Error("missing file should fail")
	}
}

func TestFaceMetrics(t *testing.T) {
	face := loadDefault(t)
	if face.Ascent() <= 0 || face.Descent() <= 0 {
		t.Errorf("ascent = %v, descent = %v", face.Ascent(), face.Descent())
	}
	if face.LineHeight() < face.Ascent() {
		t.Errorf("line height %v is below ascent %v", face.LineHeight(), face.Ascent())
	}
	if !face.HasRune('A') {
		t.Error("Go Regular should have 'A'")
	}
	if face.HasRune(0x10FFFD) {
		t.Error("private use rune should be missing")
	}
}

func TestBakePrintableASCII(t *testing.T) {
	face := loadDefault(t)
	atlas, err := Bake(face, nil, DefaultAtlasSize, DefaultAtlasSize)
	if err != nil {
		t.Fatalf("Bake() error = %v", err)
	}
	if atlas.Width() != DefaultAtlasSize || atlas.Height() != DefaultAtlasSize {
		t.Fatalf("atlas is %dx%d", atlas.Width(), atlas.Height())
	}
	if len(atlas.Pixels()) != DefaultAtlasSize*DefaultAtlasSize {
		t.Fatalf("Pixels() len = %d", len(atlas.Pixels()))
	}

	for _, r := range PrintableASCII() {
		if _, ok := atlas.Glyphs[r]; !ok {
			t.Errorf("rune %q was not baked", r)
		}
	}

	space := atlas.Glyphs[' ']
	if space.Region.IsValid() || space.Advance <= 0 {
		t.Errorf("space = %+v, want blank with an advance", space)
	}

	// Bitmaps never overlap.
	var regions []Region
	for _, g := range atlas.Glyphs {
		if g.Region.IsValid() {
			regions = append(regions, g.Region)
		}
	}
	for i, a := range regions {
		for _, b := range regions[i+1:] {
			if a.Overlaps(b) {
				t.Fatalf("%v overlaps %v", a, b)
			}
		}
	}

	// 'H' has ink above the baseline.
	h := atlas.Glyphs['H']
	if h.Bearing.Y >= 0 {
		t.Errorf("'H' bearing = %v, want negative Y", h.Bearing)
	}
	var ink int
	r := h.Region
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if atlas.Image.AlphaAt(x, y).A > 0 {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Error("'H' bitmap is empty")
	}
}

func TestBakeFull(t *testing.T) {
	face := loadDefault(t)
	_, err := Bake(face, nil, 64, 64)
	if !errors.Is(err, ErrAtlasFull) {
		t.Errorf("Bake into 64x64 error = %v, want ErrAtlasFull", err)
	}
	if _, err := Bake(face, nil, 0, 512); err == nil {
		t.Error("zero-width atlas should fail")
	}
}

func TestAtlasLookupFallback(t *testing.T) {
	face := loadDefault(t)
	atlas, err := Bake(face, []rune("AB?"), 128, 128)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := atlas.Lookup('Z')
	if !ok || g != atlas.Glyphs[FallbackRune] {
		t.Error("missing rune should fall back to '?'")
	}

	atlas, err = Bake(face, []rune("AB"), 128, 128)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := atlas.Lookup('Z'); ok {
		t.Error("lookup without a baked fallback should fail")
	}
}

func TestAtlasUV(t *testing.T) {
	a := &Atlas{Image: image.NewAlpha(image.Rect(0, 0, 200, 100))}
	u0, v0, u1, v1 := a.UV(Region{X: 50, Y: 25, Width: 100, Height: 50})
	if u0 != 0.25 || v0 != 0.25 || u1 != 0.75 || v1 != 0.75 {
		t.Errorf("UV = %v %v %v %v", u0, v0, u1, v1)
	}
}
