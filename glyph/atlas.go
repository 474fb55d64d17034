package glyph

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

// Atlas defaults.
const (
	DefaultAtlasSize = 512
	FallbackRune     = '?'
)

// ErrAtlasFull is returned when the requested glyphs do not fit the atlas.
var ErrAtlasFull = errors.New("glyph: atlas is full")

// Glyph is one baked glyph.
type Glyph struct {
	// Region is where the bitmap lives in the atlas. Zero for blank glyphs
	// such as space.
	Region Region

	// Bearing is the offset from the pen position on the baseline to the
	// top-left corner of the bitmap, in pixels with +Y down.
	Bearing image.Point

	// Advance is the horizontal pen advance in pixels.
	Advance float64
}

// Atlas is a single-channel coverage bitmap holding every baked glyph.
type Atlas struct {
	Image  *image.Alpha
	Glyphs map[rune]Glyph

	Size       float64
	Ascent     float64
	Descent    float64
	LineHeight float64
}

// PrintableASCII returns the runes 32..126.
func PrintableASCII() []rune {
	runes := make([]rune, 0, 95)
	for r := rune(32); r <= 126; r++ {
		runes = append(runes, r)
	}
	return runes
}

// Bake rasterizes runes from face into a new width x height atlas. A nil
// runes slice bakes PrintableASCII. Runes missing from the font are
// skipped. It returns ErrAtlasFull when a glyph cannot be placed.
func Bake(face *Face, runes []rune, width, height int) (*Atlas, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("glyph: invalid atlas size %dx%d", width, height)
	}
	if runes == nil {
		runes = PrintableASCII()
	}

	atlas := &Atlas{
		Image:      image.NewAlpha(image.Rect(0, 0, width, height)),
		Glyphs:     make(map[rune]Glyph, len(runes)),
		Size:       face.Size(),
		Ascent:     face.Ascent(),
		Descent:    face.Descent(),
		LineHeight: face.LineHeight(),
	}
	packer := NewPacker(width, height, DefaultPadding)

	for _, r := range runes {
		if _, done := atlas.Glyphs[r]; done {
			continue
		}
		if !face.HasRune(r) {
			continue
		}

		dr, mask, maskp, advance, ok := face.raster.Glyph(fixed.Point26_6{}, r)
		if !ok {
			continue
		}
		g := Glyph{Bearing: dr.Min, Advance: fixedToFloat(advance)}

		if !dr.Empty() {
			region := packer.Allocate(dr.Dx(), dr.Dy())
			if !region.IsValid() {
				return nil, fmt.Errorf("%w: %q needs %dx%d after %d glyphs",
					ErrAtlasFull, r, dr.Dx(), dr.Dy(), packer.Count())
			}
			dst := image.Rect(region.X, region.Y, region.X+region.Width, region.Y+region.Height)
			// The face reuses mask between calls, so copy it out now.
			draw.Draw(atlas.Image, dst, mask, maskp, draw.Src)
			g.Region = region
		}
		atlas.Glyphs[r] = g
	}

	return atlas, nil
}

// Width returns the atlas width in pixels.
func (a *Atlas) Width() int { return a.Image.Rect.Dx() }

// Height returns the atlas height in pixels.
func (a *Atlas) Height() int { return a.Image.Rect.Dy() }

// Pixels returns the coverage bytes, one per pixel, rows tightly packed.
func (a *Atlas) Pixels() []byte { return a.Image.Pix }

// Lookup returns the glyph for r, falling back to FallbackRune.
func (a *Atlas) Lookup(r rune) (Glyph, bool) {
	if g, ok := a.Glyphs[r]; ok {
		return g, true
	}
	g, ok := a.Glyphs[FallbackRune]
	return g, ok
}

// UV returns the normalized texture coordinates of a region.
func (a *Atlas) UV(r Region) (u0, v0, u1, v1 float32) {
	w := float32(a.Width())
	h := float32(a.Height())
	return float32(r.X) / w, float32(r.Y) / h,
		float32(r.X+r.Width) / w, float32(r.Y+r.Height) / h
}
