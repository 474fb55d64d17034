// Package glyph bakes TrueType glyphs into a single-channel atlas and lays
// out shaped text as textured quads.
//
// Rasterization uses golang.org/x/image/font/opentype. Shaping uses the
// HarfBuzz port in github.com/go-text/typesetting.
package glyph

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrInvalidSize is returned for a non-positive font size.
var ErrInvalidSize = errors.New("glyph: font size must be positive")

// DefaultFont returns the embedded Go Regular TrueType data.
func DefaultFont() []byte {
	return goregular.TTF
}

// Face is a font at a fixed pixel size. It carries both the rasterizing
// face and the parsed font used for shaping. A Face is not safe for
// concurrent use.
type Face struct {
	size   float64
	font   *opentype.Font
	buf    sfnt.Buffer
	raster font.Face
	shape  *gotext.Font
}

// LoadFace parses TrueType or OpenType data at size pixels per em.
func LoadFace(data []byte, size float64) (*Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSize, size)
	}

	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse font: %w", err)
	}
	raster, err := opentype.NewFace(otf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72, // size is in pixels
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("glyph: create face: %w", err)
	}

	shaped, err := gotext.ParseTTF(bytes.NewReader(data))
	if err != nil {
		_ = raster.Close()
		return nil, fmt.Errorf("glyph: parse font for shaping: %w", err)
	}

	return &Face{size: size, font: otf, raster: raster, shape: shaped.Font}, nil
}

// LoadFaceFile reads a font file. An empty path loads DefaultFont.
func LoadFaceFile(path string, size float64) (*Face, error) {
	if path == "" {
		return LoadFace(DefaultFont(), size)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("glyph: %w", err)
	}
	return LoadFace(data, size)
}

// Size returns the pixel size of the face.
func (f *Face) Size() float64 { return f.size }

// Ascent returns the distance from the baseline to the top of the line.
func (f *Face) Ascent() float64 {
	return fixedToFloat(f.raster.Metrics().Ascent)
}

// Descent returns the distance from the baseline to the bottom of the line.
func (f *Face) Descent() float64 {
	return fixedToFloat(f.raster.Metrics().Descent)
}

// LineHeight returns the recommended baseline-to-baseline distance.
func (f *Face) LineHeight() float64 {
	return fixedToFloat(f.raster.Metrics().Height)
}

// HasRune reports whether the font maps r to a real glyph rather than
// .notdef.
func (f *Face) HasRune(r rune) bool {
	idx, err := f.font.GlyphIndex(&f.buf, r)
	return err == nil && idx != 0
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Close releases the rasterizer.
func (f *Face) Close() error {
	if f.raster == nil {
		return nil
	}
	err := f.raster.Close()
	f.raster = nil
	return err
}
