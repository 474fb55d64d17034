package glyph

import (
	"github.com/go-text/typesetting/di"
	gotext "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// Shaped is one positioned glyph of a shaped run. X and Y are relative to
// the start of the run on the baseline, in pixels with +Y down.
type Shaped struct {
	Rune    rune
	X, Y    float64
	Advance float64
}

// Ligatures are off so every glyph maps back to exactly one baked rune.
var shapingFeatures = []shaping.FontFeature{
	{Tag: ot.MustNewTag("liga"), Value: 0},
	{Tag: ot.MustNewTag("clig"), Value: 0},
}

// Shaper positions text with HarfBuzz shaping. The zero value is ready to
// use. It is not safe for concurrent use.
type Shaper struct {
	hb shaping.HarfbuzzShaper
}

// NewShaper returns a new Shaper.
func NewShaper() *Shaper {
	return &Shaper{}
}

// Shape lays text out as a single left-to-right line. The text is
// NFC-normalized first so precomposed glyphs are used where the font has
// them.
func (s *Shaper) Shape(face *Face, text string) []Shaped {
	if text == "" || face == nil {
		return nil
	}
	runes := []rune(norm.NFC.String(text))

	in := shaping.Input{
		Text:         runes,
		RunStart:     0,
		RunEnd:       len(runes),
		Direction:    di.DirectionLTR,
		Face:         gotext.NewFace(face.shape),
		FontFeatures: shapingFeatures,
		Size:         fixed.Int26_6(face.Size() * 64),
		Script:       detectScript(runes),
		Language:     language.NewLanguage("en"),
	}
	out := s.hb.Shape(in)

	result := make([]Shaped, 0, len(out.Glyphs))
	var pen float64
	for _, g := range out.Glyphs {
		idx := g.TextIndex()
		if idx < 0 || idx >= len(runes) {
			continue
		}
		adv := fixedToFloat(g.Advance)
		result = append(result, Shaped{
			Rune:    runes[idx],
			X:       pen + fixedToFloat(g.XOffset),
			Y:       -fixedToFloat(g.YOffset), // shaping output is +Y up
			Advance: adv,
		})
		pen += adv
	}
	return result
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
