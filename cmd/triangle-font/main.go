// Command triangle-font draws the triangle with a line of bitmap text
// baked from a TrueType font. With -upside-down the scene is drawn
// mirrored vertically.
package main

import (
	"flag"
	"log"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/internal/cli"
	"github.com/gogpu/primer/window"
)

func main() {
	var (
		upsideDown = flag.Bool("upside-down", false, "draw the scene mirrored vertically")
		font       = flag.String("font", "", "TrueType font file (default: embedded Go Regular)")
		size       = flag.Float64("size", primer.DefaultFontSize, "font size in pixels")
		text       = flag.String("text", primer.DefaultText, "text to draw")
	)
	cfg := cli.Parse(primer.New(
		primer.WithTitle("Vulkan Triangle (font)"),
		primer.WithResizable(true),
		primer.WithText(primer.DefaultText),
	))

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "upside-down":
			cfg.Apply(primer.WithUpsideDown(*upsideDown))
		case "font", "size":
			cfg.Apply(primer.WithFont(*font, *size))
		case "text":
			cfg.Apply(primer.WithText(*text))
		}
	})

	err := window.Run(cfg, func(s *window.Session) error {
		log.Printf("text %q: %d glyph quads", cfg.Text.Content, s.Renderer().TextQuads())
		return nil
	})
	if err != nil {
		log.Fatalf("triangle-font: %v", err)
	}
}
