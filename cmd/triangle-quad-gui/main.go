// Command triangle-quad-gui draws the triangle and an indexed quad under
// a GUI panel that toggles each. Up to -frames frames are kept in
// flight, each with its own command buffer and overlay buffers.
package main

import (
	"flag"
	"log"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/internal/cli"
	"github.com/gogpu/primer/window"
)

func main() {
	frames := flag.Int("frames", primer.DefaultFramesInFlight, "frames in flight (1-3)")
	cfg := cli.Parse(primer.New(
		primer.WithTitle("Vulkan Triangle and Quad (GUI)"),
		primer.WithResizable(true),
		primer.WithLayers(primer.Layers{Triangle: true, Quad: true, Overlay: true}),
	))
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "frames" {
			cfg.Apply(primer.WithFramesInFlight(*frames))
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("triangle-quad-gui: %v", err)
	}

	err := window.Run(cfg, func(s *window.Session) error {
		log.Printf("%d frames in flight", s.Renderer().Frames().Len())
		return nil
	})
	if err != nil {
		log.Fatalf("triangle-quad-gui: %v", err)
	}
}
