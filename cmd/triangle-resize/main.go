// Command triangle-resize draws the triangle in a resizable window. The
// swapchain is recreated whenever the framebuffer size changes.
package main

import (
	"log"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/internal/cli"
	"github.com/gogpu/primer/window"
)

func main() {
	cfg := cli.Parse(primer.New(
		primer.WithTitle("Vulkan Triangle (resizable)"),
		primer.WithResizable(true),
	))

	err := window.Run(cfg, func(s *window.Session) error {
		s.Swapchain().OnRecreate(func(e primer.Extent) {
			log.Printf("swapchain %d: %v", s.Swapchain().Generation(), e)
		})
		return nil
	})
	if err != nil {
		log.Fatalf("triangle-resize: %v", err)
	}
}
