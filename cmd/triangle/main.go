// Command triangle draws a vertex-colored triangle in a fixed-size
// 800x600 window.
package main

import (
	"log"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/internal/cli"
	"github.com/gogpu/primer/window"
)

func main() {
	cfg := cli.Parse(primer.New(primer.WithTitle("Vulkan Triangle")))

	if err := window.Run(cfg, nil); err != nil {
		log.Fatalf("triangle: %v", err)
	}
}
