// Command triangle-gui draws the triangle under a GUI panel. The panel
// toggles the triangle and closes the program; Space hides the panel.
//
// Build with -tags imgui to draw the panel with Dear ImGui (needs cgo).
package main

import (
	"log"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/internal/cli"
	"github.com/gogpu/primer/window"
)

func main() {
	cfg := cli.Parse(primer.New(
		primer.WithTitle("Vulkan Triangle (GUI)"),
		primer.WithResizable(true),
		primer.WithLayers(primer.Layers{Triangle: true, Overlay: true}),
	))

	if err := window.Run(cfg, nil); err != nil {
		log.Fatalf("triangle-gui: %v", err)
	}
}
