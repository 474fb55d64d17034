// Command snapshot renders one frame offscreen and writes it as a PNG. It
// needs no window, so it runs on headless machines.
//
// Usage:
//
//	snapshot -o frame.png -quad -text "Hello Vulkan!"
//
// The Vulkan backend is pure Go; on Linux build with CGO_ENABLED=0.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"

	"github.com/gogpu/gputypes"
	_ "github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/gfx"
	"github.com/gogpu/primer/internal/cli"
)

var backends = map[string]gputypes.Backend{
	"vulkan": gputypes.BackendVulkan,
	"noop":   gputypes.BackendEmpty,
}

func main() {
	var (
		output     = flag.String("o", "snapshot.png", "output PNG file")
		backend    = flag.String("backend", "vulkan", "HAL backend: vulkan or noop")
		quad       = flag.Bool("quad", false, "draw the quad")
		text       = flag.String("text", "", "draw this text")
		upsideDown = flag.Bool("upside-down", false, "draw the scene mirrored vertically")
	)
	cfg := cli.Parse(primer.DefaultConfig())

	cfg.Layers.Quad = cfg.Layers.Quad || *quad
	if *text != "" {
		cfg.Apply(primer.WithText(*text))
	}
	if *upsideDown {
		cfg.Apply(primer.WithUpsideDown(true))
	}

	if err := run(cfg, *backend, *output); err != nil {
		log.Fatalf("snapshot: %v", err)
	}
	log.Printf("snapshot saved to %s (%dx%d)", *output, cfg.Width, cfg.Height)
}

func run(cfg primer.Config, backendName, output string) error {
	b, ok := backends[backendName]
	if !ok {
		return fmt.Errorf("unknown backend %q", backendName)
	}
	inst, err := gfx.NewInstance(gfx.InstanceOptions{Backend: b})
	if err != nil {
		return err
	}
	defer inst.Destroy()

	dev, err := gfx.OpenDevice(inst, nil)
	if err != nil {
		return err
	}
	defer dev.Close()

	r, err := gfx.NewRenderer(dev, cfg)
	if err != nil {
		return err
	}
	defer r.Destroy()

	img, err := r.Snapshot(cfg.Extent())
	if err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
