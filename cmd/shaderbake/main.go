// Command shaderbake compiles the WGSL shaders to SPIR-V with naga and
// writes one .spv file per shader. go generate runs it to refresh the
// modules embedded by internal/shader:
//
//	go generate ./internal/shader
//
// The output can also be checked with spirv-dis or spirv-val.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/internal/cli"
	"github.com/gogpu/primer/internal/shader"
	shaderbake "github.com/gogpu/primer/internal/shader/bake"
)

func main() {
	var (
		outDir  = flag.String("out", ".", "output directory")
		wgsl    = flag.Bool("wgsl", false, "also write the WGSL sources")
		verbose = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Parse()
	primer.SetLogger((&cli.Flags{Verbose: *verbose}).Logger())

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("shaderbake: %v", err)
	}
	for _, name := range shader.Names() {
		if err := bake(*outDir, name, *wgsl); err != nil {
			log.Fatalf("shaderbake: %v", err)
		}
	}
}

func bake(dir, name string, withSource bool) error {
	src, err := shader.Source(name)
	if err != nil {
		return err
	}
	spv, err := shaderbake.Compile(src)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	path := filepath.Join(dir, name+".spv")
	if err := os.WriteFile(path, spv, 0o644); err != nil {
		return err
	}
	log.Printf("%s: %d bytes", path, len(spv))

	if !withSource {
		return nil
	}
	return os.WriteFile(filepath.Join(dir, name+".wgsl"), []byte(src), 0o644)
}
