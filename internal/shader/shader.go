// Package shader embeds the shaders used by the primer pipelines: the
// WGSL sources and the SPIR-V modules pre-baked from them by
// cmd/shaderbake. Nothing is compiled at run time.
package shader

//go:generate go run ../../cmd/shaderbake -out spirv

import (
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/primer"
	"github.com/gogpu/primer/internal/cache"
)

// Shader names. Each maps to wgsl/<name>.wgsl.
const (
	Color   = "color"
	Text    = "text"
	Overlay = "overlay"
)

// Entry points shared by every shader.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

var (
	// ErrUnknownShader is returned for a name with no embedded source.
	ErrUnknownShader = errors.New("shader: unknown shader")

	// ErrNotBaked is returned when a shader has no embedded SPIR-V
	// module. Run go generate ./internal/shader.
	ErrNotBaked = errors.New("shader: spir-v module not baked")
)

//go:embed wgsl/*.wgsl
var sources embed.FS

// baked holds spirv/<name>.spv for every shader.
//
//go:embed spirv
var baked embed.FS

// spirvCache memoizes the decoded words per shader.
var spirvCache = cache.New[string, spirvResult](0)

type spirvResult struct {
	words []uint32
	err   error
}

// Names returns the embedded shader names in sorted order.
func Names() []string {
	entries, err := sources.ReadDir("wgsl")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".wgsl"))
	}
	sort.Strings(names)
	return names
}

// Source returns the WGSL source of the named shader.
func Source(name string) (string, error) {
	data, err := sources.ReadFile("wgsl/" + name + ".wgsl")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownShader, name)
	}
	return string(data), nil
}

// SPIRVBytes returns the embedded SPIR-V binary of the named shader.
func SPIRVBytes(name string) ([]byte, error) {
	if _, err := Source(name); err != nil {
		return nil, err
	}
	code, err := baked.ReadFile("spirv/" + name + ".spv")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotBaked, name)
	}
	return code, nil
}

// SPIRV returns the embedded SPIR-V module of the named shader as words.
// The result is shared; callers must not modify it.
func SPIRV(name string) ([]uint32, error) {
	r := spirvCache.GetOrCreate(name, func() spirvResult {
		code, err := SPIRVBytes(name)
		if err != nil {
			return spirvResult{err: err}
		}
		words, err := decode(code)
		if err != nil {
			err = fmt.Errorf("%s shader: %w", name, err)
		}
		return spirvResult{words: words, err: err}
	})
	return r.words, r.err
}

// Module returns a shader source for the HAL in the requested format.
func Module(format primer.ShaderFormat, name string) (hal.ShaderSource, error) {
	switch format {
	case primer.ShaderWGSL:
		src, err := Source(name)
		if err != nil {
			return hal.ShaderSource{}, err
		}
		return hal.ShaderSource{WGSL: src}, nil
	case primer.ShaderSPIRV, "":
		words, err := SPIRV(name)
		if err != nil {
			return hal.ShaderSource{}, err
		}
		return hal.ShaderSource{SPIRV: words}, nil
	default:
		return hal.ShaderSource{}, fmt.Errorf("%w: shader format %q", primer.ErrInvalidConfig, format)
	}
}

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// decode splits a SPIR-V binary into little-endian 32-bit words.
func decode(code []byte) ([]uint32, error) {
	if len(code) < 4 || len(code)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not a positive multiple of 4", len(code))
	}
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("spir-v magic %#x, want %#x", words[0], spirvMagic)
	}
	return words, nil
}
