// Package bake compiles WGSL to SPIR-V with naga. Only the shaderbake
// build tool and tests import it; the programs embed its output.
package bake

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Compile converts WGSL source to a little-endian SPIR-V binary.
func Compile(src string) ([]byte, error) {
	code, err := naga.Compile(src)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("spir-v length %d is not a positive multiple of 4", len(code))
	}
	return code, nil
}
