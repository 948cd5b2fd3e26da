package main

import (
	"fmt"

	"github.com/gogpu/naga"
)

// compileSPIRV compiles a generated program to a SPIR-V binary.
func compileSPIRV(src string) ([]byte, error) {
	spv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	return spv, nil
}
