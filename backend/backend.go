package backend

import (
	"errors"
	"fmt"

	"github.com/gogpu/ggshader/shaders"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Backend name constants.
const (
	// BackendWGSL is the name of the WebGPU binding emitter.
	BackendWGSL = "wgsl"
)

// Emitter is a backend's binding emitter. It declares the uniforms,
// textures and samplers of generated programs in the layout its pipelines
// expect.
type Emitter = shaders.BindingEmitter

// Lookup returns the emitter registered under name.
func Lookup(name string) (Emitter, error) {
	if e := Get(name); e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %q (registered: %v)", ErrBackendNotAvailable, name, Available())
}
