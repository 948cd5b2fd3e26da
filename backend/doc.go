// Package backend provides a registry of binding emitters.
//
// A binding emitter declares the resources of a generated fragment shader
// (the uniform block, textures and samplers) the way one GPU backend binds
// them. Emitters register themselves from init() functions and are
// selected by name at runtime:
//
//	import _ "github.com/gogpu/ggshader/backend/wgsl"
//
//	e, err := backend.Lookup("wgsl")
//	if err != nil {
//		log.Fatal(err)
//	}
//	src, err := info.ToWGSL(e)
//
// Use Default() to get the best available emitter.
//
// # Available Emitters
//
// - "wgsl": WebGPU bind groups, uniforms in group 0 and textures in group 1
package backend
