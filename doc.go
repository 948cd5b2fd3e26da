// Package ggshader turns paints into WGSL fragment shaders.
//
// # Overview
//
// A paint is a tree of shaders (solid colors, gradients, images, runtime
// effects, blends and local matrix wrappers) finished by a blend mode.
// Adding a paint to a Context encodes the tree into a compact binary key,
// interns the key in a shaders.Dictionary and returns a small integer ID.
// Paints with equal structure share an ID regardless of their uniform
// values, so the ID identifies one shader program.
//
// # Quick Start
//
//	ctx := ggshader.NewContext()
//
//	grad := ggshader.NewLinearGradient(ggshader.Pt(0, 0), ggshader.Pt(256, 0)).
//	    AddColorStop(0, ggshader.Red).
//	    AddColorStop(1, ggshader.Blue)
//
//	params, err := ctx.AddPaint(ggshader.NewPaint(grad).SetBlendMode(ggshader.BlendMultiply))
//	if err != nil {
//	    return err
//	}
//	prog, err := ctx.Program(params.ID)
//	// prog.WGSL is the fragment shader; prog.Blend the pipeline blend state.
//	buf, err := params.Uniforms.Pack(prog.Layout, ggshader.Identity())
//
// # Architecture
//
// The library is organized into:
//   - Public API: Context, Paint, shaders, BlendMode, Matrix, RGBA
//   - shaders: keys, the dictionary and WGSL generation
//   - effect: runtime effect parsing and conversion
//   - backend/wgsl: uniform and texture declarations for WebGPU
//
// # Coordinate System
//
// Shaders evaluate in local coordinates: the device-to-local matrix passed
// to UniformData.Pack maps fragment coordinates into the paint's space, and
// every shader's local matrix maps further into its own.
package ggshader

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
