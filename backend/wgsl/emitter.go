// Package wgsl declares the resources of generated fragment shaders for
// WebGPU pipelines.
//
// Uniforms of every block live in one uniform buffer at
// @group(0) @binding(2). Textures and samplers, and the destination copy
// when a block reads the destination, live in @group(1) starting at
// binding 0.
package wgsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggshader/backend"
	"github.com/gogpu/ggshader/shaders"
)

// Binding locations.
const (
	UniformGroup   = 0
	UniformBinding = 2
	TextureGroup   = 1

	// UniformBlockName is the variable holding the uniform block.
	UniformBlockName = "fsUniforms"
)

func init() {
	backend.Register(backend.BackendWGSL, func() backend.Emitter { return New() })
}

// Emitter implements shaders.BindingEmitter for WebGPU.
type Emitter struct{}

var _ shaders.BindingEmitter = (*Emitter)(nil)

// New creates an Emitter.
func New() *Emitter { return &Emitter{} }

// EmitUniforms declares the uniform block. It returns "" when no block has
// uniforms.
func (e *Emitter) EmitUniforms(readers []*shaders.BlockReader, needsDev2Local bool) string {
	l := UniformLayout(readers, needsDev2Local)
	if len(l.Fields) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("struct FSUniforms {\n")
	for _, f := range l.Fields {
		if f.IsArray() {
			fmt.Fprintf(&sb, "    @align(16) %s: array<%s, %d>,\n", f.Name, f.Type.WGSL(), f.Count)
			continue
		}
		fmt.Fprintf(&sb, "    %s: %s,\n", f.Name, f.Type.WGSL())
	}
	sb.WriteString("}\n")
	fmt.Fprintf(&sb, "@group(%d) @binding(%d) var<uniform> %s: FSUniforms;\n",
		UniformGroup, UniformBinding, UniformBlockName)
	return sb.String()
}

// EmitTexturesAndSamplers declares a sampler and a texture per texture
// slot, followed by the destination copy if any block reads it.
func (e *Emitter) EmitTexturesAndSamplers(readers []*shaders.BlockReader, binding *int) string {
	var sb strings.Builder
	dstRead := false
	for _, r := range readers {
		s := r.Snippet()
		for j := range s.TexturesAndSamplers {
			fmt.Fprintf(&sb, "@group(%d) @binding(%d) var %s: sampler;\n",
				TextureGroup, *binding, shaders.SamplerName(r.Index(), j))
			*binding++
			fmt.Fprintf(&sb, "@group(%d) @binding(%d) var %s: texture_2d<f32>;\n",
				TextureGroup, *binding, shaders.TextureName(r.Index(), j))
			*binding++
		}
		dstRead = dstRead || s.NeedsDstRead()
	}
	if dstRead {
		fmt.Fprintf(&sb, "@group(%d) @binding(%d) var %s: texture_2d<f32>;\n",
			TextureGroup, *binding, shaders.DstCopyName)
		*binding++
	}
	return sb.String()
}

// UniformRef returns fsUniforms.<name>.
func (e *Emitter) UniformRef(name string) string {
	return UniformBlockName + "." + name
}

// UniformEntry returns the layout entry of the uniform buffer in group 0.
func UniformEntry(l Layout) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    UniformBinding,
		Visibility: gputypes.ShaderStageFragment,
		Buffer: &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: uint64(l.Size),
		},
	}
}

// LayoutEntries returns the group 1 layout entries matching
// EmitTexturesAndSamplers.
func LayoutEntries(readers []*shaders.BlockReader) []gputypes.BindGroupLayoutEntry {
	var entries []gputypes.BindGroupLayoutEntry
	binding := uint32(0)
	texture := func() {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		})
		binding++
	}

	dstRead := false
	for _, r := range readers {
		s := r.Snippet()
		for range s.TexturesAndSamplers {
			entries = append(entries, gputypes.BindGroupLayoutEntry{
				Binding:    binding,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			})
			binding++
			texture()
		}
		dstRead = dstRead || s.NeedsDstRead()
	}
	if dstRead {
		texture()
	}
	return entries
}
