package ggshader

import (
	"github.com/gogpu/ggshader/shaders"
)

// Paint represents the shading of a draw: a shader tree finished by a blend
// mode.
type Paint struct {
	// Shader computes the source color. A nil shader paints opaque black.
	Shader Shader

	// BlendMode combines the source with the destination.
	BlendMode BlendMode
}

// NewPaint creates a Paint drawing s with source-over blending.
func NewPaint(s Shader) *Paint {
	return &Paint{Shader: s, BlendMode: BlendSourceOver}
}

// SetBlendMode sets the blend mode.
// Returns the paint for method chaining.
func (p *Paint) SetBlendMode(m BlendMode) *Paint {
	p.BlendMode = m
	return p
}

// AddToKey appends the paint's blocks to b and writes its uniforms to u:
// the shader tree first, then the blender. The builder's blend info is set
// from the blend mode.
func (p *Paint) AddToKey(d *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	s := p.Shader
	if s == nil {
		s = SolidColor(Black)
	}
	if err := s.AddToKey(d, b, u); err != nil {
		return err
	}
	return p.BlendMode.addToKey(b, u)
}
