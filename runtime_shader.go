package ggshader

import (
	"fmt"

	"github.com/gogpu/ggshader/effect"
	"github.com/gogpu/ggshader/shaders"
)

// RuntimeShader evaluates a runtime effect. Effects with equal source and
// uniform size share a snippet, so shaders differing only in uniform
// values share a program.
//
// Example:
//
//	fx, err := effect.Make(src, []effect.Uniform{{Name: "tint", Type: effect.Float4}})
//	if err != nil {
//	    return err
//	}
//	s := ggshader.NewRuntimeShader(fx).SetUniform("tint", 1, 0, 0, 1)
type RuntimeShader struct {
	Effect *effect.RuntimeEffect
	// Uniforms holds the values of each uniform by name. Matrices are
	// column-major; integer uniforms are truncated.
	Uniforms    map[string][]float32
	LocalMatrix Matrix
}

// NewRuntimeShader returns a shader evaluating fx.
func NewRuntimeShader(fx *effect.RuntimeEffect) *RuntimeShader {
	return &RuntimeShader{
		Effect:      fx,
		Uniforms:    make(map[string][]float32),
		LocalMatrix: Identity(),
	}
}

// SetUniform sets the value of the uniform name.
func (s *RuntimeShader) SetUniform(name string, vals ...float32) *RuntimeShader {
	if s.Uniforms == nil {
		s.Uniforms = make(map[string][]float32)
	}
	s.Uniforms[name] = vals
	return s
}

// SetLocalMatrix sets the matrix mapping effect space to the parent's.
func (s *RuntimeShader) SetLocalMatrix(m Matrix) *RuntimeShader {
	s.LocalMatrix = m
	return s
}

// AddToKey implements Shader.
func (s *RuntimeShader) AddToKey(d *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	if s.Effect == nil {
		return ErrNilShader
	}
	lm, err := localMatrixUniform(s.LocalMatrix)
	if err != nil {
		return err
	}
	id := d.FindOrCreateRuntimeEffectSnippet(s.Effect)
	if id == shaders.InvalidSnippetID {
		return fmt.Errorf("%w: runtime effect uses a reserved name", shaders.ErrInvalidSnippet)
	}
	snippet := d.Snippet(id)

	b.BeginBlock(id)
	u.WriteMatrix(lm)
	// Uniform 0 is the local matrix added for every runtime effect.
	for _, su := range snippet.Uniforms[1:] {
		vals, ok := s.Uniforms[su.Name]
		if !ok {
			return fmt.Errorf("%w: runtime effect uniform %q not set", ErrUniformMismatch, su.Name)
		}
		if err := u.WriteValues(su.Type, su.Count, vals); err != nil {
			return fmt.Errorf("runtime effect uniform %q: %w", su.Name, err)
		}
	}
	b.EndBlock()
	return nil
}
