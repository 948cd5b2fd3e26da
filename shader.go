package ggshader

import (
	"github.com/gogpu/ggshader/shaders"
)

// Shader produces a color per fragment. A shader appends its blocks to the
// key under construction and writes its uniform values, in declaration
// order, to u.
type Shader interface {
	AddToKey(d *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error
}

// SolidColorShader paints a single color.
type SolidColorShader struct {
	Color RGBA
}

// SolidColor returns a shader painting c.
func SolidColor(c RGBA) *SolidColorShader {
	return &SolidColorShader{Color: c}
}

// AddToKey implements Shader.
func (s *SolidColorShader) AddToKey(_ *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	b.BeginBlock(shaders.BuiltInSolidColorShader)
	u.WriteFloat4(s.Color.Premultiply().Float4())
	b.EndBlock()
	return nil
}

// LocalMatrixShader evaluates its child in a transformed coordinate space.
type LocalMatrixShader struct {
	Matrix Matrix // maps the child's space to the parent's
	Child  Shader
}

// WithLocalMatrix wraps child so that it is drawn transformed by m.
func WithLocalMatrix(child Shader, m Matrix) *LocalMatrixShader {
	return &LocalMatrixShader{Matrix: m, Child: child}
}

// AddToKey implements Shader.
func (s *LocalMatrixShader) AddToKey(d *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	if s.Child == nil {
		return ErrNilShader
	}
	lm, err := localMatrixUniform(s.Matrix)
	if err != nil {
		return err
	}
	b.BeginBlock(shaders.BuiltInLocalMatrixShader)
	u.WriteMatrix(lm)
	if err := s.Child.AddToKey(d, b, u); err != nil {
		return err
	}
	b.EndBlock()
	return nil
}

// BlendShader blends the output of two shaders with a blend mode. Any of
// the 29 modes is evaluated in the shader.
type BlendShader struct {
	Mode BlendMode
	Dst  Shader
	Src  Shader
}

// Blend returns a shader blending src over dst with mode.
func Blend(mode BlendMode, dst, src Shader) *BlendShader {
	return &BlendShader{Mode: mode, Dst: dst, Src: src}
}

// AddToKey implements Shader.
func (s *BlendShader) AddToKey(d *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	if s.Dst == nil || s.Src == nil {
		return ErrNilShader
	}
	if !s.Mode.IsValid() {
		return errInvalidMode(s.Mode)
	}
	b.BeginBlock(shaders.BuiltInBlendShader)
	u.WriteInt(int32(s.Mode))
	if err := s.Dst.AddToKey(d, b, u); err != nil {
		return err
	}
	if err := s.Src.AddToKey(d, b, u); err != nil {
		return err
	}
	b.EndBlock()
	return nil
}
