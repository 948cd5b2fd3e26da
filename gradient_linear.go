package ggshader

import "github.com/gogpu/ggshader/shaders"

// LinearGradientShader is a linear color transition between two points.
//
// Gradients of up to four stops use the four stop snippet, up to eight the
// eight stop one; paints that differ only in that respect get different
// programs.
//
// Example:
//
//	grad := ggshader.NewLinearGradient(ggshader.Pt(0, 0), ggshader.Pt(100, 0)).
//	    AddColorStop(0, ggshader.Red).
//	    AddColorStop(0.5, ggshader.Yellow).
//	    AddColorStop(1, ggshader.Blue)
type LinearGradientShader struct {
	gradient
	Start Point // Start point of the gradient
	End   Point // End point of the gradient
}

// NewLinearGradient creates a linear gradient from start to end.
func NewLinearGradient(start, end Point) *LinearGradientShader {
	return &LinearGradientShader{gradient: newGradient(), Start: start, End: end}
}

// AddColorStop adds a color stop at the specified offset.
// Offset should be in the range [0, 1].
func (g *LinearGradientShader) AddColorStop(offset float64, c RGBA) *LinearGradientShader {
	g.Stops = append(g.Stops, ColorStop{Offset: offset, Color: c})
	return g
}

// SetTileMode sets how the gradient extends beyond its end points.
func (g *LinearGradientShader) SetTileMode(m TileMode) *LinearGradientShader {
	g.Tile = m
	return g
}

// SetLocalMatrix sets the matrix mapping gradient space to the parent's.
func (g *LinearGradientShader) SetLocalMatrix(m Matrix) *LinearGradientShader {
	g.LocalMatrix = m
	return g
}

// AddToKey implements Shader.
func (g *LinearGradientShader) AddToKey(_ *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	return g.addGradientToKey(b, u,
		shaders.BuiltInLinearGradientShader4, shaders.BuiltInLinearGradientShader8,
		func(u *UniformData) {
			u.WriteFloat2(g.Start.Vec2())
			u.WriteFloat2(g.End.Vec2())
		})
}
