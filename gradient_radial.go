package ggshader

import "github.com/gogpu/ggshader/shaders"

// RadialGradientShader is a color transition radiating from a center point.
// Offset 0 is the center and offset 1 the circle of the given radius.
//
// Example:
//
//	glow := ggshader.NewRadialGradient(ggshader.Pt(50, 50), 50).
//	    AddColorStop(0, ggshader.White).
//	    AddColorStop(1, ggshader.Transparent)
type RadialGradientShader struct {
	gradient
	Center Point
	Radius float64
}

// NewRadialGradient creates a radial gradient around center.
func NewRadialGradient(center Point, radius float64) *RadialGradientShader {
	return &RadialGradientShader{gradient: newGradient(), Center: center, Radius: radius}
}

// AddColorStop adds a color stop at the specified offset.
func (g *RadialGradientShader) AddColorStop(offset float64, c RGBA) *RadialGradientShader {
	g.Stops = append(g.Stops, ColorStop{Offset: offset, Color: c})
	return g
}

// SetTileMode sets how the gradient extends beyond its radius.
func (g *RadialGradientShader) SetTileMode(m TileMode) *RadialGradientShader {
	g.Tile = m
	return g
}

// SetLocalMatrix sets the matrix mapping gradient space to the parent's.
func (g *RadialGradientShader) SetLocalMatrix(m Matrix) *RadialGradientShader {
	g.LocalMatrix = m
	return g
}

// AddToKey implements Shader.
func (g *RadialGradientShader) AddToKey(_ *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	return g.addGradientToKey(b, u,
		shaders.BuiltInRadialGradientShader4, shaders.BuiltInRadialGradientShader8,
		func(u *UniformData) {
			u.WriteFloat2(g.Center.Vec2())
			u.WriteFloat(float32(g.Radius))
		})
}
