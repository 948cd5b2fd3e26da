package ggshader

import "github.com/gogpu/ggshader/shaders"

// ConicalGradientShader is a two point conical gradient: offset t lies on
// the circle interpolated between (Start, StartRadius) at t=0 and
// (End, EndRadius) at t=1. Where several circles cover a point the largest
// t wins; points no circle covers are transparent.
//
// Example:
//
//	// Spotlight with an off-center focus
//	spot := ggshader.NewConicalGradient(ggshader.Pt(30, 30), 0, ggshader.Pt(50, 50), 50).
//	    AddColorStop(0, ggshader.White).
//	    AddColorStop(1, ggshader.Black)
type ConicalGradientShader struct {
	gradient
	Start       Point
	StartRadius float64
	End         Point
	EndRadius   float64
}

// NewConicalGradient creates a two point conical gradient.
func NewConicalGradient(start Point, startRadius float64, end Point, endRadius float64) *ConicalGradientShader {
	return &ConicalGradientShader{
		gradient:    newGradient(),
		Start:       start,
		StartRadius: startRadius,
		End:         end,
		EndRadius:   endRadius,
	}
}

// AddColorStop adds a color stop at the specified offset.
func (g *ConicalGradientShader) AddColorStop(offset float64, c RGBA) *ConicalGradientShader {
	g.Stops = append(g.Stops, ColorStop{Offset: offset, Color: c})
	return g
}

// SetTileMode sets how the gradient extends beyond its end circles.
func (g *ConicalGradientShader) SetTileMode(m TileMode) *ConicalGradientShader {
	g.Tile = m
	return g
}

// SetLocalMatrix sets the matrix mapping gradient space to the parent's.
func (g *ConicalGradientShader) SetLocalMatrix(m Matrix) *ConicalGradientShader {
	g.LocalMatrix = m
	return g
}

// AddToKey implements Shader.
func (g *ConicalGradientShader) AddToKey(_ *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	return g.addGradientToKey(b, u,
		shaders.BuiltInConicalGradientShader4, shaders.BuiltInConicalGradientShader8,
		func(u *UniformData) {
			u.WriteFloat2(g.Start.Vec2())
			u.WriteFloat2(g.End.Vec2())
			u.WriteFloat(float32(g.StartRadius))
			u.WriteFloat(float32(g.EndRadius))
		})
}
