package ggshader

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"github.com/gogpu/ggshader/shaders"
)

// SweepGradientShader is an angular color transition around a center point,
// also known as a conic gradient. Angles are in radians, measured from the
// positive x axis towards the positive y axis.
//
// Example:
//
//	// Color wheel
//	wheel := ggshader.NewSweepGradient(ggshader.Pt(50, 50)).
//	    AddColorStop(0, ggshader.Red).
//	    AddColorStop(0.333, ggshader.Green).
//	    AddColorStop(0.666, ggshader.Blue).
//	    AddColorStop(1, ggshader.Red)
type SweepGradientShader struct {
	gradient
	Center     Point
	StartAngle float64
	EndAngle   float64
}

// NewSweepGradient creates a full turn sweep gradient around center.
func NewSweepGradient(center Point) *SweepGradientShader {
	return &SweepGradientShader{
		gradient: newGradient(),
		Center:   center,
		EndAngle: 2 * math.Pi,
	}
}

// SetAngles sets the angles at which offsets 0 and 1 lie.
func (g *SweepGradientShader) SetAngles(start, end float64) *SweepGradientShader {
	g.StartAngle, g.EndAngle = start, end
	return g
}

// AddColorStop adds a color stop at the specified offset.
func (g *SweepGradientShader) AddColorStop(offset float64, c RGBA) *SweepGradientShader {
	g.Stops = append(g.Stops, ColorStop{Offset: offset, Color: c})
	return g
}

// SetTileMode sets how the gradient extends outside its angle range.
func (g *SweepGradientShader) SetTileMode(m TileMode) *SweepGradientShader {
	g.Tile = m
	return g
}

// SetLocalMatrix sets the matrix mapping gradient space to the parent's.
func (g *SweepGradientShader) SetLocalMatrix(m Matrix) *SweepGradientShader {
	g.LocalMatrix = m
	return g
}

// biasScale returns the uniforms that map a full turn fraction in [0, 1)
// to the gradient offset: t = (turn + bias) * scale.
func (g *SweepGradientShader) biasScale() (bias, scale float32, err error) {
	start, end := float32(g.StartAngle), float32(g.EndAngle)
	span := end - start
	if math32.Abs(span) < 1e-6 || math32.IsNaN(span) || math32.IsInf(span, 0) {
		return 0, 0, fmt.Errorf("%w: sweep from %g to %g", ErrDegenerateGradient, g.StartAngle, g.EndAngle)
	}
	const turn = 2 * math32.Pi
	return -start / turn, turn / span, nil
}

// AddToKey implements Shader.
func (g *SweepGradientShader) AddToKey(_ *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	bias, scale, err := g.biasScale()
	if err != nil {
		return err
	}
	return g.addGradientToKey(b, u,
		shaders.BuiltInSweepGradientShader4, shaders.BuiltInSweepGradientShader8,
		func(u *UniformData) {
			u.WriteFloat2(g.Center.Vec2())
			u.WriteFloat(bias)
			u.WriteFloat(scale)
		})
}
