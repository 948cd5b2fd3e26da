package ggshader

import (
	"fmt"
	"sort"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/ggshader/shaders"
)

// TileMode defines how gradients and images extend beyond their bounds.
// The values match the tile mode uniforms of the generated shaders.
type TileMode int32

const (
	// TileClamp extends edge colors beyond bounds (default behavior).
	TileClamp TileMode = iota
	// TileRepeat repeats the pattern.
	TileRepeat
	// TileMirror repeats the pattern, mirroring every other copy.
	TileMirror
	// TileDecal is transparent outside the bounds.
	TileDecal
)

// String returns the tile mode's name.
func (m TileMode) String() string {
	switch m {
	case TileClamp:
		return "clamp"
	case TileRepeat:
		return "repeat"
	case TileMirror:
		return "mirror"
	case TileDecal:
		return "decal"
	}
	return fmt.Sprintf("TileMode(%d)", int32(m))
}

// ColorStop represents a color at a specific position in a gradient.
type ColorStop struct {
	Offset float64 // Position in gradient, 0.0 to 1.0
	Color  RGBA    // Color at this position
}

// sortStops returns a copy of stops sorted by offset with offsets clamped
// to [0, 1]. Equal offsets keep their order so hard stops survive.
func sortStops(stops []ColorStop) []ColorStop {
	sorted := make([]ColorStop, len(stops))
	copy(sorted, stops)
	for i := range sorted {
		sorted[i].Offset = clamp01(sorted[i].Offset)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// gradient holds what every gradient shader shares.
type gradient struct {
	Stops       []ColorStop
	Tile        TileMode
	LocalMatrix Matrix
}

func newGradient() gradient {
	return gradient{LocalMatrix: Identity()}
}

// stopUniforms returns the padded colors and offsets of the gradient and
// the snippet variant that holds them. Padding repeats the last color at
// offset 1.
func (g *gradient) stopUniforms() (colors [][4]float32, offsets []float32, stops int, err error) {
	sorted := sortStops(g.Stops)
	switch n := len(sorted); {
	case n == 0:
		return nil, nil, 0, ErrNoStops
	case n <= shaders.FourStopGradient:
		stops = shaders.FourStopGradient
	case n <= shaders.EightStopGradient:
		stops = shaders.EightStopGradient
	default:
		return nil, nil, 0, fmt.Errorf("%w: %d, at most %d", ErrTooManyStops, n, shaders.EightStopGradient)
	}

	colors = make([][4]float32, stops)
	offsets = make([]float32, stops)
	last := sorted[len(sorted)-1]
	for i := range stops {
		if i < len(sorted) {
			colors[i] = sorted[i].Color.Float4()
			offsets[i] = float32(sorted[i].Offset)
			continue
		}
		colors[i] = last.Color.Float4()
		offsets[i] = 1
	}
	return colors, offsets, stops, nil
}

// localMatrixUniform returns the inverse of m, which maps the parent's
// coordinates into the shader's.
func localMatrixUniform(m Matrix) (f32.Mat4, error) {
	inv, ok := m.Invert()
	if !ok {
		return f32.Mat4{}, ErrSingularMatrix
	}
	return inv.Mat4(), nil
}

// addGradientToKey writes a gradient block. snippet4 and snippet8 are the
// four and eight stop variants; geometry writes the shape uniforms.
func (g *gradient) addGradientToKey(b *shaders.KeyBuilder, u *UniformData,
	snippet4, snippet8 shaders.SnippetID, geometry func(u *UniformData)) error {
	colors, offsets, stops, err := g.stopUniforms()
	if err != nil {
		return err
	}
	lm, err := localMatrixUniform(g.LocalMatrix)
	if err != nil {
		return err
	}

	id := snippet4
	if stops == shaders.EightStopGradient {
		id = snippet8
	}
	b.BeginBlock(id)
	u.WriteMatrix(lm)
	u.WriteFloat4Array(colors)
	if stops == shaders.FourStopGradient {
		u.WriteFloat4([4]float32(offsets))
	} else {
		u.WriteFloat4Array([][4]float32{[4]float32(offsets[:4]), [4]float32(offsets[4:])})
	}
	geometry(u)
	u.WriteInt(int32(g.Tile))
	b.EndBlock()
	return nil
}
