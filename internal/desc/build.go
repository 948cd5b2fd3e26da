package desc

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/gogpu/ggshader"
	"github.com/gogpu/ggshader/effect"
)

// NamedPaint is a built paint and the name it was declared with.
type NamedPaint struct {
	Name  string
	Paint *ggshader.Paint
}

// Build compiles the file's effects and builds its paints in declaration
// order.
func (f *File) Build() ([]NamedPaint, error) {
	b := builder{effects: make(map[string]*effect.RuntimeEffect, len(f.Effects))}
	for _, e := range f.Effects {
		if err := b.addEffect(e); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool, len(f.Paints))
	out := make([]NamedPaint, 0, len(f.Paints))
	for _, p := range f.Paints {
		if err := checkName(p.Name); err != nil {
			return nil, fmt.Errorf("paint: %w", err)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: duplicate paint %q", ErrInvalid, p.Name)
		}
		seen[p.Name] = true

		paint, err := b.paint(p)
		if err != nil {
			return nil, fmt.Errorf("paint %q: %w", p.Name, err)
		}
		out = append(out, NamedPaint{Name: p.Name, Paint: paint})
	}
	return out, nil
}

// checkName rejects names that cannot serve as file names.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: bad name %q", ErrInvalid, name)
	}
	return nil
}

type builder struct {
	effects map[string]*effect.RuntimeEffect
}

func (b *builder) addEffect(e Effect) error {
	if err := checkName(e.Name); err != nil {
		return fmt.Errorf("effect: %w", err)
	}
	if _, dup := b.effects[e.Name]; dup {
		return fmt.Errorf("%w: duplicate effect %q", ErrInvalid, e.Name)
	}
	uniforms := make([]effect.Uniform, len(e.Uniforms))
	for i, u := range e.Uniforms {
		typ, err := effect.ParseUniformType(u.Type)
		if err != nil {
			return fmt.Errorf("effect %q: %w", e.Name, err)
		}
		uniforms[i] = effect.Uniform{Name: u.Name, Type: typ, Count: u.Count}
		if u.Count > 0 {
			uniforms[i].Flags |= effect.FlagArray
		}
	}
	fx, err := effect.Make(e.Source, uniforms)
	if err != nil {
		return fmt.Errorf("effect %q: %w", e.Name, err)
	}
	b.effects[e.Name] = fx
	return nil
}

func (b *builder) paint(p Paint) (*ggshader.Paint, error) {
	mode := ggshader.BlendSourceOver
	if p.Blend != "" {
		m, err := ggshader.ParseBlendMode(p.Blend)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	var s ggshader.Shader
	if p.Shader != nil {
		var err error
		if s, err = b.shader(p.Shader); err != nil {
			return nil, err
		}
	}
	return ggshader.NewPaint(s).SetBlendMode(mode), nil
}

func (b *builder) shader(d *Shader) (ggshader.Shader, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: missing shader", ErrInvalid)
	}
	var (
		s     ggshader.Shader
		err   error
		kinds int
	)
	set := func(ok bool, build func() (ggshader.Shader, error)) {
		if !ok {
			return
		}
		kinds++
		if kinds == 1 {
			s, err = build()
		}
	}
	set(d.Solid != "", func() (ggshader.Shader, error) { return solid(d.Solid) })
	set(d.Linear != nil, func() (ggshader.Shader, error) { return linear(d.Linear) })
	set(d.Radial != nil, func() (ggshader.Shader, error) { return radial(d.Radial) })
	set(d.Sweep != nil, func() (ggshader.Shader, error) { return sweep(d.Sweep) })
	set(d.Conical != nil, func() (ggshader.Shader, error) { return conical(d.Conical) })
	set(d.Image != nil, func() (ggshader.Shader, error) { return imageShader(d.Image) })
	set(d.Blend != nil, func() (ggshader.Shader, error) { return b.blend(d.Blend) })
	set(d.Runtime != nil, func() (ggshader.Shader, error) { return b.runtime(d.Runtime) })

	switch {
	case kinds == 0:
		return nil, fmt.Errorf("%w: shader has no kind", ErrInvalid)
	case kinds > 1:
		return nil, fmt.Errorf("%w: shader has %d kinds, want one", ErrInvalid, kinds)
	case err != nil:
		return nil, err
	}

	if d.Matrix != nil {
		m, err := matrix(d.Matrix)
		if err != nil {
			return nil, err
		}
		s = ggshader.WithLocalMatrix(s, m)
	}
	return s, nil
}

func matrix(v []float64) (ggshader.Matrix, error) {
	if len(v) != 6 {
		return ggshader.Matrix{}, fmt.Errorf("%w: matrix has %d elements, want 6", ErrInvalid, len(v))
	}
	return ggshader.Matrix{A: v[0], B: v[1], C: v[2], D: v[3], E: v[4], F: v[5]}, nil
}

func color(s string) (ggshader.RGBA, error) {
	c, ok := ggshader.ParseHex(s)
	if !ok {
		return ggshader.RGBA{}, fmt.Errorf("%w: bad color %q", ErrInvalid, s)
	}
	return c, nil
}

func tileMode(s string) (ggshader.TileMode, error) {
	if s == "" {
		return ggshader.TileClamp, nil
	}
	for m := ggshader.TileClamp; m <= ggshader.TileDecal; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown tile mode %q", ErrInvalid, s)
}

func pt(v [2]float64) ggshader.Point { return ggshader.Pt(v[0], v[1]) }

func solid(s string) (ggshader.Shader, error) {
	c, err := color(s)
	if err != nil {
		return nil, err
	}
	return ggshader.SolidColor(c), nil
}

// stops converts the gradient's stops and tile mode, calling add for each
// stop.
func (g *Gradient) stops(add func(offset float64, c ggshader.RGBA)) (ggshader.TileMode, error) {
	for _, st := range g.Stops {
		c, err := color(st.Color)
		if err != nil {
			return 0, err
		}
		add(st.Offset, c)
	}
	return tileMode(g.Tile)
}

func linear(g *Gradient) (ggshader.Shader, error) {
	s := ggshader.NewLinearGradient(pt(g.Start), pt(g.End))
	tile, err := g.stops(func(o float64, c ggshader.RGBA) { s.AddColorStop(o, c) })
	if err != nil {
		return nil, err
	}
	return s.SetTileMode(tile), nil
}

func radial(g *Gradient) (ggshader.Shader, error) {
	s := ggshader.NewRadialGradient(pt(g.Center), g.Radius)
	tile, err := g.stops(func(o float64, c ggshader.RGBA) { s.AddColorStop(o, c) })
	if err != nil {
		return nil, err
	}
	return s.SetTileMode(tile), nil
}

func sweep(g *Gradient) (ggshader.Shader, error) {
	end := 360.0
	if g.EndAngle != nil {
		end = *g.EndAngle
	}
	s := ggshader.NewSweepGradient(pt(g.Center)).
		SetAngles(g.StartAngle*math.Pi/180, end*math.Pi/180)
	tile, err := g.stops(func(o float64, c ggshader.RGBA) { s.AddColorStop(o, c) })
	if err != nil {
		return nil, err
	}
	return s.SetTileMode(tile), nil
}

func conical(g *Gradient) (ggshader.Shader, error) {
	s := ggshader.NewConicalGradient(pt(g.Start), g.StartRadius, pt(g.End), g.EndRadius)
	tile, err := g.stops(func(o float64, c ggshader.RGBA) { s.AddColorStop(o, c) })
	if err != nil {
		return nil, err
	}
	return s.SetTileMode(tile), nil
}

func imageShader(d *Image) (ggshader.Shader, error) {
	s := ggshader.NewImageShader(d.Width, d.Height)
	tx, err := tileMode(d.TileX)
	if err != nil {
		return nil, err
	}
	ty, err := tileMode(d.TileY)
	if err != nil {
		return nil, err
	}
	s.SetTileModes(tx, ty)
	switch len(d.Subset) {
	case 0:
	case 4:
		s.SetSubset(image.Rect(d.Subset[0], d.Subset[1], d.Subset[2], d.Subset[3]))
	default:
		return nil, fmt.Errorf("%w: image subset has %d elements, want 4", ErrInvalid, len(d.Subset))
	}
	return s, nil
}

func (b *builder) blend(d *Blend) (ggshader.Shader, error) {
	mode, err := ggshader.ParseBlendMode(d.Mode)
	if err != nil {
		return nil, err
	}
	dst, err := b.shader(d.Dst)
	if err != nil {
		return nil, fmt.Errorf("blend dst: %w", err)
	}
	src, err := b.shader(d.Src)
	if err != nil {
		return nil, fmt.Errorf("blend src: %w", err)
	}
	return ggshader.Blend(mode, dst, src), nil
}

func (b *builder) runtime(d *Runtime) (ggshader.Shader, error) {
	fx, ok := b.effects[d.Effect]
	if !ok {
		return nil, fmt.Errorf("%w: unknown effect %q", ErrInvalid, d.Effect)
	}
	s := ggshader.NewRuntimeShader(fx)
	for name, vals := range d.Uniforms {
		if fx.Uniform(name) == nil {
			return nil, fmt.Errorf("%w: effect %q has no uniform %q", ErrInvalid, d.Effect, name)
		}
		s.SetUniform(name, vals...)
	}
	return s, nil
}
