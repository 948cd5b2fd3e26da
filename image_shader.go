package ggshader

import (
	"fmt"
	"image"

	"github.com/gogpu/ggshader/shaders"
)

// ImageShader samples a texture. The texture itself is bound at draw time;
// the shader only carries what the program needs to compute coordinates.
type ImageShader struct {
	Width, Height int             // image size in texels
	Subset        image.Rectangle // texels to tile; empty means the whole image
	TileX, TileY  TileMode
	LocalMatrix   Matrix // maps image space to the parent's
}

// NewImageShader returns a clamped shader over a width by height image.
func NewImageShader(width, height int) *ImageShader {
	return &ImageShader{Width: width, Height: height, LocalMatrix: Identity()}
}

// SetTileModes sets the tile modes in x and y.
func (s *ImageShader) SetTileModes(x, y TileMode) *ImageShader {
	s.TileX, s.TileY = x, y
	return s
}

// SetSubset restricts sampling to r.
func (s *ImageShader) SetSubset(r image.Rectangle) *ImageShader {
	s.Subset = r
	return s
}

// SetLocalMatrix sets the matrix mapping image space to the parent's.
func (s *ImageShader) SetLocalMatrix(m Matrix) *ImageShader {
	s.LocalMatrix = m
	return s
}

func (s *ImageShader) subset() (image.Rectangle, error) {
	bounds := image.Rect(0, 0, s.Width, s.Height)
	if bounds.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %dx%d", ErrInvalidImage, s.Width, s.Height)
	}
	if s.Subset.Empty() {
		return bounds, nil
	}
	r := s.Subset.Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: subset %v outside %v", ErrInvalidImage, s.Subset, bounds)
	}
	return r, nil
}

// AddToKey implements Shader.
func (s *ImageShader) AddToKey(_ *shaders.Dictionary, b *shaders.KeyBuilder, u *UniformData) error {
	r, err := s.subset()
	if err != nil {
		return err
	}
	lm, err := localMatrixUniform(s.LocalMatrix)
	if err != nil {
		return err
	}
	b.BeginBlock(shaders.BuiltInImageShader)
	u.WriteMatrix(lm)
	u.WriteFloat4([4]float32{float32(r.Min.X), float32(r.Min.Y), float32(r.Max.X), float32(r.Max.Y)})
	u.WriteInt(int32(s.TileX))
	u.WriteInt(int32(s.TileY))
	u.WriteInt(int32(s.Width))
	u.WriteInt(int32(s.Height))
	b.EndBlock()
	return nil
}
