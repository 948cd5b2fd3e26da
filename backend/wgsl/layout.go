package wgsl

import (
	"github.com/gogpu/ggshader/shaders"
)

// Field is one member of the uniform block.
type Field struct {
	Name   string // mangled name, or shaders.Dev2LocalName
	Type   shaders.SLType
	Count  int // array length; 0 for a non-array member
	Offset int
	Size   int
}

// IsArray reports whether the field is an array.
func (f Field) IsArray() bool { return f.Count > 0 }

// Layout is the uniform block of one program.
type Layout struct {
	Fields []Field
	Size   int // size of the uniform buffer in bytes
}

// UniformLayout lays out the uniforms of readers with WGSL uniform address
// space rules. The device-to-local matrix comes first when requested,
// followed by every block's uniforms in pre-order.
//
// Arrays are declared with @align(16) so that offsets never depend on what
// precedes them.
func UniformLayout(readers []*shaders.BlockReader, needsDev2Local bool) Layout {
	var l Layout
	maxAlign := 0
	add := func(name string, typ shaders.SLType, count int) {
		align, size := typ.Align(), typ.Size()
		if count > 0 {
			align = 16
			size = count * typ.ArrayStride()
		}
		off := roundUp(l.Size, align)
		l.Fields = append(l.Fields, Field{Name: name, Type: typ, Count: count, Offset: off, Size: size})
		l.Size = off + size
		maxAlign = max(maxAlign, align)
	}

	if needsDev2Local {
		add(shaders.Dev2LocalName, shaders.Float4x4, 0)
	}
	for _, r := range readers {
		s := r.Snippet()
		for i, u := range s.Uniforms {
			add(s.MangledUniformName(i, r.Index()), u.Type, u.Count)
		}
	}
	if maxAlign > 0 {
		l.Size = roundUp(l.Size, maxAlign)
	}
	return l
}

func roundUp(n, align int) int {
	return (n + align - 1) / align * align
}
