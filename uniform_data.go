package ggshader

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/ggshader/backend/wgsl"
	"github.com/gogpu/ggshader/shaders"
)

// uniformValue is one uniform as written by a shader. Words are stored
// tightly: Columns() per vector element, Columns()² per matrix element in
// column-major order.
type uniformValue struct {
	typ   shaders.SLType
	count int // array length; 0 for a non-array uniform
	words []uint32
}

// UniformData collects the uniform values of a paint in the order its
// shaders write them, which is the order the key's blocks declare their
// uniforms.
type UniformData struct {
	values []uniformValue
}

// Len returns the number of uniforms written.
func (u *UniformData) Len() int { return len(u.values) }

// Reset clears the data for reuse.
func (u *UniformData) Reset() { u.values = u.values[:0] }

func (u *UniformData) add(typ shaders.SLType, count int, words []uint32) {
	u.values = append(u.values, uniformValue{typ: typ, count: count, words: words})
}

// WriteFloat writes a float uniform.
func (u *UniformData) WriteFloat(v float32) {
	u.add(shaders.Float, 0, []uint32{math.Float32bits(v)})
}

// WriteFloat2 writes a float2 uniform.
func (u *UniformData) WriteFloat2(v f32.Vec2) {
	u.add(shaders.Float2, 0, []uint32{math.Float32bits(v[0]), math.Float32bits(v[1])})
}

// WriteFloat4 writes a float4 uniform.
func (u *UniformData) WriteFloat4(v [4]float32) {
	u.add(shaders.Float4, 0, floatWords(v[:]))
}

// WriteFloat4Array writes a float4 array uniform.
func (u *UniformData) WriteFloat4Array(v [][4]float32) {
	words := make([]uint32, 0, 4*len(v))
	for _, e := range v {
		words = append(words, floatWords(e[:])...)
	}
	u.add(shaders.Float4, len(v), words)
}

// WriteInt writes an int uniform.
func (u *UniformData) WriteInt(v int32) {
	u.add(shaders.Int, 0, []uint32{uint32(v)})
}

// WriteMatrix writes a float4x4 uniform. m is row-major.
func (u *UniformData) WriteMatrix(m f32.Mat4) {
	cm := ColumnMajor(m)
	u.add(shaders.Float4x4, 0, floatWords(cm[:]))
}

// WriteValues writes a uniform of any type from float values. Integer
// types are converted by truncation; matrices are given column-major.
// count is the array length, 0 for a non-array uniform.
func (u *UniformData) WriteValues(typ shaders.SLType, count int, vals []float32) error {
	if !typ.IsValid() || count < 0 {
		return fmt.Errorf("%w: bad uniform type %s[%d]", ErrUniformMismatch, typ, count)
	}
	want := elemWords(typ) * max(count, 1)
	if len(vals) != want {
		return fmt.Errorf("%w: %s[%d] takes %d values, got %d", ErrUniformMismatch, typ, count, want, len(vals))
	}
	var words []uint32
	if typ.IsInteger() {
		words = make([]uint32, len(vals))
		for i, v := range vals {
			words[i] = uint32(int32(v))
		}
	} else {
		words = floatWords(vals)
	}
	u.add(typ, count, words)
	return nil
}

func floatWords(v []float32) []uint32 {
	w := make([]uint32, len(v))
	for i, f := range v {
		w[i] = math.Float32bits(f)
	}
	return w
}

func elemWords(t shaders.SLType) int {
	n := t.Columns()
	if t.IsMatrix() {
		return n * n
	}
	return n
}

// Pack lays the uniform values out in a buffer for layout l. When the
// layout starts with the device-to-local matrix, dev2Local fills it.
// The values must match the layout's fields one to one.
func (u *UniformData) Pack(l wgsl.Layout, dev2Local Matrix) ([]byte, error) {
	buf := make([]byte, l.Size)
	vals := u.values
	for _, f := range l.Fields {
		if f.Name == shaders.Dev2LocalName {
			cm := ColumnMajor(dev2Local.Mat4())
			putValue(buf[f.Offset:], uniformValue{typ: shaders.Float4x4, words: floatWords(cm[:])})
			continue
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("%w: no value for %s", ErrUniformMismatch, f.Name)
		}
		v := vals[0]
		vals = vals[1:]
		if v.typ != f.Type || v.count != f.Count {
			return nil, fmt.Errorf("%w: %s is %s[%d], got %s[%d]",
				ErrUniformMismatch, f.Name, f.Type, f.Count, v.typ, v.count)
		}
		putValue(buf[f.Offset:], v)
	}
	if len(vals) != 0 {
		return nil, fmt.Errorf("%w: %d values left over", ErrUniformMismatch, len(vals))
	}
	return buf, nil
}

func putValue(b []byte, v uniformValue) {
	n := v.typ.Columns()
	per := elemWords(v.typ)
	stride := v.typ.ArrayStride()
	colStride := 0
	if v.typ.IsMatrix() {
		colStride = 16
		if n == 2 {
			colStride = 8
		}
	}
	for e := range max(v.count, 1) {
		base := e * stride
		w := v.words[e*per : (e+1)*per]
		for i, word := range w {
			off := base + 4*i
			if colStride != 0 {
				off = base + (i/n)*colStride + 4*(i%n)
			}
			binary.LittleEndian.PutUint32(b[off:], word)
		}
	}
}
