package shaders

import "fmt"

// SLType is the shading-language type of a snippet uniform.
//
// Half and Short variants exist so that runtime effects can keep their
// declared precision; WGSL has no 16-bit types in uniform buffers, so they
// are emitted as f32 and i32.
type SLType uint8

const (
	Float SLType = iota
	Float2
	Float3
	Float4
	Half
	Half2
	Half3
	Half4
	Float2x2
	Float3x3
	Float4x4
	Half2x2
	Half3x3
	Half4x4
	Int
	Int2
	Int3
	Int4
	Short
	Short2
	Short3
	Short4

	slTypeCount
)

var slTypeNames = [slTypeCount]string{
	Float: "float", Float2: "float2", Float3: "float3", Float4: "float4",
	Half: "half", Half2: "half2", Half3: "half3", Half4: "half4",
	Float2x2: "float2x2", Float3x3: "float3x3", Float4x4: "float4x4",
	Half2x2: "half2x2", Half3x3: "half3x3", Half4x4: "half4x4",
	Int: "int", Int2: "int2", Int3: "int3", Int4: "int4",
	Short: "short", Short2: "short2", Short3: "short3", Short4: "short4",
}

// String returns the type's name.
func (t SLType) String() string {
	if t < slTypeCount {
		return slTypeNames[t]
	}
	return fmt.Sprintf("SLType(%d)", uint8(t))
}

// IsValid reports whether t is a known type.
func (t SLType) IsValid() bool { return t < slTypeCount }

// IsMatrix reports whether t is a matrix type.
func (t SLType) IsMatrix() bool {
	switch t {
	case Float2x2, Float3x3, Float4x4, Half2x2, Half3x3, Half4x4:
		return true
	}
	return false
}

// IsInteger reports whether t has integer components.
func (t SLType) IsInteger() bool { return t >= Int && t < slTypeCount }

// Columns returns the number of vector components, or the number of
// columns for a matrix.
func (t SLType) Columns() int {
	switch t {
	case Float, Half, Int, Short:
		return 1
	case Float2, Half2, Int2, Short2, Float2x2, Half2x2:
		return 2
	case Float3, Half3, Int3, Short3, Float3x3, Half3x3:
		return 3
	case Float4, Half4, Int4, Short4, Float4x4, Half4x4:
		return 4
	}
	panic(fmt.Sprintf("shaders: invalid SLType %d", uint8(t)))
}

// WGSL returns the WGSL spelling of t.
func (t SLType) WGSL() string {
	scalar := "f32"
	if t.IsInteger() {
		scalar = "i32"
	}
	n := t.Columns()
	switch {
	case t.IsMatrix():
		return fmt.Sprintf("mat%dx%d<%s>", n, n, scalar)
	case n == 1:
		return scalar
	default:
		return fmt.Sprintf("vec%d<%s>", n, scalar)
	}
}

// Align returns the type's alignment in a WGSL uniform buffer.
func (t SLType) Align() int {
	switch n := t.Columns(); {
	case t.IsMatrix() && n == 2:
		return 8
	case t.IsMatrix():
		return 16
	case n == 3:
		return 16
	default:
		return 4 * n
	}
}

// Size returns the type's size in a WGSL uniform buffer.
func (t SLType) Size() int {
	n := t.Columns()
	if t.IsMatrix() {
		// Columns are vectors aligned to their own alignment.
		colAlign := 8
		if n > 2 {
			colAlign = 16
		}
		return n * colAlign
	}
	return 4 * n
}

// ArrayStride returns the element stride of an array of t in a WGSL uniform
// buffer, which is always a multiple of 16.
func (t SLType) ArrayStride() int {
	return roundUp(roundUp(t.Size(), t.Align()), 16)
}

func roundUp(n, align int) int {
	return (n + align - 1) / align * align
}
