package effect

import "fmt"

// UniformType is the declared type of a runtime effect uniform.
type UniformType uint8

const (
	Float UniformType = iota
	Float2
	Float3
	Float4
	Float2x2
	Float3x3
	Float4x4
	Int
	Int2
	Int3
	Int4
)

// String returns the type's name.
func (t UniformType) String() string {
	switch t {
	case Float:
		return "float"
	case Float2:
		return "float2"
	case Float3:
		return "float3"
	case Float4:
		return "float4"
	case Float2x2:
		return "float2x2"
	case Float3x3:
		return "float3x3"
	case Float4x4:
		return "float4x4"
	case Int:
		return "int"
	case Int2:
		return "int2"
	case Int3:
		return "int3"
	case Int4:
		return "int4"
	default:
		return fmt.Sprintf("UniformType(%d)", uint8(t))
	}
}

// ParseUniformType returns the UniformType named s.
func ParseUniformType(s string) (UniformType, error) {
	for t := Float; t <= Int4; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("effect: unknown uniform type %q", s)
}

// Size returns the packed size of one element of the type in bytes.
func (t UniformType) Size() int {
	switch t {
	case Float, Int:
		return 4
	case Float2, Int2:
		return 8
	case Float3, Int3:
		return 12
	case Float4, Int4, Float2x2:
		return 16
	case Float3x3:
		return 36
	case Float4x4:
		return 64
	default:
		panic(fmt.Sprintf("effect: invalid uniform type %d", uint8(t)))
	}
}

// UniformFlags modify how a uniform is declared.
type UniformFlags uint8

const (
	// FlagArray marks the uniform as an array of Count elements.
	FlagArray UniformFlags = 1 << iota
	// FlagHalfPrecision marks the uniform as declared with half precision.
	FlagHalfPrecision
)

// Uniform describes one uniform declared by a runtime effect.
type Uniform struct {
	Name   string
	Type   UniformType
	Count  int // Number of array elements; 1 unless FlagArray is set.
	Flags  UniformFlags
	Offset int // Byte offset within the effect's uniform data.
}

// IsArray reports whether the uniform is an array.
func (u Uniform) IsArray() bool { return u.Flags&FlagArray != 0 }

// SizeInBytes returns the packed size of the uniform, including all elements.
func (u Uniform) SizeInBytes() int {
	n := u.Count
	if n < 1 {
		n = 1
	}
	return u.Type.Size() * n
}
