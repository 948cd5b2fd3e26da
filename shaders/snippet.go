package shaders

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/ggshader/effect"
)

// SnippetID identifies a snippet in a Dictionary. Zero is invalid.
type SnippetID uint32

// InvalidSnippetID is the zero SnippetID.
const InvalidSnippetID SnippetID = 0

// SnippetFlags declare what a snippet needs from the generated program.
type SnippetFlags uint8

const (
	// FlagLocalCoords marks snippets that sample in local coordinates.
	// Their first uniform must be a Float4x4 local matrix.
	FlagLocalCoords SnippetFlags = 1 << iota

	// FlagDstRead marks snippets that read the destination color.
	FlagDstRead
)

// Uniform is a snippet uniform declaration.
type Uniform struct {
	Name  string
	Type  SLType
	Count int // Array length; 0 for a non-array uniform.
}

// IsArray reports whether the uniform is an array.
func (u Uniform) IsArray() bool { return u.Count > 0 }

// TextureAndSampler declares a texture/sampler pair used by a snippet.
type TextureAndSampler struct {
	Name string
}

// PayloadType is the type of a data payload field.
type PayloadType uint8

const (
	PayloadByte PayloadType = iota
	PayloadInt
	PayloadFloat4
)

// Size returns the encoded size of one element of the type.
func (t PayloadType) Size() int {
	switch t {
	case PayloadByte:
		return 1
	case PayloadInt:
		return 4
	case PayloadFloat4:
		return 16
	}
	panic(fmt.Sprintf("shaders: invalid PayloadType %d", uint8(t)))
}

func (t PayloadType) String() string {
	switch t {
	case PayloadByte:
		return "byte"
	case PayloadInt:
		return "int"
	case PayloadFloat4:
		return "float4"
	}
	return "PayloadType(" + strconv.Itoa(int(t)) + ")"
}

// PayloadField describes one field of a snippet's key payload.
type PayloadField struct {
	Name  string
	Type  PayloadType
	Count int
}

// Size returns the encoded size of the field.
func (f PayloadField) Size() int { return f.Type.Size() * f.Count }

// GlueKind selects the strategy used to emit a snippet's glue code.
type GlueKind uint8

const (
	// GlueDefault calls the static function with every uniform.
	GlueDefault GlueKind = iota
	// GlueDefaultWithChildren emits a helper that evaluates the children
	// and passes their outputs after the uniforms.
	GlueDefaultWithChildren
	// GlueImageShader samples the snippet's texture.
	GlueImageShader
	// GlueFixedFunctionBlender leaves blending to the hardware.
	GlueFixedFunctionBlender
	// GlueShaderBasedBlender blends against a destination read.
	GlueShaderBasedBlender
	// GlueRuntimeEffect splices in a converted runtime effect.
	GlueRuntimeEffect

	glueKindCount
)

func (k GlueKind) String() string {
	switch k {
	case GlueDefault:
		return "Default"
	case GlueDefaultWithChildren:
		return "DefaultWithChildren"
	case GlueImageShader:
		return "ImageShader"
	case GlueFixedFunctionBlender:
		return "FixedFunctionBlender"
	case GlueShaderBasedBlender:
		return "ShaderBasedBlender"
	case GlueRuntimeEffect:
		return "RuntimeEffect"
	}
	return "GlueKind(" + strconv.Itoa(int(k)) + ")"
}

// SnippetDesc describes a snippet to register with a Dictionary.
type SnippetDesc struct {
	Name                string
	Uniforms            []Uniform
	Flags               SnippetFlags
	TexturesAndSamplers []TextureAndSampler
	StaticFunctionName  string
	Kind                GlueKind
	NumChildren         int
	DataPayload         []PayloadField

	// Source is the WGSL definition of StaticFunctionName, for functions
	// that are not part of the built-in library.
	Source string
}

// Snippet is a registered snippet schema. Snippets are immutable.
type Snippet struct {
	SnippetDesc

	generate glueFunc
	effect   *effect.RuntimeEffect // GlueRuntimeEffect only
}

// NeedsLocalCoords reports whether the snippet samples in local coordinates.
func (s *Snippet) NeedsLocalCoords() bool { return s.Flags&FlagLocalCoords != 0 }

// NeedsDstRead reports whether the snippet reads the destination color.
func (s *Snippet) NeedsDstRead() bool { return s.Flags&FlagDstRead != 0 }

// RuntimeEffect returns the effect of a runtime effect snippet, or nil.
func (s *Snippet) RuntimeEffect() *effect.RuntimeEffect { return s.effect }

// MangledUniformName returns the name of uniform i for the node at index.
func (s *Snippet) MangledUniformName(i, index int) string {
	return mangle(s.Uniforms[i].Name, index)
}

// PayloadSize returns the encoded size of the snippet's data payload.
func (s *Snippet) PayloadSize() int {
	n := 0
	for _, f := range s.DataPayload {
		n += f.Size()
	}
	return n
}

func mangle(name string, index int) string {
	return name + "_" + strconv.Itoa(index)
}

// validate checks the structural rules every snippet must satisfy.
func (d *SnippetDesc) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSnippet)
	}
	if d.Kind >= glueKindCount {
		return fmt.Errorf("%w: %s: unknown glue kind %d", ErrInvalidSnippet, d.Name, d.Kind)
	}
	if d.NumChildren < 0 || d.NumChildren > maxChildren {
		return fmt.Errorf("%w: %s: %d children", ErrInvalidSnippet, d.Name, d.NumChildren)
	}
	if d.Flags&FlagLocalCoords != 0 && (len(d.Uniforms) == 0 || d.Uniforms[0].Type != Float4x4) {
		return fmt.Errorf("%w: %s needs local coords but its first uniform is not float4x4", ErrInvalidSnippet, d.Name)
	}
	if strings.ContainsAny(d.Name, "\n\r") {
		return fmt.Errorf("%w: %q: name spans lines", ErrInvalidSnippet, d.Name)
	}
	if (d.Kind == GlueDefault || d.Kind == GlueDefaultWithChildren) && !isIdent(d.StaticFunctionName) {
		return fmt.Errorf("%w: %s: static function %q is not an identifier", ErrInvalidSnippet, d.Name, d.StaticFunctionName)
	}
	switch d.Kind {
	case GlueDefault, GlueImageShader, GlueFixedFunctionBlender, GlueShaderBasedBlender, GlueRuntimeEffect:
		if d.NumChildren != 0 {
			return fmt.Errorf("%w: %s: %s glue takes no children", ErrInvalidSnippet, d.Name, d.Kind)
		}
	case GlueDefaultWithChildren:
		if d.NumChildren == 0 {
			return fmt.Errorf("%w: %s: %s glue needs children", ErrInvalidSnippet, d.Name, d.Kind)
		}
	}
	if d.Kind == GlueImageShader && (len(d.Uniforms) != 6 || len(d.TexturesAndSamplers) != 1) {
		return fmt.Errorf("%w: %s: image glue needs 6 uniforms and one sampler", ErrInvalidSnippet, d.Name)
	}
	if d.Kind == GlueShaderBasedBlender && len(d.Uniforms) != 1 {
		return fmt.Errorf("%w: %s: shader-based blend glue needs one uniform", ErrInvalidSnippet, d.Name)
	}
	size := 0
	names := make(map[string]bool, len(d.Uniforms))
	for _, u := range d.Uniforms {
		if !isIdent(u.Name) || !u.Type.IsValid() || u.Count < 0 {
			return fmt.Errorf("%w: %s: bad uniform %+v", ErrInvalidSnippet, d.Name, u)
		}
		if names[u.Name] {
			return fmt.Errorf("%w: %s: duplicate uniform %q", ErrInvalidSnippet, d.Name, u.Name)
		}
		names[u.Name] = true
		// Uniform buffer arrays need 16-byte elements.
		if u.IsArray() && roundUp(u.Type.Size(), u.Type.Align())%16 != 0 {
			return fmt.Errorf("%w: %s: %s arrays are not allowed in uniforms", ErrInvalidSnippet, d.Name, u.Type)
		}
	}
	for _, f := range d.DataPayload {
		if f.Count < 1 || f.Type > PayloadFloat4 {
			return fmt.Errorf("%w: %s: bad payload field %+v", ErrInvalidSnippet, d.Name, f)
		}
		size += f.Size()
	}
	if size > maxPayloadSize {
		return fmt.Errorf("%w: %s: payload of %d bytes", ErrInvalidSnippet, d.Name, size)
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
