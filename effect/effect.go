// Package effect defines runtime effects: user-authored shading programs
// that are spliced into generated fragment shaders.
//
// Effect source is WGSL-flavoured. It may declare structs, module-scope
// constants and private variables, helper functions, and exactly one entry
// point:
//
//	fn main(coords: vec2<f32>) -> vec4<f32>
//	fn main(coords: vec2<f32>, color: vec4<f32>) -> vec4<f32>
//	fn main(coords: vec2<f32>, color: vec4<f32>, dst: vec4<f32>) -> vec4<f32>
//
// Uniforms are declared out of band with [Make] and referenced by name in
// the source. Child effects are sampled with sampleShader, sampleColorFilter
// and sampleBlender; the host decides what those calls turn into (see
// [Callbacks]).
package effect

import (
	"fmt"
	"hash/fnv"
)

// RuntimeEffect is an immutable, parsed runtime effect.
type RuntimeEffect struct {
	source   string
	uniforms []Uniform
	size     int
	hash     uint64
	program  *Program
}

// Make parses source and lays out uniforms, returning the effect.
// Uniform offsets are assigned in declaration order; any Offset set by the
// caller is ignored.
func Make(source string, uniforms []Uniform) (*RuntimeEffect, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err
	}

	e := &RuntimeEffect{
		source:   source,
		uniforms: make([]Uniform, len(uniforms)),
		program:  prog,
	}
	seen := make(map[string]bool, len(uniforms))
	for i, u := range uniforms {
		if err := validateUniform(u); err != nil {
			return nil, err
		}
		if seen[u.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrBadUniform, u.Name)
		}
		seen[u.Name] = true
		if !u.IsArray() {
			u.Count = 1
		}
		u.Offset = e.size
		e.size += u.SizeInBytes()
		e.uniforms[i] = u
	}

	h := fnv.New64a()
	h.Write([]byte(source))
	e.hash = h.Sum64()
	return e, nil
}

func validateUniform(u Uniform) error {
	if u.Name == "" || !isIdentStart(u.Name[0]) {
		return fmt.Errorf("%w: bad name %q", ErrBadUniform, u.Name)
	}
	for i := 1; i < len(u.Name); i++ {
		if !isIdentPart(u.Name[i]) {
			return fmt.Errorf("%w: bad name %q", ErrBadUniform, u.Name)
		}
	}
	if u.Type > Int4 {
		return fmt.Errorf("%w: %s has unknown type %d", ErrBadUniform, u.Name, u.Type)
	}
	if !u.IsArray() {
		return nil
	}
	if u.Count < 1 {
		return fmt.Errorf("%w: array %s needs a positive count", ErrBadUniform, u.Name)
	}
	// Uniform buffer arrays need a 16-byte element stride.
	switch u.Type {
	case Float, Float2, Int, Int2:
		return fmt.Errorf("%w: array %s of %s has a stride below 16 bytes", ErrBadUniform, u.Name, u.Type)
	}
	return nil
}

// Source returns the effect's source text.
func (e *RuntimeEffect) Source() string { return e.source }

// Hash returns the FNV-1a hash of the effect's source.
func (e *RuntimeEffect) Hash() uint64 { return e.hash }

// UniformSize returns the total packed size of the effect's uniforms.
func (e *RuntimeEffect) UniformSize() int { return e.size }

// Uniforms returns the effect's uniforms. The slice must not be modified.
func (e *RuntimeEffect) Uniforms() []Uniform { return e.uniforms }

// Program returns the parsed program.
func (e *RuntimeEffect) Program() *Program { return e.program }

// Uniform returns the uniform named name, or nil.
func (e *RuntimeEffect) Uniform(name string) *Uniform {
	for i := range e.uniforms {
		if e.uniforms[i].Name == name {
			return &e.uniforms[i]
		}
	}
	return nil
}
