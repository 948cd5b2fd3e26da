package shaders

import (
	"fmt"
	"strings"
	"testing"
)

// testEmitter declares uniforms as fields of a struct bound to "u".
type testEmitter struct{}

func (testEmitter) EmitUniforms(readers []*BlockReader, needsDev2Local bool) string {
	var sb strings.Builder
	sb.WriteString("struct Uniforms {\n")
	if needsDev2Local {
		sb.WriteString("    dev2Local: mat4x4<f32>,\n")
	}
	for _, r := range readers {
		s := r.Snippet()
		for i, u := range s.Uniforms {
			typ := u.Type.WGSL()
			if u.IsArray() {
				typ = fmt.Sprintf("array<%s, %d>", typ, u.Count)
			}
			fmt.Fprintf(&sb, "    %s: %s,\n", s.MangledUniformName(i, r.Index()), typ)
		}
	}
	sb.WriteString("}\n")
	sb.WriteString("@group(0) @binding(0) var<uniform> u: Uniforms;\n")
	return sb.String()
}

func (testEmitter) EmitTexturesAndSamplers(readers []*BlockReader, binding *int) string {
	var sb strings.Builder
	for _, r := range readers {
		for j := range r.Snippet().TexturesAndSamplers {
			fmt.Fprintf(&sb, "@group(1) @binding(%d) var %s: sampler;\n", *binding, SamplerName(r.Index(), j))
			*binding++
			fmt.Fprintf(&sb, "@group(1) @binding(%d) var %s: texture_2d<f32>;\n", *binding, TextureName(r.Index(), j))
			*binding++
		}
	}
	return sb.String()
}

func (testEmitter) UniformRef(name string) string { return "u." + name }

// block appends a childless, payload-free block.
func block(b *KeyBuilder, id SnippetID) {
	b.BeginBlock(id)
	b.EndBlock()
}

// mustEntry interns the builder's key, failing the test on error.
func mustEntry(t *testing.T, d *Dictionary, b *KeyBuilder) *Entry {
	t.Helper()
	e, err := d.FindOrCreate(b)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	return e
}

// generate interns the builder's key and returns the generated WGSL.
func generate(t *testing.T, d *Dictionary, b *KeyBuilder) string {
	t.Helper()
	e := mustEntry(t, d, b)
	si, err := d.ShaderInfo(e.ID())
	if err != nil {
		t.Fatalf("ShaderInfo(%d): %v", e.ID(), err)
	}
	src, err := si.ToWGSL(testEmitter{})
	if err != nil {
		t.Fatalf("ToWGSL: %v", err)
	}
	return src
}

// mainBody returns the text of the fragment entry point.
func mainBody(t *testing.T, src string) string {
	t.Helper()
	i := strings.Index(src, "@fragment")
	if i < 0 {
		t.Fatalf("no entry point in:\n%s", src)
	}
	return src[i:]
}
