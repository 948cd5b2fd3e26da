package shaders

import (
	"fmt"
	"strings"
)

// Names shared between the generator and binding emitters.
const (
	// Dev2LocalName is the uniform holding the device-to-local transform.
	// It is declared whenever any block needs local coordinates.
	Dev2LocalName = "dev2Local"

	// DstCopyName is the texture holding a copy of the destination, bound
	// when any block reads the destination color.
	DstCopyName = "dstCopy"

	// FragCoordName is the module-scope copy of the fragment position.
	FragCoordName = "sk_FragCoord"
)

// TextureName returns the name of texture j of the block at index.
func TextureName(index, j int) string {
	return fmt.Sprintf("texture_%d_%d", index, j)
}

// SamplerName returns the name of sampler j of the block at index.
func SamplerName(index, j int) string {
	return fmt.Sprintf("sampler_%d_%d", index, j)
}

// BindingEmitter produces the backend-specific resource declarations of a
// generated program. Programs are generated concurrently, so emitters must
// be safe for concurrent use.
type BindingEmitter interface {
	// EmitUniforms declares the uniforms of every block, named
	// <uniform>_<index>, plus Dev2LocalName if needsDev2Local is set.
	EmitUniforms(readers []*BlockReader, needsDev2Local bool) string

	// EmitTexturesAndSamplers declares every block's textures and
	// samplers, named with TextureName and SamplerName, starting at
	// *binding and advancing it.
	EmitTexturesAndSamplers(readers []*BlockReader, binding *int) string

	// UniformRef returns the expression that reads the named uniform.
	UniformRef(name string) string
}

// GenerationError reports a key whose blocks cannot be turned into code.
// It indicates a corrupted key or a snippet registered inconsistently.
type GenerationError struct {
	Index   int    // block index
	Snippet string // snippet name
	Reason  string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("shaders: cannot generate block %d (%s): %s", e.Index, e.Snippet, e.Reason)
}

// generator holds the state of one ToWGSL call.
type generator struct {
	info     *ShaderInfo
	emitter  BindingEmitter
	preamble strings.Builder // generated helpers and runtime effect code

	dstReadEmitted bool
}

func (g *generator) fail(r *BlockReader, format string, args ...any) {
	panic(&GenerationError{Index: r.index, Snippet: r.snippet.Name, Reason: fmt.Sprintf(format, args...)})
}

func (g *generator) uniformRef(name string) string { return g.emitter.UniformRef(name) }

func (g *generator) dev2Local() string { return g.uniformRef(Dev2LocalName) }

// uniform returns the expression reading uniform i of r.
func (g *generator) uniform(r *BlockReader, i int) string {
	return g.uniformRef(r.snippet.MangledUniformName(i, r.index))
}

func indent(sb *strings.Builder, n int) {
	for range n {
		sb.WriteString("    ")
	}
}

const identityMatrix = "mat4x4<f32>(" +
	"vec4<f32>(1.0, 0.0, 0.0, 0.0), " +
	"vec4<f32>(0.0, 1.0, 0.0, 0.0), " +
	"vec4<f32>(0.0, 0.0, 1.0, 0.0), " +
	"vec4<f32>(0.0, 0.0, 0.0, 1.0))"

// ToWGSL generates the fragment shader for the blocks.
//
// Top-level blocks run in order, each receiving the previous block's output
// as its input color; the last output is the fragment color. Names are
// derived from block indices, so the output is deterministic.
func (si *ShaderInfo) ToWGSL(emitter BindingEmitter) (src string, err error) {
	defer func() {
		if r := recover(); r != nil {
			ge, ok := r.(*GenerationError)
			if !ok {
				panic(r)
			}
			err = ge
		}
	}()

	g := &generator{info: si, emitter: emitter}

	var main strings.Builder
	main.WriteString("@fragment\n")
	main.WriteString("fn main(@builtin(position) fragCoord: vec4<f32>) -> FSOut {\n")
	main.WriteString("    " + FragCoordName + " = fragCoord;\n")
	main.WriteString("    let initialPreLocal = " + identityMatrix + ";\n")
	main.WriteString("    let initialColor = vec4<f32>(0.0);\n")

	last := "initialColor"
	for i := 0; i < len(si.readers); i++ {
		last = g.emitGlueForEntry(&i, last, "initialPreLocal", &main, 1)
	}
	main.WriteString("    return FSOut(" + last + ");\n")
	main.WriteString("}\n")

	var out strings.Builder
	out.WriteString("struct FSOut {\n    @location(0) color: vec4<f32>,\n}\n\n")
	out.WriteString("var<private> " + FragCoordName + ": vec4<f32>;\n\n")
	if decl := emitter.EmitUniforms(si.readers, si.NeedsLocalCoords()); decl != "" {
		out.WriteString(decl)
		out.WriteString("\n")
	}
	binding := 0
	if decl := emitter.EmitTexturesAndSamplers(si.readers, &binding); decl != "" {
		out.WriteString(decl)
		out.WriteString("\n")
	}
	for _, fn := range g.libraryCode() {
		out.WriteString(fn)
		out.WriteString("\n\n")
	}
	if g.preamble.Len() > 0 {
		out.WriteString(g.preamble.String())
		out.WriteString("\n")
	}
	out.WriteString(main.String())
	return out.String(), nil
}

// libraryCode returns the library functions the blocks call and the
// sources of user-defined snippets, each once. Library functions called
// from user sources are included too.
func (g *generator) libraryCode() []string {
	l := snippetLibrary()
	var roots []string
	var user []string
	seen := make(map[*Snippet]bool)
	for _, r := range g.info.readers {
		s := r.snippet
		if seen[s] {
			continue
		}
		seen[s] = true
		if l.has(s.StaticFunctionName) {
			roots = append(roots, s.StaticFunctionName)
		}
		if s.Source != "" {
			user = append(user, strings.TrimSpace(s.Source))
			for _, id := range identifiers(s.Source) {
				if l.has(id) {
					roots = append(roots, id)
				}
			}
		}
	}
	return append(l.closure(roots), user...)
}

// emitGlueForEntry emits the block at *index into body and returns the name
// of the variable holding its output. On return *index is the last block
// of the subtree.
//
// The output looks like:
//
//	var outColor_1: vec4<f32>; // output of BlendShader
//	{
//	    outColor_1 = sk_blend_shader_1(initialColor, initialPreLocal);
//	}
func (g *generator) emitGlueForEntry(index *int, priorOutput, parentPreLocal string, body *strings.Builder, depth int) string {
	r := g.info.readers[*index]
	s := r.snippet
	cur := *index
	outVar := mangle("outColor", cur)

	indent(body, depth)
	fmt.Fprintf(body, "var %s: vec4<f32>; // output of %s\n", outVar, s.Name)
	indent(body, depth)
	body.WriteString("{\n")

	preLocal := parentPreLocal
	if s.NeedsLocalCoords() {
		g.checkLocalMatrix(r)
		preLocal = mangle("preLocal", cur)
		indent(body, depth+1)
		fmt.Fprintf(body, "let %s = (%s * %s);\n", preLocal, parentPreLocal, g.uniform(r, 0))
	}

	if s.generate == nil {
		g.fail(r, "no glue for kind %s", s.Kind)
	}
	expr := s.generate(g, index, r, priorOutput, preLocal)

	indent(body, depth+1)
	fmt.Fprintf(body, "%s = %s;\n", outVar, expr)
	indent(body, depth)
	body.WriteString("}\n")
	return outVar
}

// emitChildGlue emits every child of the block at *index and returns their
// output variables.
func (g *generator) emitChildGlue(index *int, priorOutput, preLocal string, body *strings.Builder, depth int) []string {
	r := g.info.readers[*index]
	outs := make([]string, 0, r.NumChildren())
	for range r.NumChildren() {
		*index++
		if *index >= len(g.info.readers) {
			g.fail(r, "missing child block")
		}
		outs = append(outs, g.emitGlueForEntry(index, priorOutput, preLocal, body, depth))
	}
	return outs
}

func (g *generator) checkLocalMatrix(r *BlockReader) {
	u := r.snippet.Uniforms
	if len(u) == 0 || u[0].Type != Float4x4 || u[0].IsArray() {
		g.fail(r, "needs local coords but the first uniform is not a float4x4")
	}
}
