package shaders

import (
	"fmt"
	"strings"

	"github.com/gogpu/ggshader/effect"
)

// glueFunc emits the glue code of the block r at *index and returns the
// expression computing its color. It may append to the generator's
// preamble and, for blocks with children, advances *index past them.
type glueFunc func(g *generator, index *int, r *BlockReader, priorOutput, preLocal string) string

var glueFuncs = [glueKindCount]glueFunc{
	GlueDefault:              defaultGlue,
	GlueDefaultWithChildren:  defaultGlueWithChildren,
	GlueImageShader:          imageShaderGlue,
	GlueFixedFunctionBlender: fixedFunctionBlenderGlue,
	GlueShaderBasedBlender:   shaderBasedBlenderGlue,
	GlueRuntimeEffect:        runtimeEffectGlue,
}

// defaultArgs returns "(uniforms..., children...)". A local-coords snippet
// receives its pre-local matrix combined with the device-to-local transform
// in place of its first uniform.
func (g *generator) defaultArgs(r *BlockReader, index int, preLocal string, children []string) string {
	s := r.snippet
	args := make([]string, 0, len(s.Uniforms)+len(children))
	for i := range s.Uniforms {
		if i == 0 && s.NeedsLocalCoords() {
			args = append(args, preLocal+" * "+g.dev2Local())
			continue
		}
		args = append(args, g.uniformRef(s.MangledUniformName(i, index)))
	}
	args = append(args, children...)
	return "(" + strings.Join(args, ", ") + ")"
}

// defaultGlue calls the static function with every uniform.
func defaultGlue(g *generator, index *int, r *BlockReader, priorOutput, preLocal string) string {
	if r.NumChildren() != 0 {
		g.fail(r, "default glue used for a snippet with %d children", r.NumChildren())
	}
	return r.snippet.StaticFunctionName + g.defaultArgs(r, *index, preLocal, nil)
}

// defaultGlueWithChildren writes a helper to the preamble:
//
//	fn <static>_<index>(inColor: vec4<f32>, preLocal: mat4x4<f32>) -> vec4<f32>
//
// which evaluates each child and passes the results to the static function
// after the uniforms. The block's expression calls the helper.
func defaultGlueWithChildren(g *generator, index *int, r *BlockReader, priorOutput, preLocal string) string {
	s := r.snippet
	if r.NumChildren() == 0 {
		g.fail(r, "glue with children used for a childless snippet")
	}
	cur := *index
	helper := mangle(s.StaticFunctionName, cur)

	var fn strings.Builder
	fmt.Fprintf(&fn, "fn %s(inColor: vec4<f32>, preLocal: mat4x4<f32>) -> vec4<f32> {\n", helper)
	children := g.emitChildGlue(index, "inColor", "preLocal", &fn, 1)
	if len(children) != s.NumChildren {
		g.fail(r, "emitted %d children, want %d", len(children), s.NumChildren)
	}
	fmt.Fprintf(&fn, "    return %s%s;\n", s.StaticFunctionName, g.defaultArgs(r, cur, "preLocal", children))
	fn.WriteString("}\n")
	g.preamble.WriteString(fn.String())

	return fmt.Sprintf("%s(%s, %s)", helper, priorOutput, preLocal)
}

// imageShaderGlue samples the block's texture at coordinates computed by
// the static function. Uniform 0 is consumed by the pre-local matrix.
func imageShaderGlue(g *generator, index *int, r *BlockReader, priorOutput, preLocal string) string {
	i := *index
	return fmt.Sprintf("textureSample(%s, %s, %s(%s * %s, %s, %s, %s, %s, %s))",
		TextureName(i, 0),
		SamplerName(i, 0),
		r.snippet.StaticFunctionName,
		preLocal, g.dev2Local(),
		g.uniform(r, 1),
		g.uniform(r, 2),
		g.uniform(r, 3),
		g.uniform(r, 4),
		g.uniform(r, 5))
}

// fixedFunctionBlenderGlue passes the color through; the pipeline's blend
// state does the blending.
func fixedFunctionBlenderGlue(g *generator, index *int, r *BlockReader, priorOutput, preLocal string) string {
	if len(r.snippet.Uniforms) != 0 {
		g.fail(r, "fixed-function blender with uniforms")
	}
	return priorOutput
}

// shaderBasedBlenderGlue blends the prior output with the destination.
func shaderBasedBlenderGlue(g *generator, index *int, r *BlockReader, priorOutput, preLocal string) string {
	if len(r.snippet.Uniforms) != 1 {
		g.fail(r, "shader-based blender needs exactly one uniform")
	}
	if !g.dstReadEmitted {
		g.dstReadEmitted = true
		fmt.Fprintf(&g.preamble, "fn sk_read_dst() -> vec4<f32> {\n    return textureLoad(%s, vec2<i32>(%s.xy), 0);\n}\n",
			DstCopyName, FragCoordName)
	}
	return fmt.Sprintf("%s(%s, %s, sk_read_dst())", r.snippet.StaticFunctionName, g.uniform(r, 0), priorOutput)
}

// runtimeEffectGlue writes the converted effect to the preamble and calls
// its entry point.
func runtimeEffectGlue(g *generator, index *int, r *BlockReader, priorOutput, preLocal string) string {
	fx := r.snippet.RuntimeEffect()
	if fx == nil {
		g.fail(r, "runtime effect snippet without an effect")
	}
	cb := &runtimeCallbacks{g: g, index: *index}
	if err := effect.ConvertProgram(fx.Program(), fx.Uniforms(), "coords", "inColor", "vec4<f32>(1.0)", cb); err != nil {
		g.fail(r, "converting runtime effect: %v", err)
	}
	return fmt.Sprintf("%s(%s, %s)", mangle(RuntimeEffectName, *index), preLocal, priorOutput)
}
