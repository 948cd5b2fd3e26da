package shaders

import (
	"fmt"
	"strings"

	"github.com/gogpu/ggshader/effect"
)

// RuntimeEffectName is the snippet name, and generated function prefix, of
// runtime effect snippets.
const RuntimeEffectName = "RuntimeEffect"

// localMatrixName is the uniform every runtime effect snippet starts with.
const localMatrixName = "localMatrix"

// FindOrCreateRuntimeEffectSnippet returns the snippet for fx, registering
// one on first use. Effects are identified by their source hash and uniform
// size; two different effects that collide on both share a snippet.
//
// It returns InvalidSnippetID for a nil effect and for effects using a name
// the generated code reserves: a localMatrix uniform or a top-level
// RuntimeEffect symbol.
func (d *Dictionary) FindOrCreateRuntimeEffectSnippet(fx *effect.RuntimeEffect) SnippetID {
	if fx == nil || !embeddable(fx) {
		return InvalidSnippetID
	}
	key := runtimeEffectKey{hash: fx.Hash(), uniformSize: fx.UniformSize()}

	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.runtimeEffects[key]; ok {
		return id
	}
	id := d.addSnippetLocked(SnippetDesc{
		Name:               RuntimeEffectName,
		Uniforms:           convertUniforms(fx.Uniforms()),
		Flags:              FlagLocalCoords,
		StaticFunctionName: RuntimeEffectName,
		Kind:               GlueRuntimeEffect,
	}, fx)
	d.runtimeEffects[key] = id
	return id
}

// embeddable reports whether fx's names stay unique once mangled into a
// generated shader.
func embeddable(fx *effect.RuntimeEffect) bool {
	if fx.Uniform(localMatrixName) != nil {
		return false
	}
	p := fx.Program()
	for _, decls := range [][]effect.Decl{p.Structs, p.Globals} {
		for _, d := range decls {
			if d.Name == RuntimeEffectName {
				return false
			}
		}
	}
	for _, fn := range p.Functions {
		if fn.Name == RuntimeEffectName {
			return false
		}
	}
	return true
}

// convertUniforms maps effect uniforms to snippet uniforms behind a leading
// localMatrix.
func convertUniforms(in []effect.Uniform) []Uniform {
	out := make([]Uniform, 0, len(in)+1)
	out = append(out, Uniform{Name: localMatrixName, Type: Float4x4})
	for _, u := range in {
		cu := Uniform{Name: u.Name, Type: uniformTypeToSLType(u)}
		if u.IsArray() {
			cu.Count = u.Count
		}
		out = append(out, cu)
	}
	return out
}

func uniformTypeToSLType(u effect.Uniform) SLType {
	half := u.Flags&effect.FlagHalfPrecision != 0
	switch u.Type {
	case effect.Float:
		return pick(half, Half, Float)
	case effect.Float2:
		return pick(half, Half2, Float2)
	case effect.Float3:
		return pick(half, Half3, Float3)
	case effect.Float4:
		return pick(half, Half4, Float4)
	case effect.Float2x2:
		return pick(half, Half2x2, Float2x2)
	case effect.Float3x3:
		return pick(half, Half3x3, Float3x3)
	case effect.Float4x4:
		return pick(half, Half4x4, Float4x4)
	case effect.Int:
		return pick(half, Short, Int)
	case effect.Int2:
		return pick(half, Short2, Int2)
	case effect.Int3:
		return pick(half, Short3, Int3)
	case effect.Int4:
		return pick(half, Short4, Int4)
	}
	panic(fmt.Sprintf("shaders: unreachable uniform type %v", u.Type))
}

func pick(half bool, h, f SLType) SLType {
	if half {
		return h
	}
	return f
}

// runtimeCallbacks receives a converted runtime effect for the node at
// index and writes it into the preamble.
type runtimeCallbacks struct {
	g     *generator
	index int
}

var _ effect.Callbacks = (*runtimeCallbacks)(nil)

func (c *runtimeCallbacks) DeclareUniform(u *effect.Uniform) string {
	return c.g.uniformRef(mangle(u.Name, c.index))
}

// DeclareFunction is a no-op: WGSL module-scope declarations may appear in
// any order.
func (c *runtimeCallbacks) DeclareFunction(string) {}

func (c *runtimeCallbacks) DeclareGlobal(decl string) {
	c.g.preamble.WriteString(decl + "\n")
}

func (c *runtimeCallbacks) DefineStruct(def string) {
	c.g.preamble.WriteString(def + "\n")
}

func (c *runtimeCallbacks) DefineFunction(decl, body string, isMain bool) {
	p := &c.g.preamble
	if !isMain {
		fmt.Fprintf(p, "%s {\n    %s\n}\n", decl, strings.TrimSpace(body))
		return
	}
	fmt.Fprintf(p, "fn %s(preLocal: mat4x4<f32>, inColor: vec4<f32>) -> vec4<f32> {\n", mangle(RuntimeEffectName, c.index))
	fmt.Fprintf(p, "    let coords = (preLocal * %s * sk_FragCoord).xy;\n", c.g.dev2Local())
	fmt.Fprintf(p, "    %s\n}\n", strings.TrimSpace(body))
}

// Child effects are not evaluated; samples yield fixed placeholders.

func (c *runtimeCallbacks) SampleShader(int, string) string      { return "vec4<f32>(0.0)" }
func (c *runtimeCallbacks) SampleColorFilter(int, string) string { return "vec4<f32>(0.0)" }
func (c *runtimeCallbacks) SampleBlender(_ int, src, _ string) string {
	return src
}
func (c *runtimeCallbacks) ToLinearSrgb(color string) string   { return color }
func (c *runtimeCallbacks) FromLinearSrgb(color string) string { return color }

func (c *runtimeCallbacks) GetMangledName(name string) string { return mangle(name, c.index) }
