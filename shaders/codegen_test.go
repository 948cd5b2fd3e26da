package shaders

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/gogpu/ggshader/effect"
)

func TestGenerateSolidColor(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	solidKey(b)
	src := generate(t, d, b)
	main := mainBody(t, src)

	if !strings.Contains(main, "        outColor_0 = sk_solid_shader(u.color_0);\n") {
		t.Errorf("missing solid color invocation:\n%s", main)
	}
	if n := strings.Count(main, "sk_solid_shader("); n != 1 {
		t.Errorf("main calls sk_solid_shader %d times, want 1", n)
	}
	if !strings.Contains(main, "return FSOut(outColor_0);") {
		t.Errorf("output not assigned from outColor_0:\n%s", main)
	}
	if !strings.Contains(src, "fn sk_solid_shader(color: vec4<f32>) -> vec4<f32>") {
		t.Error("library function sk_solid_shader not emitted")
	}
	for _, unused := range []string{"fn sk_blend(", "fn sk_compute_coords(", Dev2LocalName} {
		if strings.Contains(src, unused) {
			t.Errorf("output contains unused %q", unused)
		}
	}
}

func TestGenerateLocalMatrixWrapper(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	b.BeginBlock(BuiltInLocalMatrixShader)
	solidKey(b)
	b.EndBlock()
	src := generate(t, d, b)
	main := mainBody(t, src)

	decl := strings.Index(main, "let preLocal_0 = (initialPreLocal * u.localMatrix_0);")
	call := strings.Index(main, "outColor_0 = sk_local_matrix_shader_0(initialColor, preLocal_0);")
	if decl < 0 || call < 0 || decl > call {
		t.Errorf("pre-local matrix must be declared before the wrapper call:\n%s", main)
	}

	helper := "fn sk_local_matrix_shader_0(inColor: vec4<f32>, preLocal: mat4x4<f32>) -> vec4<f32> {\n" +
		"    var outColor_1: vec4<f32>; // output of SolidColor\n" +
		"    {\n" +
		"        outColor_1 = sk_solid_shader(u.color_1);\n" +
		"    }\n" +
		"    return sk_local_matrix_shader(preLocal * u.dev2Local, outColor_1);\n" +
		"}\n"
	if !strings.Contains(src, helper) {
		t.Errorf("helper not found; got:\n%s", src)
	}
	if strings.Contains(main, "outColor_1") {
		t.Error("child evaluated in main instead of its parent's helper")
	}
}

func TestGenerateShaderBasedBlend(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	solidKey(b)
	block(b, BuiltInShaderBasedBlender)
	block(b, BuiltInShaderBasedBlender)
	src := generate(t, d, b)
	main := mainBody(t, src)

	if !strings.Contains(main, "outColor_1 = sk_blend(u.blendMode_1, outColor_0, sk_read_dst());") {
		t.Errorf("blend does not consume the prior output:\n%s", main)
	}
	if !strings.Contains(main, "outColor_2 = sk_blend(u.blendMode_2, outColor_1, sk_read_dst());") {
		t.Errorf("second blend does not consume the first:\n%s", main)
	}
	if n := strings.Count(src, "fn sk_read_dst()"); n != 1 {
		t.Errorf("sk_read_dst defined %d times, want 1", n)
	}
	if !strings.Contains(src, "textureLoad("+DstCopyName) {
		t.Error("destination read does not sample the destination copy")
	}
	if !strings.Contains(src, "fn sk_blend(mode: i32") {
		t.Error("library function sk_blend not emitted")
	}
}

func TestGenerateFixedFunctionBlendPassesColorThrough(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	solidKey(b)
	b.BeginBlock(BuiltInFixedFunctionBlender)
	b.AddBytes(3)
	b.EndBlock()
	main := mainBody(t, generate(t, d, b))

	if !strings.Contains(main, "outColor_1 = outColor_0;") {
		t.Errorf("fixed-function blender changed the color:\n%s", main)
	}
	if !strings.Contains(main, "return FSOut(outColor_1);") {
		t.Errorf("last output not returned:\n%s", main)
	}
}

func TestGenerateImageShader(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	block(b, BuiltInImageShader)
	src := generate(t, d, b)

	want := "textureSample(texture_0_0, sampler_0_0, sk_compute_coords(preLocal_0 * u.dev2Local, " +
		"u.subset_0, u.tilemodeX_0, u.tilemodeY_0, u.imgWidth_0, u.imgHeight_0))"
	if !strings.Contains(src, want) {
		t.Errorf("image sample not found; got:\n%s", src)
	}
	if !strings.Contains(src, "fn sk_tile_coord(") {
		t.Error("dependency sk_tile_coord of sk_compute_coords not emitted")
	}
	if !strings.Contains(src, "dev2Local: mat4x4<f32>") {
		t.Error("dev2Local uniform not declared")
	}
}

func TestGenerateRuntimeEffect(t *testing.T) {
	d := NewDictionary()
	fx, err := effect.Make(tintEffect, []effect.Uniform{{Name: "tint", Type: effect.Float4}})
	if err != nil {
		t.Fatal(err)
	}
	id := d.FindOrCreateRuntimeEffectSnippet(fx)

	b := NewKeyBuilder(d)
	solidKey(b)
	block(b, id)
	src := generate(t, d, b)

	want := "fn RuntimeEffect_1(preLocal: mat4x4<f32>, inColor: vec4<f32>) -> vec4<f32> {\n" +
		"    let coords = (preLocal * u.dev2Local * sk_FragCoord).xy;\n" +
		"    return inColor * u.tint_1;\n" +
		"}\n"
	if !strings.Contains(src, want) {
		t.Errorf("runtime effect function not found; got:\n%s", src)
	}
	main := mainBody(t, src)
	if !strings.Contains(main, "let preLocal_1 = (initialPreLocal * u.localMatrix_1);") {
		t.Errorf("runtime effect has no pre-local matrix:\n%s", main)
	}
	if !strings.Contains(main, "outColor_1 = RuntimeEffect_1(preLocal_1, outColor_0);") {
		t.Errorf("runtime effect not called with the prior output:\n%s", main)
	}
}

func TestGenerateRuntimeEffectHelpers(t *testing.T) {
	const src = `
struct Ring { width: f32, }
const PI: f32 = 3.14159;
fn ring(p: vec2<f32>) -> Ring {
    return Ring(length(p) * PI);
}
fn main(coords: vec2<f32>) -> vec4<f32> {
    let r = ring(coords);
    return vec4<f32>(r.width) * sampleShader(0, coords);
}
`
	d := NewDictionary()
	fx, err := effect.Make(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	b := NewKeyBuilder(d)
	block(b, d.FindOrCreateRuntimeEffectSnippet(fx))
	out := generate(t, d, b)

	for _, want := range []string{
		"struct Ring_0 { width: f32, }",
		"const PI_0: f32 = 3.14159;",
		"fn ring_0(p: vec2<f32>) -> Ring_0 {\n    return Ring_0(length(p) * PI_0);\n}",
		"let r = ring_0(coords);",
		"return vec4<f32>(r.width) * vec4<f32>(0.0);",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestGenerateUserSnippet(t *testing.T) {
	d := NewDictionary()
	id, err := d.AddUserDefinedSnippet(SnippetDesc{
		Name:               "Fade",
		Uniforms:           []Uniform{{Name: "color", Type: Float4}},
		StaticFunctionName: "fade",
		Kind:               GlueDefault,
		Source:             "fn fade(color: vec4<f32>) -> vec4<f32> {\n    return sk_premul(color * 0.5);\n}\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	b := NewKeyBuilder(d)
	block(b, id)
	block(b, id)
	src := generate(t, d, b)

	if n := strings.Count(src, "fn fade("); n != 1 {
		t.Errorf("user source emitted %d times, want 1", n)
	}
	if !strings.Contains(src, "fn sk_premul(") {
		t.Error("library function called from user source not emitted")
	}
	if !strings.Contains(src, "outColor_1 = fade(u.color_1);") {
		t.Errorf("user snippet not invoked:\n%s", src)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	build := func(d *Dictionary) *KeyBuilder {
		b := NewKeyBuilder(d)
		b.BeginBlock(BuiltInBlendShader)
		block(b, BuiltInLinearGradientShader8)
		b.BeginBlock(BuiltInLocalMatrixShader)
		block(b, BuiltInSweepGradientShader4)
		b.EndBlock()
		b.EndBlock()
		block(b, BuiltInShaderBasedBlender)
		return b
	}

	d1 := NewDictionary()
	first := generate(t, d1, build(d1))
	again := generate(t, d1, build(d1))
	d2 := NewDictionary()
	other := generate(t, d2, build(d2))

	if first != again {
		t.Error("two generations from one dictionary differ")
	}
	if first != other {
		t.Error("generations from two dictionaries differ")
	}
}

var outVarRE = regexp.MustCompile(`var (outColor_\d+): vec4<f32>;`)

func TestGeneratedNamesAreUnique(t *testing.T) {
	d := NewDictionary()
	b := NewKeyBuilder(d)
	b.BeginBlock(BuiltInBlendShader) // 0
	b.BeginBlock(BuiltInLocalMatrixShader)
	solidKey(b) // 2
	b.EndBlock()
	b.BeginBlock(BuiltInBlendShader) // 3
	solidKey(b)
	block(b, BuiltInRadialGradientShader4) // 5
	b.EndBlock()
	b.EndBlock()
	block(b, BuiltInShaderBasedBlender) // 6
	src := generate(t, d, b)

	seen := make(map[string]bool)
	for _, m := range outVarRE.FindAllStringSubmatch(src, -1) {
		if seen[m[1]] {
			t.Errorf("%s declared twice", m[1])
		}
		seen[m[1]] = true
	}
	if len(seen) != 7 {
		t.Errorf("%d output variables, want 7", len(seen))
	}

	for _, want := range []string{
		"fn sk_blend_shader_0(",
		"fn sk_local_matrix_shader_1(",
		"fn sk_blend_shader_3(",
		"return sk_blend_shader(u.blendMode_0, outColor_1, outColor_3);",
		"let preLocal_1 = (preLocal * u.localMatrix_1);",
		"let preLocal_5 = (preLocal * u.localMatrix_5);",
		"outColor_6 = sk_blend(u.blendMode_6, outColor_0, sk_read_dst());",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output lacks %q:\n%s", want, src)
		}
	}
}

func TestGenerationErrors(t *testing.T) {
	tests := []struct {
		name    string
		snippet *Snippet
	}{
		{"local coords without matrix", &Snippet{
			SnippetDesc: SnippetDesc{Name: "Bad", Flags: FlagLocalCoords, StaticFunctionName: "f"},
			generate:    defaultGlue,
		}},
		{"no glue", &Snippet{
			SnippetDesc: SnippetDesc{Name: "Bad", StaticFunctionName: "f"},
		}},
		{"default glue with children", &Snippet{
			SnippetDesc: SnippetDesc{Name: "Bad", StaticFunctionName: "f", NumChildren: 1},
			generate:    defaultGlue,
		}},
		{"runtime glue without effect", &Snippet{
			SnippetDesc: SnippetDesc{Name: "Bad", StaticFunctionName: "f"},
			generate:    runtimeEffectGlue,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &BlockReader{snippet: tt.snippet, header: blockHeader{numChildren: uint8(tt.snippet.NumChildren)}}
			si := &ShaderInfo{readers: []*BlockReader{r}}
			_, err := si.ToWGSL(testEmitter{})
			var ge *GenerationError
			if !errors.As(err, &ge) {
				t.Fatalf("ToWGSL error = %v, want *GenerationError", err)
			}
			if ge.Index != 0 || ge.Snippet != "Bad" {
				t.Errorf("GenerationError = %+v", ge)
			}
		})
	}
}
