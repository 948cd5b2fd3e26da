package shaders

// Built-in snippet IDs. User-defined snippets are numbered from
// BuiltInCodeSnippetIDCount.
const (
	BuiltInError SnippetID = iota + 1
	BuiltInSolidColorShader
	BuiltInLinearGradientShader4
	BuiltInLinearGradientShader8
	BuiltInRadialGradientShader4
	BuiltInRadialGradientShader8
	BuiltInSweepGradientShader4
	BuiltInSweepGradientShader8
	BuiltInConicalGradientShader4
	BuiltInConicalGradientShader8
	BuiltInLocalMatrixShader
	BuiltInImageShader
	BuiltInBlendShader
	BuiltInFixedFunctionBlender
	BuiltInShaderBasedBlender

	BuiltInCodeSnippetIDCount
)

// Gradient stop counts.
const (
	FourStopGradient  = 4
	EightStopGradient = 8
)

func gradientUniforms(stops int, geometry ...Uniform) []Uniform {
	u := []Uniform{
		{Name: "localMatrix", Type: Float4x4},
		{Name: "colors", Type: Float4, Count: stops},
	}
	// Offsets are packed four per vector.
	if stops == FourStopGradient {
		u = append(u, Uniform{Name: "offsets", Type: Float4})
	} else {
		u = append(u, Uniform{Name: "offsets", Type: Float4, Count: stops / 4})
	}
	u = append(u, geometry...)
	return append(u, Uniform{Name: "tilemode", Type: Int})
}

var (
	linearGeometry = []Uniform{
		{Name: "point0", Type: Float2},
		{Name: "point1", Type: Float2},
	}
	radialGeometry = []Uniform{
		{Name: "center", Type: Float2},
		{Name: "radius", Type: Float},
	}
	sweepGeometry = []Uniform{
		{Name: "center", Type: Float2},
		{Name: "bias", Type: Float},
		{Name: "scale", Type: Float},
	}
	conicalGeometry = []Uniform{
		{Name: "point0", Type: Float2},
		{Name: "point1", Type: Float2},
		{Name: "radius0", Type: Float},
		{Name: "radius1", Type: Float},
	}
)

func gradientSnippet(name, fn string, stops int, geometry []Uniform) SnippetDesc {
	return SnippetDesc{
		Name:               name,
		Uniforms:           gradientUniforms(stops, geometry...),
		Flags:              FlagLocalCoords,
		StaticFunctionName: fn,
		Kind:               GlueDefault,
	}
}

// builtInSnippets returns the built-in snippet table, indexed by SnippetID.
// Index 0 is nil.
func builtInSnippets() [BuiltInCodeSnippetIDCount]*Snippet {
	descs := [BuiltInCodeSnippetIDCount]SnippetDesc{
		BuiltInError: {
			Name:               "Error",
			StaticFunctionName: "sk_error",
			Kind:               GlueDefault,
		},
		BuiltInSolidColorShader: {
			Name:               "SolidColor",
			Uniforms:           []Uniform{{Name: "color", Type: Float4}},
			StaticFunctionName: "sk_solid_shader",
			Kind:               GlueDefault,
		},
		BuiltInLinearGradientShader4:  gradientSnippet("LinearGradient4", "sk_linear_grad_4_shader", FourStopGradient, linearGeometry),
		BuiltInLinearGradientShader8:  gradientSnippet("LinearGradient8", "sk_linear_grad_8_shader", EightStopGradient, linearGeometry),
		BuiltInRadialGradientShader4:  gradientSnippet("RadialGradient4", "sk_radial_grad_4_shader", FourStopGradient, radialGeometry),
		BuiltInRadialGradientShader8:  gradientSnippet("RadialGradient8", "sk_radial_grad_8_shader", EightStopGradient, radialGeometry),
		BuiltInSweepGradientShader4:   gradientSnippet("SweepGradient4", "sk_sweep_grad_4_shader", FourStopGradient, sweepGeometry),
		BuiltInSweepGradientShader8:   gradientSnippet("SweepGradient8", "sk_sweep_grad_8_shader", EightStopGradient, sweepGeometry),
		BuiltInConicalGradientShader4: gradientSnippet("ConicalGradient4", "sk_conical_grad_4_shader", FourStopGradient, conicalGeometry),
		BuiltInConicalGradientShader8: gradientSnippet("ConicalGradient8", "sk_conical_grad_8_shader", EightStopGradient, conicalGeometry),
		BuiltInLocalMatrixShader: {
			Name:               "LocalMatrixShader",
			Uniforms:           []Uniform{{Name: "localMatrix", Type: Float4x4}},
			Flags:              FlagLocalCoords,
			StaticFunctionName: "sk_local_matrix_shader",
			Kind:               GlueDefaultWithChildren,
			NumChildren:        1,
		},
		BuiltInImageShader: {
			Name: "ImageShader",
			Uniforms: []Uniform{
				{Name: "localMatrix", Type: Float4x4},
				{Name: "subset", Type: Float4},
				{Name: "tilemodeX", Type: Int},
				{Name: "tilemodeY", Type: Int},
				{Name: "imgWidth", Type: Int},
				{Name: "imgHeight", Type: Int},
			},
			Flags:               FlagLocalCoords,
			TexturesAndSamplers: []TextureAndSampler{{Name: "sampler"}},
			StaticFunctionName:  "sk_compute_coords",
			Kind:                GlueImageShader,
		},
		BuiltInBlendShader: {
			Name:               "BlendShader",
			Uniforms:           []Uniform{{Name: "blendMode", Type: Int}},
			StaticFunctionName: "sk_blend_shader",
			Kind:               GlueDefaultWithChildren,
			NumChildren:        2,
		},
		BuiltInFixedFunctionBlender: {
			Name:               "FixedFunctionBlender",
			StaticFunctionName: "FF-blending",
			Kind:               GlueFixedFunctionBlender,
			// The mode is in the key so that paints differing only in
			// hardware blend state get distinct entries.
			DataPayload: []PayloadField{{Name: "blendMode", Type: PayloadByte, Count: 1}},
		},
		BuiltInShaderBasedBlender: {
			Name:               "ShaderBasedBlender",
			Uniforms:           []Uniform{{Name: "blendMode", Type: Int}},
			Flags:              FlagDstRead,
			StaticFunctionName: "sk_blend",
			Kind:               GlueShaderBasedBlender,
		},
	}

	var table [BuiltInCodeSnippetIDCount]*Snippet
	for id := BuiltInError; id < BuiltInCodeSnippetIDCount; id++ {
		d := descs[id]
		if err := d.validate(); err != nil {
			panic(err)
		}
		table[id] = &Snippet{SnippetDesc: d, generate: glueFuncs[d.Kind]}
	}
	return table
}
